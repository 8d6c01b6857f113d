package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockbar/stockbar-backend/pkg/enums"
)

// InventoryTransaction is one immutable row in the stock audit log. Rows are
// written in the same database transaction as the inventory mutation they
// describe and are never updated or deleted. QuantityAfter snapshots the
// post-mutation quantity so a row is readable without replaying its
// predecessors.
type InventoryTransaction struct {
	ID              int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	InventoryID     int64                 `gorm:"column:inventory_id;not null;index"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;not null"`
	QuantityChange  decimal.Decimal       `gorm:"column:quantity_change;type:numeric(12,3);not null"`
	QuantityAfter   decimal.Decimal       `gorm:"column:quantity_after;type:numeric(12,3);not null"`
	PriceBefore     decimal.Decimal       `gorm:"column:price_before;type:numeric(10,2);not null"`
	PriceAfter      decimal.Decimal       `gorm:"column:price_after;type:numeric(10,2);not null"`
	ReferenceID     *string               `gorm:"column:reference_id;index"`
	Notes           *string               `gorm:"column:notes"`
	CreatedBy       *uuid.UUID            `gorm:"column:created_by;type:uuid"`
	StationID       *int64                `gorm:"column:station_id"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
