package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory holds the current stock state for one (organization, product)
// pair. Quantity never goes below zero. AdjustedPrice nil means the product
// base price applies. Rows are created lazily on first stock-in and never
// deleted.
type Inventory struct {
	ID             int64            `gorm:"column:id;primaryKey;autoIncrement"`
	OrganizationID int64            `gorm:"column:organization_id;not null;uniqueIndex:idx_inventories_org_product"`
	ProductID      int64            `gorm:"column:product_id;not null;uniqueIndex:idx_inventories_org_product"`
	Quantity       decimal.Decimal  `gorm:"column:quantity;type:numeric(12,3);not null"`
	AdjustedPrice  *decimal.Decimal `gorm:"column:adjusted_price;type:numeric(10,2)"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
