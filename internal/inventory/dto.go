package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockbar/stockbar-backend/pkg/enums"
)

// InventoryView is the read model returned by inventory operations: the raw
// stock row joined with the product master data callers actually display.
type InventoryView struct {
	ID             int64            `json:"id"`
	OrganizationID int64            `json:"organization_id"`
	ProductID      int64            `json:"product_id"`
	ProductName    string           `json:"product_name"`
	Description    *string          `json:"description,omitempty"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	BasePrice      decimal.Decimal  `json:"base_price"`
	MinPrice       *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice       *decimal.Decimal `json:"max_price,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TransactionView is one audit-log row joined with actor display data.
// QuantityBefore is derived (after minus change); the stored row only
// snapshots the resulting quantity.
type TransactionView struct {
	ID              int64                 `json:"id"`
	TransactionType enums.TransactionType `json:"transaction_type"`
	QuantityChange  decimal.Decimal       `json:"quantity_change"`
	QuantityBefore  decimal.Decimal       `json:"quantity_before"`
	QuantityAfter   decimal.Decimal       `json:"quantity_after"`
	PriceBefore     decimal.Decimal       `json:"price_before"`
	PriceAfter      decimal.Decimal       `json:"price_after"`
	ReferenceID     *string               `json:"reference_id,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	StationID       *int64                `json:"station_id,omitempty"`
	CreatedBy       *string               `json:"created_by,omitempty"`
	CreatedByName   *string               `json:"created_by_name,omitempty"`
	CreatedByEmail  *string               `json:"created_by_email,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// UserSalesStats aggregates SALE transactions per (user, station) pair.
// SalesCount counts distinct sales, not line items.
type UserSalesStats struct {
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name"`
	UserEmail    string          `json:"user_email"`
	StationID    *int64          `json:"station_id,omitempty"`
	StationName  *string         `json:"station_name,omitempty"`
	SalesCount   int64           `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// StationSalesStats aggregates SALE transactions per station.
type StationSalesStats struct {
	StationID    int64           `json:"station_id"`
	StationName  *string         `json:"station_name,omitempty"`
	SalesCount   int64           `json:"sales_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
