package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item owned by one organization. Deletion is soft:
// IsActive flips to false and the inventory row stays behind as history.
type Product struct {
	ID             int64            `gorm:"column:id;primaryKey;autoIncrement"`
	OrganizationID int64            `gorm:"column:organization_id;not null;index"`
	CategoryID     int64            `gorm:"column:category_id;not null;index"`
	Name           string           `gorm:"column:name;not null"`
	Description    *string          `gorm:"column:description"`
	BasePrice      decimal.Decimal  `gorm:"column:base_price;type:numeric(10,2);not null"`
	MinPrice       *decimal.Decimal `gorm:"column:min_price;type:numeric(10,2)"`
	MaxPrice       *decimal.Decimal `gorm:"column:max_price;type:numeric(10,2)"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
