package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Organization is a tenant: one bar, one inventory, one pricing policy.
// PriceDecreaseStep is stored configuration only; no mutation path consumes it.
type Organization struct {
	ID                int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string          `gorm:"column:name;not null;uniqueIndex"`
	PriceIncreaseStep decimal.Decimal `gorm:"column:price_increase_step;type:numeric(10,2);not null;default:0.5"`
	PriceDecreaseStep decimal.Decimal `gorm:"column:price_decrease_step;type:numeric(10,2);not null;default:0.5"`
	CurrencyCode      string          `gorm:"column:currency_code;not null;default:EUR"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
