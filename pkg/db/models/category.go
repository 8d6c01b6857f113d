package models

import "time"

// Category groups products and decides whether sales move their price.
type Category struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrganizationID int64     `gorm:"column:organization_id;not null;index"`
	Name           string    `gorm:"column:name;not null"`
	DynamicPricing bool      `gorm:"column:dynamic_pricing;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
