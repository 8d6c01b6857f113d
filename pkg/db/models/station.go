package models

import "time"

// Station is a point-of-sale location within an organization. Sales reference
// it for reporting only.
type Station struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrganizationID int64     `gorm:"column:organization_id;not null;index"`
	Name           string    `gorm:"column:name;not null"`
	Description    *string   `gorm:"column:description"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	Users          []User    `gorm:"many2many:station_users"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
