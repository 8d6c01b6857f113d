package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockbar/stockbar-backend/pkg/enums"
)

// User is a staff member of one organization.
type User struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID int64          `gorm:"column:organization_id;not null;index"`
	Email          string         `gorm:"column:email;not null;uniqueIndex"`
	Name           string         `gorm:"column:name;not null"`
	PasswordHash   string         `gorm:"column:password_hash;not null"`
	Role           enums.UserRole `gorm:"column:role;not null;default:bartender"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	Stations       []Station      `gorm:"many2many:station_users"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
