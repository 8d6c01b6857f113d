// Package organizations manages tenants and their pricing policy.
package organizations

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// Repository manages organization persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetByID loads one organization.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// ExistsByName reports whether an organization with this name exists,
// matched case-insensitively.
func (r *Repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	return count > 0, err
}

// Create inserts an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// Save persists the full organization row.
func (r *Repository) Save(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// UpdateInput holds the mutable organization fields.
type UpdateInput struct {
	Name              *string
	PriceIncreaseStep *decimal.Decimal
	PriceDecreaseStep *decimal.Decimal
	CurrencyCode      *string
}

// Service manages organizations.
type Service interface {
	Get(ctx context.Context, orgID int64) (*models.Organization, error)
	Update(ctx context.Context, orgID int64, input UpdateInput) (*models.Organization, error)

	// FindByID is the directory method used by the sales core.
	FindByID(ctx context.Context, id int64) (*models.Organization, error)
}

type service struct {
	repo *Repository
}

// NewService wires the organization service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, orgID int64) (*models.Organization, error) {
	return s.FindByID(ctx, orgID)
}

func (s *service) Update(ctx context.Context, orgID int64, input UpdateInput) (*models.Organization, error) {
	org, err := s.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != org.Name {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
		}
		taken, err := s.repo.ExistsByName(ctx, *input.Name)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking organization name")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an organization with this name already exists")
		}
		org.Name = *input.Name
	}
	if input.PriceIncreaseStep != nil {
		if input.PriceIncreaseStep.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price increase step must not be negative")
		}
		org.PriceIncreaseStep = *input.PriceIncreaseStep
	}
	if input.PriceDecreaseStep != nil {
		if input.PriceDecreaseStep.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price decrease step must not be negative")
		}
		org.PriceDecreaseStep = *input.PriceDecreaseStep
	}
	if input.CurrencyCode != nil {
		if len(*input.CurrencyCode) != 3 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency code must be three letters")
		}
		org.CurrencyCode = *input.CurrencyCode
	}

	if err := s.repo.Save(ctx, org); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving organization")
	}
	return org, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.repo.GetByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading organization")
	}
	return org, nil
}
