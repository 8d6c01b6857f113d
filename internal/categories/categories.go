// Package categories manages product categories and their pricing mode.
package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// ProductCounter reports how many products reference a category, used to
// block deletion of categories that are still in use.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

// Repository manages category persistence.
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

// GetByID loads one category.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := r.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListByOrganization returns the organization's categories ordered by name.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsByName reports whether the organization already has a category with
// this name, matched case-insensitively.
func (r *Repository) ExistsByName(ctx context.Context, orgID int64, name string, excludeID *int64) (bool, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("organization_id = ? AND LOWER(name) = LOWER(?)", orgID, name)
	if excludeID != nil {
		qb = qb.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := qb.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a category.
func (r *Repository) Create(ctx context.Context, cat *models.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

// Save persists the full category row.
func (r *Repository) Save(ctx context.Context, cat *models.Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

// Delete removes the category row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

// CreateInput holds the fields for a new category.
type CreateInput struct {
	Name           string
	DynamicPricing bool
}

// UpdateInput holds the mutable category fields.
type UpdateInput struct {
	Name           *string
	DynamicPricing *bool
}

// Service manages categories scoped to one organization per call.
type Service interface {
	Create(ctx context.Context, orgID int64, input CreateInput) (*models.Category, error)
	Get(ctx context.Context, orgID, categoryID int64) (*models.Category, error)
	List(ctx context.Context, orgID int64) ([]models.Category, error)
	Update(ctx context.Context, orgID, categoryID int64, input UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, orgID, categoryID int64) (*models.Category, error)

	// FindByID is the directory method used by the products and sales cores.
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

type service struct {
	repo     *Repository
	products ProductCounter
}

// NewService wires the category service. The product counter may be nil, in
// which case deletion skips the in-use check.
func NewService(repo *Repository, products ProductCounter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "category repository required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Create(ctx context.Context, orgID int64, input CreateInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	taken, err := s.repo.ExistsByName(ctx, orgID, input.Name, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
	}

	cat := &models.Category{
		OrganizationID: orgID,
		Name:           input.Name,
		DynamicPricing: input.DynamicPricing,
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating category")
	}
	return cat, nil
}

func (s *service) Get(ctx context.Context, orgID, categoryID int64) (*models.Category, error) {
	cat, err := s.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "category does not belong to this organization")
	}
	return cat, nil
}

func (s *service) List(ctx context.Context, orgID int64) ([]models.Category, error) {
	rows, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, orgID, categoryID int64, input UpdateInput) (*models.Category, error) {
	cat, err := s.Get(ctx, orgID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != cat.Name {
		taken, err := s.repo.ExistsByName(ctx, orgID, *input.Name, &cat.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category name")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		cat.Name = *input.Name
	}
	if input.DynamicPricing != nil {
		cat.DynamicPricing = *input.DynamicPricing
	}

	if err := s.repo.Save(ctx, cat); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving category")
	}
	return cat, nil
}

// Delete removes an unused category and returns the removed row.
func (s *service) Delete(ctx context.Context, orgID, categoryID int64) (*models.Category, error) {
	cat, err := s.Get(ctx, orgID, categoryID)
	if err != nil {
		return nil, err
	}
	if s.products != nil {
		count, err := s.products.CountByCategory(ctx, cat.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting category products")
		}
		if count > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
		}
	}
	if err := s.repo.Delete(ctx, cat.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting category")
	}
	return cat, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.repo.GetByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading category")
	}
	return cat, nil
}
