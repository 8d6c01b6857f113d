package products

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db/models"
)

// Repository manages product persistence.
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

// GetByID loads one product.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs loads products in bulk, keyed by id. Missing ids are absent from
// the map, not an error.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	if len(ids) == 0 {
		return map[int64]models.Product{}, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]models.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// ExistsByName reports whether the organization already has a product with
// this name, matched case-insensitively. Soft-deleted products still count.
func (r *Repository) ExistsByName(ctx context.Context, orgID int64, name string, excludeID *int64) (bool, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
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

// ListByOrganization returns the organization's products ordered by name,
// optionally narrowed to one category. Inactive products are included only
// when includeInactive is set.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64, categoryID *int64, includeInactive bool) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC")
	if categoryID != nil {
		qb = qb.Where("category_id = ?", *categoryID)
	}
	if !includeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	var rows []models.Product
	if err := qb.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByCategory returns how many products reference the category.
func (r *Repository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists the full product row.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
