// Package products manages the sellable catalog. Products never leave the
// database; deletion deactivates them so the audit log keeps resolving.
package products

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// CategoryDirectory verifies category ownership on create and update.
type CategoryDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

// CreateInput holds the fields for a new product.
type CreateInput struct {
	CategoryID  int64
	Name        string
	Description *string
	BasePrice   decimal.Decimal
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

// UpdateInput holds the mutable product fields. Nil pointers leave the
// current value in place; price bounds are replaced wholesale.
type UpdateInput struct {
	CategoryID  *int64
	Name        *string
	Description *string
	BasePrice   *decimal.Decimal
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

// Service manages the product catalog of one organization at a time.
type Service interface {
	Create(ctx context.Context, orgID int64, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, orgID, productID int64) (*models.Product, error)
	List(ctx context.Context, orgID int64, categoryID *int64, includeInactive bool) ([]models.Product, error)
	Update(ctx context.Context, orgID, productID int64, input UpdateInput) (*models.Product, error)
	Deactivate(ctx context.Context, orgID, productID int64) error

	// Directory methods used by the inventory and sales cores.
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

type service struct {
	repo       *Repository
	categories CategoryDirectory
}

// NewService wires the product service.
func NewService(repo *Repository, categories CategoryDirectory) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	if categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "category directory required")
	}
	return &service{repo: repo, categories: categories}, nil
}

func (s *service) Create(ctx context.Context, orgID int64, input CreateInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if err := validatePrices(input.BasePrice, input.MinPrice, input.MaxPrice); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "category does not belong to this organization")
	}

	taken, err := s.repo.ExistsByName(ctx, orgID, input.Name, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking product name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
	}

	product := &models.Product{
		OrganizationID: orgID,
		CategoryID:     input.CategoryID,
		Name:           input.Name,
		Description:    input.Description,
		BasePrice:      input.BasePrice,
		MinPrice:       input.MinPrice,
		MaxPrice:       input.MaxPrice,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, orgID, productID int64) (*models.Product, error) {
	product, err := s.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to this organization")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, orgID int64, categoryID *int64, includeInactive bool) ([]models.Product, error) {
	rows, err := s.repo.ListByOrganization(ctx, orgID, categoryID, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, orgID, productID int64, input UpdateInput) (*models.Product, error) {
	product, err := s.Get(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.OrganizationID != orgID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "category does not belong to this organization")
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Name != nil && *input.Name != product.Name {
		taken, err := s.repo.ExistsByName(ctx, orgID, *input.Name, &product.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking product name")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.BasePrice != nil {
		product.BasePrice = *input.BasePrice
	}
	if input.MinPrice != nil {
		product.MinPrice = input.MinPrice
	}
	if input.MaxPrice != nil {
		product.MaxPrice = input.MaxPrice
	}
	if err := validatePrices(product.BasePrice, product.MinPrice, product.MaxPrice); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving product")
	}
	return product, nil
}

func (s *service) Deactivate(ctx context.Context, orgID, productID int64) error {
	product, err := s.Get(ctx, orgID, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}
	product.IsActive = false
	if err := s.repo.Save(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating product")
	}
	return nil
}

func (s *service) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}

func (s *service) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	out, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}
	return out, nil
}

func validatePrices(base decimal.Decimal, min, max *decimal.Decimal) error {
	if !base.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if min != nil && min.GreaterThan(base) {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum price must not exceed base price")
	}
	if max != nil && max.LessThan(base) {
		return pkgerrors.New(pkgerrors.CodeValidation, "maximum price must not be below base price")
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum price must not exceed maximum price")
	}
	return nil
}
