// Package sales turns a point-of-sale checkout into inventory mutations.
// A sale is processed atomically: every line item is checked, priced, and
// written inside one database transaction, and all its audit-log rows share
// one sale reference id.
package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/internal/inventory"
	"github.com/stockbar/stockbar-backend/internal/pricing"
	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
	"github.com/stockbar/stockbar-backend/pkg/metrics"
)

const defaultNotes = "POS Sale"

// OrganizationDirectory provides the pricing policy of the selling tenant.
type OrganizationDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Organization, error)
}

// CategoryDirectory tells whether a product's category uses dynamic pricing.
type CategoryDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

// SaleItemInput is one line of a checkout request.
type SaleItemInput struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// SaleInput is a full checkout request.
type SaleInput struct {
	Items     []SaleItemInput
	StationID *int64
	Notes     *string
}

// SaleItemResult echoes one processed line with the price that applied to it.
type SaleItemResult struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// SaleResult is the receipt for one completed checkout.
type SaleResult struct {
	SaleID      string           `json:"sale_id"`
	Items       []SaleItemResult `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Notes       string           `json:"notes"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Service processes checkouts.
type Service interface {
	ProcessSale(ctx context.Context, orgID int64, actorID uuid.UUID, input SaleInput) (*SaleResult, error)
}

// ServiceParams wires the sale processor dependencies.
type ServiceParams struct {
	Client        *db.Client
	Inventory     *inventory.Repository
	Products      inventory.ProductDirectory
	Organizations OrganizationDirectory
	Categories    CategoryDirectory
	Metrics       *metrics.InventoryMetrics
}

type service struct {
	client        *db.Client
	inventory     *inventory.Repository
	products      inventory.ProductDirectory
	organizations OrganizationDirectory
	categories    CategoryDirectory
	metrics       *metrics.InventoryMetrics
}

// NewService wires the sale processor.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db client required")
	}
	if params.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product directory required")
	}
	if params.Organizations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization directory required")
	}
	if params.Categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "category directory required")
	}
	return &service{
		client:        params.Client,
		inventory:     params.Inventory,
		products:      params.Products,
		organizations: params.Organizations,
		categories:    params.Categories,
		metrics:       params.Metrics,
	}, nil
}

// ProcessSale runs one checkout. Items are processed in the order given, each
// one re-pricing its product for the next buyer. Any failing item aborts the
// whole sale; either every line commits or none does.
func (s *service) ProcessSale(ctx context.Context, orgID int64, actorID uuid.UUID, input SaleInput) (*SaleResult, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale must contain at least one item")
	}
	for _, item := range input.Items {
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	org, err := s.organizations.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	saleID := "SALE-" + uuid.NewString()
	notes := defaultNotes
	if input.Notes != nil && *input.Notes != "" {
		notes = *input.Notes
	}

	result := &SaleResult{
		SaleID:      saleID,
		Items:       make([]SaleItemResult, 0, len(input.Items)),
		TotalAmount: decimal.Zero,
		Notes:       notes,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.inventory.WithTx(tx)
		for _, item := range input.Items {
			line, err := s.processItem(ctx, repo, org, actorID, saleID, notes, input.StationID, item)
			if err != nil {
				return err
			}
			result.Items = append(result.Items, *line)
			result.TotalAmount = result.TotalAmount.Add(line.TotalPrice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Timestamp = time.Now().UTC()
	s.metrics.ObserveSale(len(result.Items))
	s.metrics.IncMutation(enums.TransactionTypeSale.String())
	return result, nil
}

func (s *service) processItem(
	ctx context.Context,
	repo *inventory.Repository,
	org *models.Organization,
	actorID uuid.UUID,
	saleID string,
	notes string,
	stationID *int64,
	item SaleItemInput,
) (*SaleItemResult, error) {
	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product.OrganizationID != org.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to this organization")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeProductGone, "product is deactivated")
	}

	category, err := s.categories.FindByID(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}

	inv, err := repo.GetByOrgAndProductForUpdate(ctx, org.ID, product.ID)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory found for "+product.Name)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
	}

	newQuantity := inv.Quantity.Sub(item.Quantity)
	if newQuantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			"insufficient stock for "+product.Name).
			WithDetails(map[string]string{
				"available": inv.Quantity.String(),
				"requested": item.Quantity.String(),
			})
	}

	priceBefore := product.BasePrice
	if inv.AdjustedPrice != nil {
		priceBefore = *inv.AdjustedPrice
	}
	priceAfter := pricing.Next(priceBefore, category.DynamicPricing, org.PriceIncreaseStep, product.MaxPrice)

	inv.Quantity = newQuantity
	inv.AdjustedPrice = &priceAfter
	if err := repo.Save(ctx, inv); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving inventory")
	}

	if err := repo.AppendTransaction(ctx, &models.InventoryTransaction{
		InventoryID:     inv.ID,
		TransactionType: enums.TransactionTypeSale,
		QuantityChange:  item.Quantity.Neg(),
		QuantityAfter:   inv.Quantity,
		PriceBefore:     priceBefore,
		PriceAfter:      priceAfter,
		ReferenceID:     &saleID,
		Notes:           &notes,
		CreatedBy:       &actorID,
		StationID:       stationID,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending transaction")
	}

	return &SaleItemResult{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    item.Quantity,
		UnitPrice:   priceBefore,
		TotalPrice:  priceBefore.Mul(item.Quantity),
	}, nil
}
