package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
	"github.com/stockbar/stockbar-backend/pkg/metrics"
)

// ProductDirectory exposes the product master data the inventory core needs.
// Products are owned by the products package; this core only reads them.
type ProductDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

// UserDirectory resolves actor display data for read-side reports.
type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// StationDirectory resolves station display data for read-side reports.
type StationDirectory interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Station, error)
}

// Service is the stock mutation engine plus the read side built on the
// transaction log. Every mutation runs as one database transaction spanning
// the locked inventory read, the invariant check, the inventory write, and
// the audit-log append.
type Service interface {
	AddStock(ctx context.Context, orgID int64, actorID uuid.UUID, input AddStockInput) (*InventoryView, error)
	RemoveStock(ctx context.Context, orgID int64, actorID uuid.UUID, input RemoveStockInput) (*InventoryView, error)
	AdjustStock(ctx context.Context, orgID int64, actorID uuid.UUID, input AdjustStockInput) (*InventoryView, error)
	GetInventory(ctx context.Context, orgID, productID int64) (*InventoryView, error)
	ListInventory(ctx context.Context, orgID int64, categoryID *int64) ([]InventoryView, error)
	GetTransactionHistory(ctx context.Context, orgID, productID int64) ([]TransactionView, error)
	GetUserSalesStats(ctx context.Context, orgID int64) ([]UserSalesStats, error)
	GetStationSalesStats(ctx context.Context, orgID int64) ([]StationSalesStats, error)
}

// AddStockInput records a stock purchase (inbound delivery).
type AddStockInput struct {
	ProductID int64
	Quantity  decimal.Decimal
	Notes     *string
}

// RemoveStockInput records an outbound correction (breakage, spillage, waste).
type RemoveStockInput struct {
	ProductID   int64
	Quantity    decimal.Decimal
	ReferenceID *string
	Notes       *string
}

// AdjustStockInput sets the quantity to an absolute target, e.g. after a
// physical recount.
type AdjustStockInput struct {
	ProductID   int64
	NewQuantity decimal.Decimal
	Notes       *string
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Client   *db.Client
	Repo     *Repository
	Products ProductDirectory
	Users    UserDirectory
	Stations StationDirectory
	Metrics  *metrics.InventoryMetrics
}

type service struct {
	client   *db.Client
	repo     *Repository
	products ProductDirectory
	users    UserDirectory
	stations StationDirectory
	metrics  *metrics.InventoryMetrics
}

// NewService wires the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product directory required")
	}
	return &service{
		client:   params.Client,
		repo:     params.Repo,
		products: params.Products,
		users:    params.Users,
		stations: params.Stations,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) AddStock(ctx context.Context, orgID int64, actorID uuid.UUID, input AddStockInput) (*InventoryView, error) {
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.organizationProduct(ctx, orgID, input.ProductID)
	if err != nil {
		return nil, err
	}

	var view *InventoryView
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inv, err := repo.GetByOrgAndProductForUpdate(ctx, orgID, product.ID)
		if db.IsNotFound(err) {
			basePrice := product.BasePrice
			inv = &models.Inventory{
				OrganizationID: orgID,
				ProductID:      product.ID,
				Quantity:       decimal.Zero,
				AdjustedPrice:  &basePrice,
			}
			if err := repo.Create(ctx, inv); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating inventory")
			}
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
		}

		inv.Quantity = inv.Quantity.Add(input.Quantity)
		if err := repo.Save(ctx, inv); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving inventory")
		}

		price := unitPrice(inv, product)
		if err := repo.AppendTransaction(ctx, &models.InventoryTransaction{
			InventoryID:     inv.ID,
			TransactionType: enums.TransactionTypePurchase,
			QuantityChange:  input.Quantity,
			QuantityAfter:   inv.Quantity,
			PriceBefore:     price,
			PriceAfter:      price,
			Notes:           input.Notes,
			CreatedBy:       &actorID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending transaction")
		}

		view = buildView(inv, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMutation(enums.TransactionTypePurchase.String())
	return view, nil
}

func (s *service) RemoveStock(ctx context.Context, orgID int64, actorID uuid.UUID, input RemoveStockInput) (*InventoryView, error) {
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.organizationProduct(ctx, orgID, input.ProductID)
	if err != nil {
		return nil, err
	}

	var view *InventoryView
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inv, err := repo.GetByOrgAndProductForUpdate(ctx, orgID, product.ID)
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no inventory found for this product")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
		}

		newQuantity := inv.Quantity.Sub(input.Quantity)
		if newQuantity.IsNegative() {
			return insufficientStock(product.Name, inv.Quantity, input.Quantity)
		}

		inv.Quantity = newQuantity
		if err := repo.Save(ctx, inv); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving inventory")
		}

		price := unitPrice(inv, product)
		if err := repo.AppendTransaction(ctx, &models.InventoryTransaction{
			InventoryID:     inv.ID,
			TransactionType: enums.TransactionTypeAdjustment,
			QuantityChange:  input.Quantity.Neg(),
			QuantityAfter:   inv.Quantity,
			PriceBefore:     price,
			PriceAfter:      price,
			ReferenceID:     input.ReferenceID,
			Notes:           input.Notes,
			CreatedBy:       &actorID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending transaction")
		}

		view = buildView(inv, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMutation(enums.TransactionTypeAdjustment.String())
	return view, nil
}

func (s *service) AdjustStock(ctx context.Context, orgID int64, actorID uuid.UUID, input AdjustStockInput) (*InventoryView, error) {
	if input.NewQuantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	product, err := s.organizationProduct(ctx, orgID, input.ProductID)
	if err != nil {
		return nil, err
	}

	var view *InventoryView
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inv, err := repo.GetByOrgAndProductForUpdate(ctx, orgID, product.ID)
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no inventory found for this product")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
		}

		// The delta is informational only; the target quantity is the
		// contract and is already validated non-negative.
		quantityChange := input.NewQuantity.Sub(inv.Quantity)

		inv.Quantity = input.NewQuantity
		if err := repo.Save(ctx, inv); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving inventory")
		}

		price := unitPrice(inv, product)
		if err := repo.AppendTransaction(ctx, &models.InventoryTransaction{
			InventoryID:     inv.ID,
			TransactionType: enums.TransactionTypeAdjustment,
			QuantityChange:  quantityChange,
			QuantityAfter:   inv.Quantity,
			PriceBefore:     price,
			PriceAfter:      price,
			Notes:           input.Notes,
			CreatedBy:       &actorID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "appending transaction")
		}

		view = buildView(inv, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMutation(enums.TransactionTypeAdjustment.String())
	return view, nil
}

func (s *service) GetInventory(ctx context.Context, orgID, productID int64) (*InventoryView, error) {
	inv, err := s.repo.GetByOrgAndProduct(ctx, orgID, productID)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory found for this product")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeProductGone, "product is deactivated")
	}

	return buildView(inv, product), nil
}

func (s *service) ListInventory(ctx context.Context, orgID int64, categoryID *int64) ([]InventoryView, error) {
	rows, err := s.repo.ListByOrganization(ctx, orgID, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing inventory")
	}

	productIDs := make([]int64, 0, len(rows))
	for _, inv := range rows {
		productIDs = append(productIDs, inv.ProductID)
	}
	productsByID, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	views := make([]InventoryView, 0, len(rows))
	for i := range rows {
		product, ok := productsByID[rows[i].ProductID]
		if !ok || !product.IsActive {
			continue
		}
		views = append(views, *buildView(&rows[i], &product))
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].ProductName < views[j].ProductName
	})
	return views, nil
}

func (s *service) GetTransactionHistory(ctx context.Context, orgID, productID int64) ([]TransactionView, error) {
	inv, err := s.repo.GetByOrgAndProduct(ctx, orgID, productID)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no inventory found for this product")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory")
	}

	txns, err := s.repo.ListTransactionsByInventory(ctx, inv.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing transactions")
	}

	actorIDs := make([]uuid.UUID, 0, len(txns))
	seen := map[uuid.UUID]bool{}
	for _, txn := range txns {
		if txn.CreatedBy != nil && !seen[*txn.CreatedBy] {
			seen[*txn.CreatedBy] = true
			actorIDs = append(actorIDs, *txn.CreatedBy)
		}
	}
	usersByID, err := s.lookupUsers(ctx, actorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]TransactionView, 0, len(txns))
	for _, txn := range txns {
		view := TransactionView{
			ID:              txn.ID,
			TransactionType: txn.TransactionType,
			QuantityChange:  txn.QuantityChange,
			QuantityBefore:  txn.QuantityAfter.Sub(txn.QuantityChange),
			QuantityAfter:   txn.QuantityAfter,
			PriceBefore:     txn.PriceBefore,
			PriceAfter:      txn.PriceAfter,
			ReferenceID:     txn.ReferenceID,
			Notes:           txn.Notes,
			StationID:       txn.StationID,
			CreatedAt:       txn.CreatedAt,
		}
		if txn.CreatedBy != nil {
			id := txn.CreatedBy.String()
			view.CreatedBy = &id
			if user, ok := usersByID[*txn.CreatedBy]; ok {
				view.CreatedByName = &user.Name
				view.CreatedByEmail = &user.Email
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// organizationProduct verifies the product exists, belongs to the
// organization, and is still active. Checked before any mutation.
func (s *service) organizationProduct(ctx context.Context, orgID, productID int64) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to this organization")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeProductGone, "product is deactivated")
	}
	return product, nil
}

func (s *service) lookupUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if s.users == nil || len(ids) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}
	return s.users.FindByIDs(ctx, ids)
}

func insufficientStock(productName string, available, requested decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		"insufficient stock for "+productName).
		WithDetails(map[string]string{
			"available": available.String(),
			"requested": requested.String(),
		})
}

func unitPrice(inv *models.Inventory, product *models.Product) decimal.Decimal {
	if inv.AdjustedPrice != nil {
		return *inv.AdjustedPrice
	}
	return product.BasePrice
}

func buildView(inv *models.Inventory, product *models.Product) *InventoryView {
	return &InventoryView{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Description:    product.Description,
		Quantity:       inv.Quantity,
		UnitPrice:      unitPrice(inv, product),
		BasePrice:      product.BasePrice,
		MinPrice:       product.MinPrice,
		MaxPrice:       product.MaxPrice,
		UpdatedAt:      inv.UpdatedAt,
	}
}
