package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
)

// Repository manages persistence for inventory rows and their append-only
// transaction log. Writes to either must happen through a Service operation so
// every stock mutation carries a paired transaction row.
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

// GetByOrgAndProduct loads the inventory row for one (organization, product)
// pair. Returns gorm.ErrRecordNotFound when no stock-in happened yet.
func (r *Repository) GetByOrgAndProduct(ctx context.Context, orgID, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.db.WithContext(ctx).
		First(&inv, "organization_id = ? AND product_id = ?", orgID, productID).
		Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByOrgAndProductForUpdate loads the inventory row with a row-level write
// lock. Must run inside a transaction; concurrent mutations of the same row
// serialize here, which is what keeps the quantity from going negative.
func (r *Repository) GetByOrgAndProductForUpdate(ctx context.Context, orgID, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "organization_id = ? AND product_id = ?", orgID, productID).
		Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a fresh inventory row.
func (r *Repository) Create(ctx context.Context, inv *models.Inventory) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// Save persists the full inventory row.
func (r *Repository) Save(ctx context.Context, inv *models.Inventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// ListByOrganization returns all inventory rows for the organization,
// optionally narrowed to one product category.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64, categoryID *int64) ([]models.Inventory, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("inventories.organization_id = ?", orgID)
	if categoryID != nil {
		qb = qb.
			Joins("JOIN products ON products.id = inventories.product_id").
			Where("products.category_id = ?", *categoryID)
	}

	var rows []models.Inventory
	if err := qb.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AppendTransaction writes one immutable audit-log row.
func (r *Repository) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListTransactionsByInventory returns the audit log for one inventory row,
// newest first.
func (r *Repository) ListTransactionsByInventory(ctx context.Context, inventoryID int64) ([]models.InventoryTransaction, error) {
	var rows []models.InventoryTransaction
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaleRow is one SALE transaction joined with the product base price, the
// only inputs the statistics reports need.
type SaleRow struct {
	TransactionID  int64
	QuantityChange decimal.Decimal
	ReferenceID    *string
	CreatedBy      *uuid.UUID
	StationID      *int64
	BasePrice      decimal.Decimal
}

// ListSaleRowsByOrganization returns every SALE transaction for the
// organization, joined through its inventory row to the product. Read-side
// aggregation only; never used for mutation.
func (r *Repository) ListSaleRowsByOrganization(ctx context.Context, orgID int64) ([]SaleRow, error) {
	var rows []SaleRow
	err := r.db.WithContext(ctx).
		Table("inventory_transactions").
		Select("inventory_transactions.id AS transaction_id, " +
			"inventory_transactions.quantity_change, " +
			"inventory_transactions.reference_id, " +
			"inventory_transactions.created_by, " +
			"inventory_transactions.station_id, " +
			"products.base_price").
		Joins("JOIN inventories ON inventories.id = inventory_transactions.inventory_id").
		Joins("JOIN products ON products.id = inventories.product_id").
		Where("inventories.organization_id = ?", orgID).
		Where("inventory_transactions.transaction_type = ?", enums.TransactionTypeSale).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
