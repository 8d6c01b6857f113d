package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

var errProductNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Organization{},
		&models.Category{},
		&models.Product{},
		&models.Station{},
		&models.User{},
		&models.Inventory{},
		&models.InventoryTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// gormDirectory satisfies the product, user, and station directory interfaces
// straight off the test database.
type gormDirectory struct {
	db *gorm.DB
}

func (d *gormDirectory) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := d.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, errProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (d *gormDirectory) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	var rows []models.Product
	if err := d.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]models.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

type gormUserDirectory struct {
	db *gorm.DB
}

func (d *gormUserDirectory) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	var rows []models.User
	if err := d.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.User, len(rows))
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

type gormStationDirectory struct {
	db *gorm.DB
}

func (d *gormStationDirectory) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Station, error) {
	var rows []models.Station
	if err := d.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]models.Station, len(rows))
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Client:   db.FromGorm(conn),
		Repo:     NewRepository(conn),
		Products: &gormDirectory{db: conn},
		Users:    &gormUserDirectory{db: conn},
		Stations: &gormStationDirectory{db: conn},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedOrg(t *testing.T, conn *gorm.DB, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		Name:              name,
		PriceIncreaseStep: decimal.RequireFromString("0.50"),
		PriceDecreaseStep: decimal.RequireFromString("0.50"),
		CurrencyCode:      "EUR",
	}
	if err := conn.Create(org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	return org
}

func seedCategory(t *testing.T, conn *gorm.DB, orgID int64, name string, dynamic bool) *models.Category {
	t.Helper()
	cat := &models.Category{OrganizationID: orgID, Name: name, DynamicPricing: dynamic}
	if err := conn.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return cat
}

func seedProduct(t *testing.T, conn *gorm.DB, orgID, categoryID int64, name, basePrice string) *models.Product {
	t.Helper()
	product := &models.Product{
		OrganizationID: orgID,
		CategoryID:     categoryID,
		Name:           name,
		BasePrice:      decimal.RequireFromString(basePrice),
		IsActive:       true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedUser(t *testing.T, conn *gorm.DB, orgID int64, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		Name:           name,
		PasswordHash:   "x",
		IsActive:       true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedStation(t *testing.T, conn *gorm.DB, orgID int64, name string) *models.Station {
	t.Helper()
	station := &models.Station{OrganizationID: orgID, Name: name, IsActive: true}
	if err := conn.Create(station).Error; err != nil {
		t.Fatalf("seed station: %v", err)
	}
	return station
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}
