package products

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Organization{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type gormCategories struct{ db *gorm.DB }

func (d *gormCategories) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := d.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, err
	}
	return &cat, nil
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), &gormCategories{db: conn})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedOrgAndCategory(t *testing.T, conn *gorm.DB, name string) (*models.Organization, *models.Category) {
	t.Helper()
	org := &models.Organization{
		Name:              name,
		PriceIncreaseStep: dec("0.50"),
		PriceDecreaseStep: dec("0.50"),
		CurrencyCode:      "EUR",
	}
	if err := conn.Create(org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	cat := &models.Category{OrganizationID: org.ID, Name: "Drinks", DynamicPricing: true}
	if err := conn.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return org, cat
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org, cat := seedOrgAndCategory(t, conn, "Create Bar")

	product, err := svc.Create(context.Background(), org.ID, CreateInput{
		CategoryID: cat.ID,
		Name:       "Lager",
		BasePrice:  dec("3.50"),
		MinPrice:   decPtr("2.00"),
		MaxPrice:   decPtr("6.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.ID == 0 || !product.IsActive {
		t.Fatalf("unexpected product: %+v", product)
	}
}

func TestCreateProductDuplicateNameCaseInsensitive(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org, cat := seedOrgAndCategory(t, conn, "Dup Bar")
	ctx := context.Background()

	if _, err := svc.Create(ctx, org.ID, CreateInput{CategoryID: cat.ID, Name: "Lager", BasePrice: dec("3.50")}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, org.ID, CreateInput{CategoryID: cat.ID, Name: "LAGER", BasePrice: dec("3.50")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateProductPriceBounds(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org, cat := seedOrgAndCategory(t, conn, "Bounds Bar")
	ctx := context.Background()

	cases := []CreateInput{
		{CategoryID: cat.ID, Name: "Zero", BasePrice: dec("0")},
		{CategoryID: cat.ID, Name: "MinHigh", BasePrice: dec("3.00"), MinPrice: decPtr("4.00")},
		{CategoryID: cat.ID, Name: "MaxLow", BasePrice: dec("3.00"), MaxPrice: decPtr("2.00")},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, org.ID, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %s, got %v", input.Name, err)
		}
	}
}

func TestCreateProductForeignCategory(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org, _ := seedOrgAndCategory(t, conn, "Own Bar")
	_, foreignCat := seedOrgAndCategory(t, conn, "Other Bar")

	_, err := svc.Create(context.Background(), org.ID, CreateInput{
		CategoryID: foreignCat.ID,
		Name:       "Smuggled Ale",
		BasePrice:  dec("3.00"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org, cat := seedOrgAndCategory(t, conn, "Update Bar")
	ctx := context.Background()

	product, err := svc.Create(ctx, org.ID, CreateInput{CategoryID: cat.ID, Name: "Ale", BasePrice: dec("3.00")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Pale Ale"
	updated, err := svc.Update(ctx, org.ID, product.ID, UpdateInput{
		Name:      &name,
		BasePrice: decPtr("3.80"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Pale Ale" || !updated.BasePrice.Equal(dec("3.80")) {
		t.Fatalf("unexpected product: %+v", updated)
	}
}

func TestDeactivateProductIsSoft(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org, cat := seedOrgAndCategory(t, conn, "Soft Bar")
	ctx := context.Background()

	product, err := svc.Create(ctx, org.ID, CreateInput{CategoryID: cat.ID, Name: "Ale", BasePrice: dec("3.00")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(ctx, org.ID, product.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The row survives; default listings hide it.
	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("expected product inactive")
	}

	visible, err := svc.List(ctx, org.ID, nil, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected no visible products, got %d", len(visible))
	}
	all, err := svc.List(ctx, org.ID, nil, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 product including inactive, got %d", len(all))
	}
}

func TestGetForeignProductForbidden(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orgA, catA := seedOrgAndCategory(t, conn, "A Bar")
	orgB, _ := seedOrgAndCategory(t, conn, "B Bar")
	ctx := context.Background()

	product, err := svc.Create(ctx, orgA.ID, CreateInput{CategoryID: catA.ID, Name: "Ale", BasePrice: dec("3.00")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Get(ctx, orgB.ID, product.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
