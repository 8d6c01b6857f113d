package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:categories_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Organization{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type gormProductCounter struct{ db *gorm.DB }

func (c *gormProductCounter) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), &gormProductCounter{db: conn})
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

func TestCreateCategoryDuplicateName(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "Dup Bar")
	ctx := context.Background()

	if _, err := svc.Create(ctx, org.ID, CreateInput{Name: "Beers", DynamicPricing: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, org.ID, CreateInput{Name: "beers", DynamicPricing: false})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Same name in another organization is fine.
	other := seedOrg(t, conn, "Other Bar")
	if _, err := svc.Create(ctx, other.ID, CreateInput{Name: "Beers", DynamicPricing: true}); err != nil {
		t.Fatalf("create in other org: %v", err)
	}
}

func TestUpdateCategoryTogglesDynamicPricing(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "Toggle Bar")
	ctx := context.Background()

	cat, err := svc.Create(ctx, org.ID, CreateInput{Name: "Wines", DynamicPricing: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	off := false
	updated, err := svc.Update(ctx, org.ID, cat.ID, UpdateInput{DynamicPricing: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DynamicPricing {
		t.Fatal("expected dynamic pricing off")
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "InUse Bar")
	ctx := context.Background()

	cat, err := svc.Create(ctx, org.ID, CreateInput{Name: "Spirits", DynamicPricing: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	product := &models.Product{
		OrganizationID: org.ID,
		CategoryID:     cat.ID,
		Name:           "Gin",
		BasePrice:      decimal.RequireFromString("7.00"),
		IsActive:       true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	_, err = svc.Delete(ctx, org.ID, cat.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := conn.Delete(product).Error; err != nil {
		t.Fatalf("remove product: %v", err)
	}
	deleted, err := svc.Delete(ctx, org.ID, cat.ID)
	if err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	if deleted.Name != "Spirits" {
		t.Fatalf("expected deleted row back, got %+v", deleted)
	}
}

func TestGetForeignCategoryForbidden(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orgA := seedOrg(t, conn, "A Bar")
	orgB := seedOrg(t, conn, "B Bar")
	ctx := context.Background()

	cat, err := svc.Create(ctx, orgA.ID, CreateInput{Name: "Beers", DynamicPricing: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Get(ctx, orgB.ID, cat.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
