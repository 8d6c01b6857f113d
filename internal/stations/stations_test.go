package stations

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
	dsn := "file:stations_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Organization{}, &models.User{}, &models.Station{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type gormUsers struct{ db *gorm.DB }

func (d *gormUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), &gormUsers{db: conn})
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

func seedUser(t *testing.T, conn *gorm.DB, orgID int64, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          uuid.NewString() + "@test.local",
		Name:           name,
		PasswordHash:   "x",
		IsActive:       true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestCreateStationDuplicateName(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "Dup Bar")
	ctx := context.Background()

	if _, err := svc.Create(ctx, org.ID, CreateInput{Name: "Main"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, org.ID, CreateInput{Name: "MAIN"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAssignAndListUsers(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "Assign Bar")
	ctx := context.Background()

	station, err := svc.Create(ctx, org.ID, CreateInput{Name: "Front"})
	if err != nil {
		t.Fatalf("create station: %v", err)
	}
	user := seedUser(t, conn, org.ID, "Alice")

	if err := svc.AssignUser(ctx, org.ID, station.ID, user.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	// Idempotent.
	if err := svc.AssignUser(ctx, org.ID, station.ID, user.ID); err != nil {
		t.Fatalf("re-assign: %v", err)
	}

	users, err := svc.ListUsers(ctx, org.ID, station.ID)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].ID != user.ID {
		t.Fatalf("unexpected users: %+v", users)
	}

	mine, err := svc.ListForUser(ctx, org.ID, user.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != station.ID {
		t.Fatalf("unexpected stations: %+v", mine)
	}

	if err := svc.UnassignUser(ctx, org.ID, station.ID, user.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	users, err = svc.ListUsers(ctx, org.ID, station.ID)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %d", len(users))
	}
}

func TestAssignForeignUserForbidden(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "Own Bar")
	other := seedOrg(t, conn, "Other Bar")
	ctx := context.Background()

	station, err := svc.Create(ctx, org.ID, CreateInput{Name: "Front"})
	if err != nil {
		t.Fatalf("create station: %v", err)
	}
	foreign := seedUser(t, conn, other.ID, "Mallory")

	err = svc.AssignUser(ctx, org.ID, station.ID, foreign.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStation(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := newTestService(t, conn)
	org := seedOrg(t, conn, "Update Bar")
	ctx := context.Background()

	station, err := svc.Create(ctx, org.ID, CreateInput{Name: "Patio"})
	if err != nil {
		t.Fatalf("create station: %v", err)
	}

	off := false
	updated, err := svc.Update(ctx, org.ID, station.ID, UpdateInput{IsActive: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected station inactive")
	}
}
