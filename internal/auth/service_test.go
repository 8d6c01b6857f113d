package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/internal/organizations"
	"github.com/stockbar/stockbar-backend/internal/users"
	"github.com/stockbar/stockbar-backend/pkg/config"
	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Organization{}, &models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tokens, err := NewTokenManager(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "stockbar-test",
		ExpirationMinutes: 15,
	})
	if err != nil {
		t.Fatalf("build token manager: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Client:        db.FromGorm(conn),
		Organizations: organizations.NewRepository(conn),
		Users:         users.NewRepository(conn),
		Tokens:        tokens,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn
}

func TestRegisterCreatesOrganizationAndAdmin(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{
		OrganizationName: "Tap House",
		UserName:         "Owner",
		Email:            "Owner@TapHouse.test",
		Password:         "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}
	if session.User.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", session.User.Role)
	}
	if session.User.Email != "owner@taphouse.test" {
		t.Fatalf("expected normalized email, got %s", session.User.Email)
	}

	var org models.Organization
	if err := conn.First(&org, "name = ?", "Tap House").Error; err != nil {
		t.Fatalf("load org: %v", err)
	}
	var account models.User
	if err := conn.First(&account, "organization_id = ?", org.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if account.PasswordHash == "correct horse" {
		t.Fatal("password stored in plain text")
	}

	identity, err := svc.Verify(session.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != account.ID || identity.OrganizationID != org.ID {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin identity, got %s", identity.Role)
	}
}

func TestRegisterDuplicateOrganization(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first := RegisterInput{
		OrganizationName: "Same Bar",
		UserName:         "One",
		Email:            "one@same.test",
		Password:         "password1",
	}
	if _, err := svc.Register(ctx, first); err != nil {
		t.Fatalf("register: %v", err)
	}

	second := first
	second.Email = "two@same.test"
	_, err := svc.Register(ctx, second)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		OrganizationName: "Short Bar",
		UserName:         "One",
		Email:            "one@short.test",
		Password:         "short",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		OrganizationName: "Login Bar",
		UserName:         "Owner",
		Email:            "owner@login.test",
		Password:         "password1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	session, err := svc.Login(ctx, LoginInput{Email: "OWNER@login.test", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}

	_, err = svc.Login(ctx, LoginInput{Email: "owner@login.test", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "ghost@login.test", Password: "password1"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	// Deactivated accounts cannot log in.
	if err := conn.Model(&models.User{}).
		Where("email = ?", "owner@login.test").
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate account: %v", err)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "owner@login.test", Password: "password1"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Verify("not-a-token")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
