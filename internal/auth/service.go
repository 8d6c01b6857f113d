// Package auth handles tenant signup, staff login, and access tokens.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/internal/organizations"
	"github.com/stockbar/stockbar-backend/internal/users"
	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

const minPasswordLength = 8

var defaultPriceStep = decimal.NewFromFloat(0.5)

// RegisterInput creates a new organization with its first admin account.
type RegisterInput struct {
	OrganizationName string
	UserName         string
	Email            string
	Password         string
}

// LoginInput authenticates an existing staff account.
type LoginInput struct {
	Email    string
	Password string
}

// Session is an issued access token with the account it belongs to.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

// SessionUser is the public shape of the authenticated account.
type SessionUser struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID int64          `json:"organization_id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Role           enums.UserRole `json:"role"`
}

// Service registers tenants and authenticates staff.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Verify(tokenString string) (*Identity, error)
}

// ServiceParams wires the auth service dependencies.
type ServiceParams struct {
	Client        *db.Client
	Organizations *organizations.Repository
	Users         *users.Repository
	Tokens        *TokenManager
}

type service struct {
	client        *db.Client
	organizations *organizations.Repository
	users         *users.Repository
	tokens        *TokenManager
}

// NewService wires the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db client required")
	}
	if params.Organizations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "token manager required")
	}
	return &service{
		client:        params.Client,
		organizations: params.Organizations,
		users:         params.Users,
		tokens:        params.Tokens,
	}, nil
}

// Register creates the organization and its admin account atomically.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if input.OrganizationName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	if input.UserName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user name is required")
	}
	email := users.NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	var account *models.User
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		orgRepo := s.organizations.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		taken, err := orgRepo.ExistsByName(ctx, input.OrganizationName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking organization name")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "an organization with this name already exists")
		}

		org := &models.Organization{
			Name:              input.OrganizationName,
			PriceIncreaseStep: defaultPriceStep,
			PriceDecreaseStep: defaultPriceStep,
			CurrencyCode:      "EUR",
		}
		if err := orgRepo.Create(ctx, org); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "an organization with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating organization")
		}

		account = &models.User{
			ID:             uuid.New(),
			OrganizationID: org.ID,
			Email:          email,
			Name:           input.UserName,
			PasswordHash:   string(hash),
			Role:           enums.UserRoleAdmin,
			IsActive:       true,
		}
		if err := userRepo.Create(ctx, account); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.session(account)
}

// Login verifies the credentials and issues a fresh token. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	account, err := s.users.GetByEmail(ctx, input.Email)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	if !account.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)) != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.session(account)
}

func (s *service) Verify(tokenString string) (*Identity, error) {
	return s.tokens.Verify(tokenString)
}

func (s *service) session(account *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User: SessionUser{
			ID:             account.ID,
			OrganizationID: account.OrganizationID,
			Name:           account.Name,
			Email:          account.Email,
			Role:           account.Role,
		},
	}, nil
}
