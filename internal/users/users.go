// Package users manages staff accounts.
package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// Repository manages user persistence.
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

// GetByID loads one user.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs loads users in bulk, keyed by id.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}
	var rows []models.User
	if err := r.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.User, len(rows))
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

// GetByEmail loads one user by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		First(&user, "email = ?", NormalizeEmail(email)).
		Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByOrganization returns the organization's users ordered by name.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]models.User, error) {
	var rows []models.User
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save persists the full user row.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// NormalizeEmail lowercases and trims an email address. Emails are stored and
// looked up in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Service exposes user lookups and administration.
type Service interface {
	Get(ctx context.Context, orgID int64, userID uuid.UUID) (*models.User, error)
	List(ctx context.Context, orgID int64) ([]models.User, error)
	SetRole(ctx context.Context, orgID int64, userID uuid.UUID, role enums.UserRole) (*models.User, error)
	SetActive(ctx context.Context, orgID int64, userID uuid.UUID, active bool) (*models.User, error)

	// Directory methods used by the inventory read side and the stations
	// package.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type service struct {
	repo *Repository
}

// NewService wires the user service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, orgID int64, userID uuid.UUID) (*models.User, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user does not belong to this organization")
	}
	return user, nil
}

func (s *service) List(ctx context.Context, orgID int64) ([]models.User, error) {
	rows, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing users")
	}
	return rows, nil
}

func (s *service) SetRole(ctx context.Context, orgID int64, userID uuid.UUID, role enums.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	user, err := s.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving user")
	}
	return user, nil
}

func (s *service) SetActive(ctx context.Context, orgID int64, userID uuid.UUID, active bool) (*models.User, error) {
	user, err := s.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving user")
	}
	return user, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return user, nil
}

func (s *service) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading users")
	}
	return out, nil
}
