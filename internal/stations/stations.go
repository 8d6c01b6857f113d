// Package stations manages point-of-sale locations and their staff
// assignments.
package stations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// UserDirectory verifies staff membership before assignment.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Repository manages station persistence and the station-user join table.
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

// GetByID loads one station.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	var station models.Station
	if err := r.db.WithContext(ctx).First(&station, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

// GetByIDs loads stations in bulk, keyed by id.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Station, error) {
	if len(ids) == 0 {
		return map[int64]models.Station{}, nil
	}
	var rows []models.Station
	if err := r.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]models.Station, len(rows))
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

// ListByOrganization returns the organization's stations ordered by name.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]models.Station, error) {
	var rows []models.Station
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsByName reports whether the organization already has a station with
// this name, matched case-insensitively.
func (r *Repository) ExistsByName(ctx context.Context, orgID int64, name string, excludeID *int64) (bool, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Station{}).
		Where("organization_id = ? AND LOWER(name) = LOWER(?)", orgID, name)
	if excludeID != nil {
		qb = qb.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := qb.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a station.
func (r *Repository) Create(ctx context.Context, station *models.Station) error {
	return r.db.WithContext(ctx).Create(station).Error
}

// Save persists the full station row.
func (r *Repository) Save(ctx context.Context, station *models.Station) error {
	return r.db.WithContext(ctx).Save(station).Error
}

// AssignUser links a user to a station. Re-assigning is a no-op.
func (r *Repository) AssignUser(ctx context.Context, station *models.Station, user *models.User) error {
	return r.db.WithContext(ctx).Model(station).Association("Users").Append(user)
}

// UnassignUser removes the station-user link.
func (r *Repository) UnassignUser(ctx context.Context, station *models.Station, user *models.User) error {
	return r.db.WithContext(ctx).Model(station).Association("Users").Delete(user)
}

// ListUsers returns the users assigned to the station.
func (r *Repository) ListUsers(ctx context.Context, station *models.Station) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Model(station).Association("Users").Find(&users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByUser returns the stations a user is assigned to.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Station, error) {
	var rows []models.Station
	if err := r.db.WithContext(ctx).
		Joins("JOIN station_users ON station_users.station_id = stations.id").
		Where("station_users.user_id = ?", userID).
		Order("stations.name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateInput holds the fields for a new station.
type CreateInput struct {
	Name        string
	Description *string
}

// UpdateInput holds the mutable station fields.
type UpdateInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Service manages stations scoped to one organization per call.
type Service interface {
	Create(ctx context.Context, orgID int64, input CreateInput) (*models.Station, error)
	Get(ctx context.Context, orgID, stationID int64) (*models.Station, error)
	List(ctx context.Context, orgID int64) ([]models.Station, error)
	Update(ctx context.Context, orgID, stationID int64, input UpdateInput) (*models.Station, error)
	AssignUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) error
	UnassignUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) error
	ListUsers(ctx context.Context, orgID, stationID int64) ([]models.User, error)
	ListForUser(ctx context.Context, orgID int64, userID uuid.UUID) ([]models.Station, error)

	// FindByIDs is the directory method used by the inventory read side.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Station, error)
}

type service struct {
	repo  *Repository
	users UserDirectory
}

// NewService wires the station service.
func NewService(repo *Repository, users UserDirectory) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "station repository required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user directory required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) Create(ctx context.Context, orgID int64, input CreateInput) (*models.Station, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station name is required")
	}
	taken, err := s.repo.ExistsByName(ctx, orgID, input.Name, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking station name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a station with this name already exists")
	}

	station := &models.Station{
		OrganizationID: orgID,
		Name:           input.Name,
		Description:    input.Description,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, station); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a station with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating station")
	}
	return station, nil
}

func (s *service) Get(ctx context.Context, orgID, stationID int64) (*models.Station, error) {
	station, err := s.repo.GetByID(ctx, stationID)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "station not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading station")
	}
	if station.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "station does not belong to this organization")
	}
	return station, nil
}

func (s *service) List(ctx context.Context, orgID int64) ([]models.Station, error) {
	rows, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stations")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, orgID, stationID int64, input UpdateInput) (*models.Station, error) {
	station, err := s.Get(ctx, orgID, stationID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != station.Name {
		taken, err := s.repo.ExistsByName(ctx, orgID, *input.Name, &station.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking station name")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a station with this name already exists")
		}
		station.Name = *input.Name
	}
	if input.Description != nil {
		station.Description = input.Description
	}
	if input.IsActive != nil {
		station.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, station); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving station")
	}
	return station, nil
}

func (s *service) AssignUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) error {
	station, user, err := s.stationAndUser(ctx, orgID, stationID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.AssignUser(ctx, station, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assigning user to station")
	}
	return nil
}

func (s *service) UnassignUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) error {
	station, user, err := s.stationAndUser(ctx, orgID, stationID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.UnassignUser(ctx, station, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassigning user from station")
	}
	return nil
}

func (s *service) ListUsers(ctx context.Context, orgID, stationID int64) ([]models.User, error) {
	station, err := s.Get(ctx, orgID, stationID)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx, station)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing station users")
	}
	return users, nil
}

func (s *service) ListForUser(ctx context.Context, orgID int64, userID uuid.UUID) ([]models.Station, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user does not belong to this organization")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing user stations")
	}
	return rows, nil
}

func (s *service) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Station, error) {
	out, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stations")
	}
	return out, nil
}

func (s *service) stationAndUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) (*models.Station, *models.User, error) {
	station, err := s.Get(ctx, orgID, stationID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.OrganizationID != orgID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "user does not belong to this organization")
	}
	return station, user, nil
}
