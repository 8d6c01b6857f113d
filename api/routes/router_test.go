package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/stockbar/stockbar-backend/internal/auth"
	categorysvc "github.com/stockbar/stockbar-backend/internal/categories"
	inventorysvc "github.com/stockbar/stockbar-backend/internal/inventory"
	orgsvc "github.com/stockbar/stockbar-backend/internal/organizations"
	productsvc "github.com/stockbar/stockbar-backend/internal/products"
	salesvc "github.com/stockbar/stockbar-backend/internal/sales"
	stationsvc "github.com/stockbar/stockbar-backend/internal/stations"
	"github.com/stockbar/stockbar-backend/pkg/config"
	"github.com/stockbar/stockbar-backend/pkg/db/models"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	"github.com/stockbar/stockbar-backend/pkg/logger"
	"github.com/stockbar/stockbar-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct {
	tokens *authsvc.TokenManager
}

func (s stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s stubAuthService) Verify(tokenString string) (*authsvc.Identity, error) {
	return s.tokens.Verify(tokenString)
}

type stubOrgService struct{}

func (stubOrgService) Get(ctx context.Context, orgID int64) (*models.Organization, error) {
	return &models.Organization{ID: orgID, Name: "stub"}, nil
}

func (stubOrgService) Update(ctx context.Context, orgID int64, input orgsvc.UpdateInput) (*models.Organization, error) {
	panic("unimplemented")
}

func (stubOrgService) FindByID(ctx context.Context, id int64) (*models.Organization, error) {
	panic("unimplemented")
}

type stubCategoryService struct{}

func (stubCategoryService) Create(ctx context.Context, orgID int64, input categorysvc.CreateInput) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoryService) Get(ctx context.Context, orgID, categoryID int64) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoryService) List(ctx context.Context, orgID int64) ([]models.Category, error) {
	return []models.Category{}, nil
}

func (stubCategoryService) Update(ctx context.Context, orgID, categoryID int64, input categorysvc.UpdateInput) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoryService) Delete(ctx context.Context, orgID, categoryID int64) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoryService) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	panic("unimplemented")
}

type stubProductService struct{}

func (stubProductService) Create(ctx context.Context, orgID int64, input productsvc.CreateInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) Get(ctx context.Context, orgID, productID int64) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) List(ctx context.Context, orgID int64, categoryID *int64, includeInactive bool) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubProductService) Update(ctx context.Context, orgID, productID int64, input productsvc.UpdateInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) Deactivate(ctx context.Context, orgID, productID int64) error {
	panic("unimplemented")
}

func (stubProductService) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	panic("unimplemented")
}

type stubStationService struct{}

func (stubStationService) Create(ctx context.Context, orgID int64, input stationsvc.CreateInput) (*models.Station, error) {
	panic("unimplemented")
}

func (stubStationService) Get(ctx context.Context, orgID, stationID int64) (*models.Station, error) {
	panic("unimplemented")
}

func (stubStationService) List(ctx context.Context, orgID int64) ([]models.Station, error) {
	return []models.Station{}, nil
}

func (stubStationService) Update(ctx context.Context, orgID, stationID int64, input stationsvc.UpdateInput) (*models.Station, error) {
	panic("unimplemented")
}

func (stubStationService) AssignUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) error {
	panic("unimplemented")
}

func (stubStationService) UnassignUser(ctx context.Context, orgID, stationID int64, userID uuid.UUID) error {
	panic("unimplemented")
}

func (stubStationService) ListUsers(ctx context.Context, orgID, stationID int64) ([]models.User, error) {
	panic("unimplemented")
}

func (stubStationService) ListForUser(ctx context.Context, orgID int64, userID uuid.UUID) ([]models.Station, error) {
	return []models.Station{}, nil
}

func (stubStationService) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Station, error) {
	panic("unimplemented")
}

type stubUserService struct{}

func (stubUserService) Get(ctx context.Context, orgID int64, userID uuid.UUID) (*models.User, error) {
	panic("unimplemented")
}

func (stubUserService) List(ctx context.Context, orgID int64) ([]models.User, error) {
	return []models.User{}, nil
}

func (stubUserService) SetRole(ctx context.Context, orgID int64, userID uuid.UUID, role enums.UserRole) (*models.User, error) {
	panic("unimplemented")
}

func (stubUserService) SetActive(ctx context.Context, orgID int64, userID uuid.UUID, active bool) (*models.User, error) {
	panic("unimplemented")
}

func (stubUserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	panic("unimplemented")
}

func (stubUserService) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	panic("unimplemented")
}

type stubInventoryService struct{}

func (stubInventoryService) AddStock(ctx context.Context, orgID int64, actorID uuid.UUID, input inventorysvc.AddStockInput) (*inventorysvc.InventoryView, error) {
	panic("unimplemented")
}

func (stubInventoryService) RemoveStock(ctx context.Context, orgID int64, actorID uuid.UUID, input inventorysvc.RemoveStockInput) (*inventorysvc.InventoryView, error) {
	panic("unimplemented")
}

func (stubInventoryService) AdjustStock(ctx context.Context, orgID int64, actorID uuid.UUID, input inventorysvc.AdjustStockInput) (*inventorysvc.InventoryView, error) {
	panic("unimplemented")
}

func (stubInventoryService) GetInventory(ctx context.Context, orgID, productID int64) (*inventorysvc.InventoryView, error) {
	panic("unimplemented")
}

func (stubInventoryService) ListInventory(ctx context.Context, orgID int64, categoryID *int64) ([]inventorysvc.InventoryView, error) {
	return []inventorysvc.InventoryView{}, nil
}

func (stubInventoryService) GetTransactionHistory(ctx context.Context, orgID, productID int64) ([]inventorysvc.TransactionView, error) {
	panic("unimplemented")
}

func (stubInventoryService) GetUserSalesStats(ctx context.Context, orgID int64) ([]inventorysvc.UserSalesStats, error) {
	panic("unimplemented")
}

func (stubInventoryService) GetStationSalesStats(ctx context.Context, orgID int64) ([]inventorysvc.StationSalesStats, error) {
	panic("unimplemented")
}

type stubSalesService struct{}

func (stubSalesService) ProcessSale(ctx context.Context, orgID int64, actorID uuid.UUID, input salesvc.SaleInput) (*salesvc.SaleResult, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 5,
			LoginIPLimit:    20,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *authsvc.TokenManager) {
	t.Helper()

	tokens, err := authsvc.NewTokenManager(cfg.JWT)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	router := NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		nil,
		nil,
		Services{
			Auth:          stubAuthService{tokens: tokens},
			Organizations: stubOrgService{},
			Categories:    stubCategoryService{},
			Products:      stubProductService{},
			Stations:      stubStationService{},
			Users:         stubUserService{},
			Inventory:     stubInventoryService{},
			Sales:         stubSalesService{},
		},
	)
	return router, tokens
}

func buildToken(t *testing.T, tokens *authsvc.TokenManager, role enums.UserRole) string {
	t.Helper()

	token, _, err := tokens.Issue(&models.User{
		ID:             uuid.New(),
		OrganizationID: 1,
		Email:          "staff@bar.test",
		Role:           role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateRoutesRejectMissingToken(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateRoutesAcceptBartender(t *testing.T) {
	router, tokens := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, tokens, enums.UserRoleBartender))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for bartender inventory got %d", resp.Code)
	}
}

func TestUserAdminRoutesRequireAdminRole(t *testing.T) {
	router, tokens := newTestRouter(t, testConfig())

	manager := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, tokens, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, tokens, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCatalogMutationRejectsBartender(t *testing.T) {
	router, tokens := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, tokens, enums.UserRoleBartender))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for bartender product create got %d", resp.Code)
	}
}

func TestOrganizationUpdateRequiresAdmin(t *testing.T) {
	router, tokens := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/organization", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, tokens, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager org update got %d", resp.Code)
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}
