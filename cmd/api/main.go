package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockbar/stockbar-backend/api/routes"
	"github.com/stockbar/stockbar-backend/internal/auth"
	"github.com/stockbar/stockbar-backend/internal/categories"
	"github.com/stockbar/stockbar-backend/internal/inventory"
	"github.com/stockbar/stockbar-backend/internal/organizations"
	"github.com/stockbar/stockbar-backend/internal/products"
	"github.com/stockbar/stockbar-backend/internal/sales"
	"github.com/stockbar/stockbar-backend/internal/stations"
	"github.com/stockbar/stockbar-backend/internal/users"
	"github.com/stockbar/stockbar-backend/pkg/config"
	"github.com/stockbar/stockbar-backend/pkg/db"
	"github.com/stockbar/stockbar-backend/pkg/logger"
	"github.com/stockbar/stockbar-backend/pkg/metrics"
	"github.com/stockbar/stockbar-backend/pkg/migrate"
	"github.com/stockbar/stockbar-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	inventoryMetrics := metrics.NewInventoryMetrics(registry)

	gdb := dbClient.DB()
	orgRepo := organizations.NewRepository(gdb)
	userRepo := users.NewRepository(gdb)
	categoryRepo := categories.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	stationRepo := stations.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create token manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Client:        dbClient,
		Organizations: orgRepo,
		Users:         userRepo,
		Tokens:        tokens,
	})
	requireService(logg, "auth", err)

	orgService, err := organizations.NewService(orgRepo)
	requireService(logg, "organizations", err)

	categoryService, err := categories.NewService(categoryRepo, productRepo)
	requireService(logg, "categories", err)

	productService, err := products.NewService(productRepo, categoryService)
	requireService(logg, "products", err)

	userService, err := users.NewService(userRepo)
	requireService(logg, "users", err)

	stationService, err := stations.NewService(stationRepo, userService)
	requireService(logg, "stations", err)

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Client:   dbClient,
		Repo:     inventoryRepo,
		Products: productService,
		Users:    userService,
		Stations: stationService,
		Metrics:  inventoryMetrics,
	})
	requireService(logg, "inventory", err)

	salesService, err := sales.NewService(sales.ServiceParams{
		Client:        dbClient,
		Inventory:     inventoryRepo,
		Products:      productService,
		Organizations: orgService,
		Categories:    categoryService,
		Metrics:       inventoryMetrics,
	})
	requireService(logg, "sales", err)

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		httpMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		routes.Services{
			Auth:          authService,
			Organizations: orgService,
			Categories:    categoryService,
			Products:      productService,
			Stations:      stationService,
			Users:         userService,
			Inventory:     inventoryService,
			Sales:         salesService,
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
