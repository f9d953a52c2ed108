package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"energytracker/internal/auth"
	"energytracker/internal/cache"
	"energytracker/internal/config"
	"energytracker/internal/db"
	"energytracker/internal/handler"
	"energytracker/internal/logging"
	"energytracker/internal/repository"
	"energytracker/internal/router"
	"energytracker/internal/service"
)

// @title Energy Tracker API
// @version 1.0
// @description Household energy tracking: appliances, tariffs, consumption records, limits and reports.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	if cfg.ResetDB {
		logger.Warn("reset_db set, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(store, cacheClient)
	authService := service.NewAuthService(store, jwtService, tokenStore, userService)
	applianceService := service.NewApplianceService(store)
	tariffService := service.NewTariffService(store, time.Now, logger)
	limitService := service.NewLimitService(store)
	consumptionService := service.NewConsumptionService(store, time.Now)
	reportService := service.NewReportService(store, time.Now)
	adminService := service.NewAdminService(store, userService, logger)

	e := echo.New()
	router.Register(e, cfg, logger,
		router.Auth{JWT: jwtService, Tokens: tokenStore, Users: userService},
		router.Handlers{
			Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
				"mysql": handler.DBCheck(gormDB),
				"redis": cacheClient.Ping,
			}),
			Auth:        handler.NewAuthHandler(authService),
			Appliance:   handler.NewApplianceHandler(applianceService),
			Tariff:      handler.NewTariffHandler(tariffService),
			Limit:       handler.NewLimitHandler(limitService, reportService),
			Consumption: handler.NewConsumptionHandler(consumptionService),
			Report:      handler.NewReportHandler(reportService),
			Admin:       handler.NewAdminHandler(adminService),
		},
	)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
