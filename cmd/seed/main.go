package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"energytracker/internal/config"
	"energytracker/internal/db"
	"energytracker/internal/logging"
	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
	"energytracker/internal/service"
)

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

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || len(password) < 8 {
		logger.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD (8+ characters) are required")
	}
	demo, _ := strconv.ParseBool(os.Getenv("SEED_DEMO"))

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx := context.Background()
	store := repository.NewStore(gormDB)

	admin, created, err := seedAdmin(ctx, store, email, password)
	if err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	logger.Info("admin ready", zap.Uint("user_id", admin.ID), zap.String("email", admin.Email), zap.Bool("created", created))

	if demo {
		if err := seedDemo(ctx, store, admin.ID, logger); err != nil {
			logger.Fatal("seed demo data", zap.Error(err))
		}
	}
}

// seedAdmin creates the admin account or promotes, unblocks and resets the
// password of an existing one.
func seedAdmin(ctx context.Context, store repository.Store, email, password string) (*model.User, bool, error) {
	hash, err := service.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	email = service.NormalizeEmail(email)

	existing, err := store.Users().FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		existing.Role = model.RoleAdmin
		existing.IsBlocked = false
		existing.PasswordHash = hash
		if err := store.Users().Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update admin: %w", err)
		}
		return existing, false, nil
	}

	user := &model.User{Email: email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := store.Users().Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return user, true, nil
}

// seedDemo gives the user one appliance and an active tariff unless they
// already have tariffs.
func seedDemo(ctx context.Context, store repository.Store, userID uint, logger *zap.Logger) error {
	tariffs := service.NewTariffService(store, time.Now, logger)
	existing, err := tariffs.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("demo data already present", zap.Int("tariffs", len(existing)))
		return nil
	}

	name := "Refrigerator"
	power := decimal.RequireFromString("0.150")
	appliance, err := service.NewApplianceService(store).Create(ctx, userID, service.ApplianceInput{
		Name:             &name,
		EstimatedPowerKW: &power,
	})
	if err != nil {
		return err
	}

	today := period.Today(time.Now)
	tariff, err := tariffs.Create(ctx, userID, service.CreateTariffInput{
		Name:        "Standard",
		PricePerKWh: decimal.RequireFromString("0.3000"),
		ValidFrom:   period.FormatDate(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)),
		IsActive:    true,
	})
	if err != nil {
		return err
	}

	logger.Info("demo data created", zap.Uint("appliance_id", appliance.ID), zap.Uint("tariff_id", tariff.ID))
	return nil
}
