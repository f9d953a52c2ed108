package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"energytracker/internal/auth"
	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
	"energytracker/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*service.TokenPair), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	args := m.Called(ctx, refreshToken, access)
	return args.Error(0)
}

// MockApplianceService is a mock implementation of service.ApplianceService.
type MockApplianceService struct {
	mock.Mock
}

func (m *MockApplianceService) List(ctx context.Context, userID uint) ([]model.Appliance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Appliance), args.Error(1)
}

func (m *MockApplianceService) Get(ctx context.Context, userID, id uint) (*model.Appliance, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appliance), args.Error(1)
}

func (m *MockApplianceService) Create(ctx context.Context, userID uint, in service.ApplianceInput) (*model.Appliance, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appliance), args.Error(1)
}

func (m *MockApplianceService) Update(ctx context.Context, userID, id uint, in service.ApplianceInput) (*model.Appliance, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appliance), args.Error(1)
}

func (m *MockApplianceService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockTariffService is a mock implementation of service.TariffService.
type MockTariffService struct {
	mock.Mock
}

func (m *MockTariffService) List(ctx context.Context, userID uint) ([]model.Tariff, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Tariff), args.Error(1)
}

func (m *MockTariffService) Get(ctx context.Context, userID, id uint) (*model.Tariff, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tariff), args.Error(1)
}

func (m *MockTariffService) Create(ctx context.Context, userID uint, in service.CreateTariffInput) (*model.Tariff, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tariff), args.Error(1)
}

func (m *MockTariffService) Update(ctx context.Context, userID, id uint, in service.UpdateTariffInput) (*model.Tariff, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tariff), args.Error(1)
}

func (m *MockTariffService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTariffService) Activate(ctx context.Context, userID, id uint) (*model.Tariff, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tariff), args.Error(1)
}

// MockLimitService is a mock implementation of service.LimitService.
type MockLimitService struct {
	mock.Mock
}

func (m *MockLimitService) List(ctx context.Context, userID uint, periodType *string) ([]model.Limit, error) {
	args := m.Called(ctx, userID, periodType)
	return args.Get(0).([]model.Limit), args.Error(1)
}

func (m *MockLimitService) Get(ctx context.Context, userID, id uint) (*model.Limit, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Limit), args.Error(1)
}

func (m *MockLimitService) Create(ctx context.Context, userID uint, in service.CreateLimitInput) (*model.Limit, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Limit), args.Error(1)
}

func (m *MockLimitService) Update(ctx context.Context, userID, id uint, in service.UpdateLimitInput) (*model.Limit, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Limit), args.Error(1)
}

func (m *MockLimitService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockConsumptionService is a mock implementation of service.ConsumptionService.
type MockConsumptionService struct {
	mock.Mock
}

func (m *MockConsumptionService) List(ctx context.Context, userID uint, filter service.ConsumptionListFilter) ([]model.ConsumptionRecord, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]model.ConsumptionRecord), args.Error(1)
}

func (m *MockConsumptionService) Get(ctx context.Context, userID, id uint) (*model.ConsumptionRecord, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConsumptionRecord), args.Error(1)
}

func (m *MockConsumptionService) Create(ctx context.Context, userID uint, in service.CreateConsumptionInput) (*model.ConsumptionRecord, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConsumptionRecord), args.Error(1)
}

func (m *MockConsumptionService) Update(ctx context.Context, userID, id uint, in service.UpdateConsumptionInput) (*model.ConsumptionRecord, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConsumptionRecord), args.Error(1)
}

func (m *MockConsumptionService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ResolveRange(from, to *string) (period.Range, error) {
	args := m.Called(from, to)
	return args.Get(0).(period.Range), args.Error(1)
}

func (m *MockReportService) Progress(ctx context.Context, userID, limitID uint) (*service.LimitProgress, error) {
	args := m.Called(ctx, userID, limitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LimitProgress), args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context, userID uint, rng period.Range) (*service.Summary, error) {
	args := m.Called(ctx, userID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Summary), args.Error(1)
}

func (m *MockReportService) Daily(ctx context.Context, userID uint, rng period.Range) ([]repository.DailyTotal, error) {
	args := m.Called(ctx, userID, rng)
	return args.Get(0).([]repository.DailyTotal), args.Error(1)
}

func (m *MockReportService) ByAppliance(ctx context.Context, userID uint, rng period.Range) ([]service.ApplianceShare, error) {
	args := m.Called(ctx, userID, rng)
	return args.Get(0).([]service.ApplianceShare), args.Error(1)
}

func (m *MockReportService) Limits(ctx context.Context, userID uint) ([]service.LimitProgress, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.LimitProgress), args.Error(1)
}

// MockAdminService is a mock implementation of service.AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockAdminService) UpdateUser(ctx context.Context, adminID, userID uint, in service.UpdateUserInput) (*model.User, error) {
	args := m.Called(ctx, adminID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAdminService) Stats(ctx context.Context) (*repository.SystemStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SystemStats), args.Error(1)
}

func (m *MockAdminService) ListAuditLogs(ctx context.Context, limit, offset int) (*service.AuditPage, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuditPage), args.Error(1)
}
