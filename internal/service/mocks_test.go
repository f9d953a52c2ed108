package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
)

// mockStore hands out the mocked repositories and runs transactions inline.
type mockStore struct {
	users       *MockUserRepository
	appliances  *MockApplianceRepository
	tariffs     *MockTariffRepository
	consumption *MockConsumptionRepository
	limits      *MockLimitRepository
	auditLogs   *MockAuditLogRepository
	reports     *MockReportRepository
	txCount     int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       new(MockUserRepository),
		appliances:  new(MockApplianceRepository),
		tariffs:     new(MockTariffRepository),
		consumption: new(MockConsumptionRepository),
		limits:      new(MockLimitRepository),
		auditLogs:   new(MockAuditLogRepository),
		reports:     new(MockReportRepository),
	}
}

func (s *mockStore) Users() repository.UserRepository              { return s.users }
func (s *mockStore) Appliances() repository.ApplianceRepository    { return s.appliances }
func (s *mockStore) Tariffs() repository.TariffRepository          { return s.tariffs }
func (s *mockStore) Consumption() repository.ConsumptionRepository { return s.consumption }
func (s *mockStore) Limits() repository.LimitRepository            { return s.limits }
func (s *mockStore) AuditLogs() repository.AuditLogRepository      { return s.auditLogs }
func (s *mockStore) Reports() repository.ReportRepository          { return s.reports }

func (s *mockStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.txCount++
	return fn(ctx, s)
}

func (s *mockStore) assertExpectations(t mock.TestingT) {
	s.users.AssertExpectations(t)
	s.appliances.AssertExpectations(t)
	s.tariffs.AssertExpectations(t)
	s.consumption.AssertExpectations(t)
	s.limits.AssertExpectations(t)
	s.auditLogs.AssertExpectations(t)
	s.reports.AssertExpectations(t)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) LockByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) LockActiveAdmins(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockApplianceRepository is a mock implementation of ApplianceRepository.
type MockApplianceRepository struct {
	mock.Mock
}

func (m *MockApplianceRepository) Create(ctx context.Context, appliance *model.Appliance) error {
	args := m.Called(ctx, appliance)
	return args.Error(0)
}

func (m *MockApplianceRepository) Update(ctx context.Context, appliance *model.Appliance) error {
	args := m.Called(ctx, appliance)
	return args.Error(0)
}

func (m *MockApplianceRepository) FindByID(ctx context.Context, userID, id uint) (*model.Appliance, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appliance), args.Error(1)
}

func (m *MockApplianceRepository) ListByUser(ctx context.Context, userID uint) ([]model.Appliance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appliance), args.Error(1)
}

func (m *MockApplianceRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockTariffRepository is a mock implementation of TariffRepository.
type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) Create(ctx context.Context, tariff *model.Tariff) error {
	args := m.Called(ctx, tariff)
	return args.Error(0)
}

func (m *MockTariffRepository) Update(ctx context.Context, tariff *model.Tariff) error {
	args := m.Called(ctx, tariff)
	return args.Error(0)
}

func (m *MockTariffRepository) FindByID(ctx context.Context, userID, id uint) (*model.Tariff, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tariff), args.Error(1)
}

func (m *MockTariffRepository) ListByUser(ctx context.Context, userID uint) ([]model.Tariff, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tariff), args.Error(1)
}

func (m *MockTariffRepository) ListActive(ctx context.Context, userID uint) ([]model.Tariff, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tariff), args.Error(1)
}

func (m *MockTariffRepository) DeactivateOthers(ctx context.Context, userID, keepID uint) (int64, error) {
	args := m.Called(ctx, userID, keepID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTariffRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockConsumptionRepository is a mock implementation of ConsumptionRepository.
type MockConsumptionRepository struct {
	mock.Mock
}

func (m *MockConsumptionRepository) Create(ctx context.Context, record *model.ConsumptionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockConsumptionRepository) Update(ctx context.Context, record *model.ConsumptionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockConsumptionRepository) FindByID(ctx context.Context, userID, id uint) (*model.ConsumptionRecord, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConsumptionRecord), args.Error(1)
}

func (m *MockConsumptionRepository) List(ctx context.Context, filter repository.ConsumptionFilter) ([]model.ConsumptionRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ConsumptionRecord), args.Error(1)
}

func (m *MockConsumptionRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockConsumptionRepository) DetachAppliance(ctx context.Context, userID, applianceID uint) error {
	args := m.Called(ctx, userID, applianceID)
	return args.Error(0)
}

func (m *MockConsumptionRepository) SumKWh(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLimitRepository is a mock implementation of LimitRepository.
type MockLimitRepository struct {
	mock.Mock
}

func (m *MockLimitRepository) Create(ctx context.Context, limit *model.Limit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

func (m *MockLimitRepository) Update(ctx context.Context, limit *model.Limit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

func (m *MockLimitRepository) FindByID(ctx context.Context, userID, id uint) (*model.Limit, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Limit), args.Error(1)
}

func (m *MockLimitRepository) ListByUser(ctx context.Context, userID uint, periodType *period.Type) ([]model.Limit, error) {
	args := m.Called(ctx, userID, periodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Limit), args.Error(1)
}

func (m *MockLimitRepository) FindOverlapping(ctx context.Context, userID uint, periodType period.Type, start, end time.Time, excludeID uint) ([]model.Limit, error) {
	args := m.Called(ctx, userID, periodType, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Limit), args.Error(1)
}

func (m *MockLimitRepository) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository.
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, limit, offset int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

// MockReportRepository is a mock implementation of ReportRepository.
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Totals(ctx context.Context, userID uint, from, to time.Time) (*repository.Totals, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Totals), args.Error(1)
}

func (m *MockReportRepository) Daily(ctx context.Context, userID uint, from, to time.Time) ([]repository.DailyTotal, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyTotal), args.Error(1)
}

func (m *MockReportRepository) ByAppliance(ctx context.Context, userID uint, from, to time.Time) ([]repository.ApplianceTotal, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ApplianceTotal), args.Error(1)
}

func (m *MockReportRepository) SystemStats(ctx context.Context) (*repository.SystemStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SystemStats), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Invalidate(ctx context.Context, id uint) {
	m.Called(ctx, id)
}

func fixedClock(day string) Clock {
	t, err := period.ParseDate("day", day)
	if err != nil {
		panic(err)
	}
	noon := t.Add(12 * time.Hour)
	return func() time.Time { return noon }
}

func date(s string) time.Time {
	t, err := period.ParseDate("date", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }
func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }
