package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"energytracker/internal/model"
)

// Totals aggregates a user's consumption over a date range.
type Totals struct {
	TotalKWh     decimal.Decimal `gorm:"column:total_kwh"`
	TotalCost    decimal.Decimal `gorm:"column:total_cost"`
	RecordCount  int64           `gorm:"column:record_count"`
	DaysWithData int64           `gorm:"column:days_with_data"`
}

// DailyTotal is one row of the per-day aggregation.
type DailyTotal struct {
	Day         time.Time       `gorm:"column:day"`
	TotalKWh    decimal.Decimal `gorm:"column:total_kwh"`
	TotalCost   decimal.Decimal `gorm:"column:total_cost"`
	RecordCount int64           `gorm:"column:record_count"`
}

// ApplianceTotal is one row of the per-appliance aggregation. ApplianceID is
// nil for records without an appliance.
type ApplianceTotal struct {
	ApplianceID   *uint           `gorm:"column:appliance_id"`
	ApplianceName *string         `gorm:"column:appliance_name"`
	TotalKWh      decimal.Decimal `gorm:"column:total_kwh"`
	TotalCost     decimal.Decimal `gorm:"column:total_cost"`
	RecordCount   int64           `gorm:"column:record_count"`
}

// SystemStats summarises the whole installation for administrators.
type SystemStats struct {
	Users              int64
	Admins             int64
	BlockedUsers       int64
	Appliances         int64
	Tariffs            int64
	ActiveTariffs      int64
	Limits             int64
	ConsumptionRecords int64
	TotalKWh           decimal.Decimal
	TotalCost          decimal.Decimal
}

// ReportRepository runs read-only aggregations over consumption data.
type ReportRepository interface {
	Totals(ctx context.Context, userID uint, from, to time.Time) (*Totals, error)
	Daily(ctx context.Context, userID uint, from, to time.Time) ([]DailyTotal, error)
	ByAppliance(ctx context.Context, userID uint, from, to time.Time) ([]ApplianceTotal, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) inRange(ctx context.Context, userID uint, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.ConsumptionRecord{}).
		Where("user_id = ? AND record_date >= ? AND record_date <= ?", userID, from, to)
}

func (r *reportRepository) Totals(ctx context.Context, userID uint, from, to time.Time) (*Totals, error) {
	var totals Totals
	err := r.inRange(ctx, userID, from, to).
		Select("COALESCE(SUM(consumption_kwh), 0) AS total_kwh, " +
			"COALESCE(SUM(cost), 0) AS total_cost, " +
			"COUNT(*) AS record_count, " +
			"COUNT(DISTINCT record_date) AS days_with_data").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *reportRepository) Daily(ctx context.Context, userID uint, from, to time.Time) ([]DailyTotal, error) {
	var rows []DailyTotal
	err := r.inRange(ctx, userID, from, to).
		Select("record_date AS day, SUM(consumption_kwh) AS total_kwh, SUM(cost) AS total_cost, COUNT(*) AS record_count").
		Group("record_date").
		Order("record_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) ByAppliance(ctx context.Context, userID uint, from, to time.Time) ([]ApplianceTotal, error) {
	var rows []ApplianceTotal
	err := r.db.WithContext(ctx).
		Table("consumption_records AS c").
		Select("c.appliance_id AS appliance_id, a.name AS appliance_name, " +
			"SUM(c.consumption_kwh) AS total_kwh, SUM(c.cost) AS total_cost, COUNT(*) AS record_count").
		Joins("LEFT JOIN appliances AS a ON a.id = c.appliance_id").
		Where("c.user_id = ? AND c.record_date >= ? AND c.record_date <= ?", userID, from, to).
		Group("c.appliance_id, a.name").
		Order("total_kwh DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) SystemStats(ctx context.Context) (*SystemStats, error) {
	var stats SystemStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Users, db.Model(&model.User{})},
		{&stats.Admins, db.Model(&model.User{}).Where("role = ?", model.RoleAdmin)},
		{&stats.BlockedUsers, db.Model(&model.User{}).Where("is_blocked = ?", true)},
		{&stats.Appliances, db.Model(&model.Appliance{})},
		{&stats.Tariffs, db.Model(&model.Tariff{})},
		{&stats.ActiveTariffs, db.Model(&model.Tariff{}).Where("is_active = ?", true)},
		{&stats.Limits, db.Model(&model.Limit{})},
		{&stats.ConsumptionRecords, db.Model(&model.ConsumptionRecord{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var sums struct {
		TotalKWh  decimal.Decimal `gorm:"column:total_kwh"`
		TotalCost decimal.Decimal `gorm:"column:total_cost"`
	}
	err := db.Model(&model.ConsumptionRecord{}).
		Select("COALESCE(SUM(consumption_kwh), 0) AS total_kwh, COALESCE(SUM(cost), 0) AS total_cost").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	stats.TotalKWh = sums.TotalKWh
	stats.TotalCost = sums.TotalCost
	return &stats, nil
}
