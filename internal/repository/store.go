package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the repositories bound to one database handle, either the
// pool or an open transaction.
type Store interface {
	Users() UserRepository
	Appliances() ApplianceRepository
	Tariffs() TariffRepository
	Consumption() ConsumptionRepository
	Limits() LimitRepository
	AuditLogs() AuditLogRepository
	Reports() ReportRepository
	// WithTransaction executes fn within a database transaction. The Store
	// passed to fn is bound to that transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository              { return NewUserRepository(s.db) }
func (s *store) Appliances() ApplianceRepository    { return NewApplianceRepository(s.db) }
func (s *store) Tariffs() TariffRepository          { return NewTariffRepository(s.db) }
func (s *store) Consumption() ConsumptionRepository { return NewConsumptionRepository(s.db) }
func (s *store) Limits() LimitRepository            { return NewLimitRepository(s.db) }
func (s *store) AuditLogs() AuditLogRepository      { return NewAuditLogRepository(s.db) }
func (s *store) Reports() ReportRepository          { return NewReportRepository(s.db) }

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}

// forUpdate adds a row-level write lock to the query.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
