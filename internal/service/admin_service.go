package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/metrics"
	"energytracker/internal/model"
	"energytracker/internal/repository"
)

// Audit log paging bounds.
const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 200
)

// UpdateUserInput carries an admin change; nil fields are kept.
type UpdateUserInput struct {
	Role      *string
	IsBlocked *bool
}

// AuditPage is one page of the audit trail.
type AuditPage struct {
	Entries []model.AuditLog
	Total   int64
	Limit   int
	Offset  int
}

// AdminService handles user management for administrators.
type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, adminID, userID uint, in UpdateUserInput) (*model.User, error)
	Stats(ctx context.Context) (*repository.SystemStats, error)
	ListAuditLogs(ctx context.Context, limit, offset int) (*AuditPage, error)
}

type adminService struct {
	store  repository.Store
	users  UserService
	logger *zap.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store repository.Store, users UserService, logger *zap.Logger) AdminService {
	return &adminService{store: store, users: users, logger: logger}
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

type userState struct {
	Role      model.Role `json:"role"`
	IsBlocked bool       `json:"is_blocked"`
}

// UpdateUser changes role and/or blocked flag. The active admin rows are
// locked first (in id order) so concurrent demotions cannot both pass the
// last-admin check; the audit record is written in the same transaction.
func (s *adminService) UpdateUser(ctx context.Context, adminID, userID uint, in UpdateUserInput) (*model.User, error) {
	var role *model.Role
	if in.Role != nil {
		r := model.Role(*in.Role)
		if r != model.RoleUser && r != model.RoleAdmin {
			return nil, apperrors.InvalidField("role", "must be one of user, admin")
		}
		role = &r
	}

	var (
		result  *model.User
		changed bool
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		admins, err := tx.Users().LockActiveAdmins(ctx)
		if err != nil {
			return fmt.Errorf("lock admins: %w", err)
		}
		user, err := tx.Users().LockByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}

		before := userState{Role: user.Role, IsBlocked: user.IsBlocked}
		after := before
		if role != nil {
			after.Role = *role
		}
		if in.IsBlocked != nil {
			after.IsBlocked = *in.IsBlocked
		}
		result = user
		if after == before {
			return nil
		}

		if userID == adminID {
			if before.Role == model.RoleAdmin && after.Role != model.RoleAdmin {
				return apperrors.ErrCannotDemoteSelf.WithDetail("user_id", userID)
			}
			if after.IsBlocked && !before.IsBlocked {
				return apperrors.ErrCannotBlockSelf.WithDetail("user_id", userID)
			}
		}

		losesAdmin := user.IsActiveAdmin() && (after.Role != model.RoleAdmin || after.IsBlocked)
		if losesAdmin && len(admins) <= 1 {
			metrics.ObserveConflict(apperrors.ErrLastAdmin.Code)
			return apperrors.ErrLastAdmin.WithDetail("user_id", user.ID)
		}

		user.Role = after.Role
		user.IsBlocked = after.IsBlocked
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		details, err := json.Marshal(map[string]userState{"before": before, "after": after})
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		target := user.ID
		entry := &model.AuditLog{
			AdminID:      adminID,
			Action:       model.AuditActionUserUpdated,
			TargetUserID: &target,
			Details:      datatypes.JSON(details),
		}
		if err := tx.AuditLogs().Create(ctx, entry); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.users.Invalidate(ctx, userID)
		s.logger.Info("user updated by admin",
			zap.Uint("admin_id", adminID),
			zap.Uint("user_id", userID),
			zap.String("role", string(result.Role)),
			zap.Bool("is_blocked", result.IsBlocked),
		)
	}
	return result, nil
}

func (s *adminService) Stats(ctx context.Context) (*repository.SystemStats, error) {
	stats, err := s.store.Reports().SystemStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	return stats, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context, limit, offset int) (*AuditPage, error) {
	if limit <= 0 {
		limit = DefaultAuditPageSize
	}
	if limit > MaxAuditPageSize {
		limit = MaxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.store.AuditLogs().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return &AuditPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}
