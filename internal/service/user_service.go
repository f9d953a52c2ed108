package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"energytracker/internal/cache"
	apperrors "energytracker/internal/errors"
	"energytracker/internal/model"
	"energytracker/internal/repository"
)

const userCacheTTL = time.Minute

// UserService loads users for request authentication with a short-lived cache.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	Invalidate(ctx context.Context, id uint)
}

type userService struct {
	store repository.Store
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(store repository.Store, cache *cache.Client) UserService {
	return &userService{store: store, cache: cache}
}

func userCacheKey(id uint) string {
	return cache.Key("user", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.Load(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.Save(ctx, userCacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) Invalidate(ctx context.Context, id uint) {
	s.cache.Forget(ctx, userCacheKey(id))
}
