package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energytracker/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uint, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore handles storage and retrieval of tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

var errRefreshTokenUnknown = errors.New("refresh token not found")

type refreshTokenRecord struct {
	UserID uint `json:"user_id"`
}

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken records which user a refresh token belongs to until ttl.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	if err := s.cache.SaveStrict(ctx, refreshTokenKeyPrefix+tokenID, refreshTokenRecord{UserID: userID}, ttl); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken returns the user a stored refresh token belongs to.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	var record refreshTokenRecord
	if !s.cache.Load(ctx, refreshTokenKeyPrefix+tokenID, &record) {
		return 0, errRefreshTokenUnknown
	}
	if record.UserID == 0 {
		return 0, fmt.Errorf("refresh token %s has no user", tokenID)
	}
	return record.UserID, nil
}

// DeleteRefreshToken revokes a refresh token.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	s.cache.Forget(ctx, refreshTokenKeyPrefix+tokenID)
	return nil
}

// BlacklistAccessToken rejects an access token for the rest of its lifetime.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.cache.Save(ctx, accessTokenKeyPrefix+tokenID, true, ttl)
	return nil
}

// IsAccessTokenBlacklisted checks the blacklist. An unreachable redis reads
// as not blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Has(ctx, accessTokenKeyPrefix+tokenID), nil
}
