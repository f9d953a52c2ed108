package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	AccessTokenExpiry  = 15 * time.Minute
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Values of the "typ" claim. Each validator accepts exactly one of them.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	errWrongTokenType = errors.New("wrong token type")
	errMissingTokenID = errors.New("token has no jti")
)

// Claims identify the user a token was issued to. Role is a snapshot taken
// at issue time; request authorization re-reads the user row.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 tokens. Every token carries a jti so
// access tokens can be blacklisted and refresh tokens looked up in redis.
type JWTService struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// GenerateAccessToken issues a bearer token valid for AccessTokenExpiry.
func (s *JWTService) GenerateAccessToken(userID uint, email, role string) (string, error) {
	return s.issue(Claims{UserID: userID, Email: email, Role: role, TokenType: TokenTypeAccess}, uuid.NewString(), AccessTokenExpiry)
}

// GenerateRefreshToken issues a refresh token and returns its jti, which the
// caller records in the token store.
func (s *JWTService) GenerateRefreshToken(userID uint, email, role string) (tokenID, token string, err error) {
	tokenID = uuid.NewString()
	token, err = s.issue(Claims{UserID: userID, Email: email, Role: role, TokenType: TokenTypeRefresh}, tokenID, RefreshTokenExpiry)
	return tokenID, token, err
}

func (s *JWTService) issue(claims Claims, jti string, ttl time.Duration) (string, error) {
	issuedAt := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.TokenType, err)
	}
	return signed, nil
}

// ValidateAccessToken verifies a bearer token.
func (s *JWTService) ValidateAccessToken(raw string) (*Claims, error) {
	return s.verify(raw, TokenTypeAccess)
}

// ValidateRefreshToken verifies a refresh token.
func (s *JWTService) ValidateRefreshToken(raw string) (*Claims, error) {
	return s.verify(raw, TokenTypeRefresh)
}

func (s *JWTService) verify(raw, want string) (*Claims, error) {
	var claims Claims
	if _, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return nil, err
	}
	switch {
	case claims.TokenType != want:
		return nil, errWrongTokenType
	case claims.ID == "":
		return nil, errMissingTokenID
	}
	return &claims, nil
}
