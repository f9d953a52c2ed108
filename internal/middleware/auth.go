package middleware

import (
	"errors"
	"fmt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"energytracker/internal/auth"
	apperrors "energytracker/internal/errors"
	"energytracker/internal/model"
	"energytracker/internal/service"
)

const (
	claimsKey = "auth_claims"
	userKey   = "auth_user"
)

// JWT verifies the bearer access token and stores its claims on the context.
func JWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrUnauthorized
		},
	})
}

// CurrentUser reloads the token's user on every request so that role
// changes and blocks take effect before the token expires. Revoked tokens,
// deleted users and blocked users get 401.
func CurrentUser(users service.UserService, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil {
				return apperrors.ErrUnauthorized
			}
			ctx := c.Request().Context()

			revoked, err := tokens.IsAccessTokenBlacklisted(ctx, claims.ID)
			if err != nil {
				return fmt.Errorf("check token revocation: %w", err)
			}
			if revoked {
				return apperrors.ErrUnauthorized
			}

			user, err := users.GetUser(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					return apperrors.ErrUnauthorized
				}
				return err
			}
			if user.IsBlocked {
				return apperrors.ErrUserBlocked
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose current role is not admin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil {
			return apperrors.ErrUnauthorized
		}
		if !user.IsAdmin() {
			return apperrors.ErrForbidden
		}
		return next(c)
	}
}

// ClaimsFromContext returns the verified access token claims, if any.
func ClaimsFromContext(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

// UserFromContext returns the user loaded by CurrentUser, if any.
func UserFromContext(c echo.Context) *model.User {
	user, _ := c.Get(userKey).(*model.User)
	return user
}

// SetUser stores user on the context the way CurrentUser does.
func SetUser(c echo.Context, user *model.User) {
	c.Set(userKey, user)
}
