package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/middleware"
)

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidField(name, "must be a positive integer")
	}
	return uint(id), nil
}

// currentUserID returns the id of the user loaded by the auth middleware.
func currentUserID(c echo.Context) (uint, error) {
	user := middleware.UserFromContext(c)
	if user == nil {
		return 0, apperrors.ErrUnauthorized
	}
	return user.ID, nil
}

// queryString returns a query parameter, or nil when it is absent or empty.
func queryString(c echo.Context, name string) *string {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	return &v
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperrors.InvalidField(name, "must be a non-negative integer")
	}
	return n, nil
}

// queryID reads an optional positive id query parameter.
func queryID(c echo.Context, name string) (*uint, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return nil, apperrors.InvalidField(name, "must be a positive integer")
	}
	out := uint(id)
	return &out, nil
}
