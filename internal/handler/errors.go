package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "energytracker/internal/errors"
)

// NewHTTPErrorHandler renders every error as an ErrorResponse. Application
// errors keep their status and details; anything unclassified becomes a
// 500 and is logged.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   apperrors.ErrorResponse
			he     *echo.HTTPError
		)
		if errors.As(err, &he) && !isAppError(err) {
			status = he.Code
			body = apperrors.ErrorResponse{
				Error: strings.ToLower(fmt.Sprint(he.Message)),
				Code:  strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")),
			}
		} else {
			httpErr := apperrors.MapErrorToHTTP(err)
			status = httpErr.StatusCode
			body = httpErr.ToErrorResponse()
			if status >= http.StatusInternalServerError {
				logger.Error("unhandled error",
					zap.Error(err),
					zap.String("method", c.Request().Method),
					zap.String("route", c.Path()),
				)
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func isAppError(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr)
}
