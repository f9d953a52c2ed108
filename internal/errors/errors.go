package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies an application error and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

var (
	// ErrUnauthorized is returned when the bearer token is missing, invalid or revoked.
	ErrUnauthorized = Unauthorized("UNAUTHORIZED", "missing, invalid or expired token")
	// ErrUserBlocked is returned when a blocked account tries to use the API.
	ErrUserBlocked = Unauthorized("USER_BLOCKED", "user is blocked")
	// ErrForbidden is returned when the caller's role is insufficient.
	ErrForbidden = Forbidden("FORBIDDEN", "insufficient role")

	ErrUserNotFound      = NotFound("USER_NOT_FOUND", "user not found")
	ErrApplianceNotFound = NotFound("APPLIANCE_NOT_FOUND", "appliance not found")
	ErrTariffNotFound    = NotFound("TARIFF_NOT_FOUND", "tariff not found")
	ErrLimitNotFound     = NotFound("LIMIT_NOT_FOUND", "limit not found")
	ErrRecordNotFound    = NotFound("CONSUMPTION_NOT_FOUND", "consumption record not found")

	// ErrTariffNotActiveNow is returned when today's date is outside the tariff validity range.
	ErrTariffNotActiveNow = Validation("TARIFF_NOT_ACTIVE_NOW", "tariff cannot be active now: today is outside its validity range")
	// ErrTariffRange is returned when valid_from is after valid_to.
	ErrTariffRange = Validation("INVALID_TARIFF_RANGE", "valid_from must not be after valid_to")
	// ErrNoActiveTariff is returned when consumption is recorded without an active tariff.
	ErrNoActiveTariff = Validation("NO_ACTIVE_TARIFF", "no active tariff")
	// ErrMultipleActiveTariffs signals a broken single-active-tariff invariant.
	ErrMultipleActiveTariffs = Conflict("MULTIPLE_ACTIVE_TARIFFS", "more than one active tariff")

	ErrEitherKWhOrHours   = Validation("AMBIGUOUS_CONSUMPTION", "provide either consumption_kwh or usage_hours, not both")
	ErrKWhOrHoursRequired = Validation("MISSING_CONSUMPTION", "consumption_kwh or usage_hours is required")
	ErrApplianceRequired  = Validation("APPLIANCE_REQUIRED", "usage_hours requires an appliance")
	ErrAppliancePower     = Validation("INVALID_APPLIANCE_POWER", "appliance has no positive estimated_power_kw")

	// ErrLimitOverlap is returned when a limit would overlap another of the same period type.
	ErrLimitOverlap = Conflict("LIMIT_OVERLAP", "limit overlaps an existing limit of the same period type")
	// ErrPeriodEndMismatch is returned when a supplied period_end differs from the computed one.
	ErrPeriodEndMismatch = Validation("PERIOD_END_MISMATCH", "period_end does not match the period type")

	ErrLastAdmin        = Conflict("LAST_ADMIN", "cannot demote or block the last active admin")
	ErrCannotDemoteSelf = Conflict("SELF_DEMOTION", "cannot change your own role")
	ErrCannotBlockSelf  = Conflict("SELF_BLOCK", "cannot block your own account")

	ErrEmailTaken         = Conflict("USER_ALREADY_EXISTS", "user already exists")
	ErrInvalidCredentials = Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidRefresh     = Unauthorized("INVALID_REFRESH_TOKEN", "invalid or expired refresh token")
)

// AppError is a classified error carrying a stable code and optional details
// that are rendered next to the message in the response body.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches errors by kind and code so that copies made by WithDetail
// still satisfy errors.Is against the package sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithDetail returns a copy of the error with key set in its details.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Details: details}
}

// StatusCode returns the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation builds a 400 error.
func Validation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

// Unauthorized builds a 401 error.
func Unauthorized(code, message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: code, Message: message}
}

// Forbidden builds a 403 error.
func Forbidden(code, message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

// NotFound builds a 404 error.
func NotFound(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

// Conflict builds a 409 error.
func Conflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// InvalidField builds a validation error naming the offending field.
func InvalidField(field, message string) *AppError {
	return Validation("VALIDATION_ERROR", field+": "+message).WithDetail("field", field)
}

// ErrorResponse represents a standardized error response.
// Details are flattened into the top-level JSON object.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"-"`
}

// MarshalJSON renders error, code and every detail key at the same level.
func (r ErrorResponse) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(r.Details)+2)
	for k, v := range r.Details {
		body[k] = v
	}
	body["error"] = r.Error
	body["code"] = r.Code
	return json.Marshal(body)
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not an
// AppError becomes a generic 500 without leaking the cause.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return &HTTPError{
			StatusCode: appErr.StatusCode(),
			Message:    appErr.Message,
			Code:       appErr.Code,
			Details:    appErr.Details,
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
