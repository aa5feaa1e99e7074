package dto

import "net/http"

// Error codes surfaced by the API. Domain errors carry these codes to the
// boundary unchanged.
const (
	ErrCodeValidation         = "VALIDATION"
	ErrCodeMissingColumns     = "MISSING_COLUMNS"
	ErrCodeInvalidRows        = "INVALID_ROWS"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeIdentifierConflict = "IDENTIFIER_CONFLICT"
	ErrCodeAlreadySent        = "ALREADY_SENT"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps API error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeMissingColumns: http.StatusBadRequest,
	ErrCodeInvalidRows:    http.StatusBadRequest,
	ErrCodeInvalidInput:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,

	ErrCodeAlreadyExists:      http.StatusConflict,
	ErrCodeIdentifierConflict: http.StatusConflict,
	ErrCodeAlreadySent:        http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	ErrCodeUpstream: http.StatusBadGateway,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
