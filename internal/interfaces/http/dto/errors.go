package dto

import (
	"errors"
	"net/http"

	"github.com/tehraja/backend/internal/domain/shared"
)

// Domain error codes, sent to clients unchanged
const (
	ErrCodeValidation           = shared.CodeValidation
	ErrCodeStockConflict        = shared.CodeStockConflict
	ErrCodePersistence          = shared.CodePersistence
	ErrCodeSync                 = shared.CodeSync
	ErrCodeNotFound             = shared.CodeNotFound
	ErrCodeAlreadyExists        = shared.CodeAlreadyExists
	ErrCodeInvalidTransition    = shared.CodeInvalidTransition
	ErrCodeConfirmationRequired = shared.CodeConfirmationRequired
	ErrCodeUnauthorized         = shared.CodeUnauthorized
	ErrCodeForbidden            = shared.CodeForbidden
	ErrCodeConflict             = shared.CodeConflict
)

// Authentication error codes
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountLocked      = "ACCOUNT_LOCKED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
)

// Transport error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeStockConflict:        http.StatusConflict,
	ErrCodePersistence:          http.StatusServiceUnavailable,
	ErrCodeSync:                 http.StatusServiceUnavailable,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeInvalidTransition:    http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusPreconditionRequired,
	ErrCodeUnauthorized:         http.StatusUnauthorized,
	ErrCodeForbidden:            http.StatusForbidden,
	ErrCodeConflict:             http.StatusConflict,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,

	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError builds the error envelope for err. Domain errors keep their code
// and message; anything else becomes an opaque INTERNAL_ERROR.
func FromError(err error, requestID string) (int, Response) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError,
			NewErrorResponseWithRequestID(ErrCodeInternal, "An unexpected error occurred", requestID)
	}
	resp := NewErrorResponseWithRequestID(de.Code, de.Message, requestID)
	resp.Error.Products = shared.StockConflictProducts(de)
	if retry, ok := de.Details["retryable"].(bool); ok {
		resp.Error.Retryable = retry
	}
	if field, ok := de.Details["field"].(string); ok {
		resp.Error.Details = []ValidationDetail{{Field: field, Message: de.Message}}
	}
	return GetHTTPStatus(de.Code), resp
}
