package dto

import (
	"errors"
	"net/http"

	"github.com/erp/warehouse/internal/domain/shared"
)

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeInternal is used for store failures and anything unclassified
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests rejected before reaching a service
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for input rejected by a service
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeNotFound is used when an entity or transaction does not exist or is hidden
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeInvalidState is used for illegal lifecycle transitions and irreversible undos
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientStock is used when a movement would drive stock below zero
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeInvalidState:      http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps shared.DomainError codes to API codes
var domainCodes = map[string]string{
	shared.ErrInvalidInput.Code:      ErrCodeInvalidInput,
	shared.ErrNotFound.Code:          ErrCodeNotFound,
	shared.ErrInvalidState.Code:      ErrCodeInvalidState,
	shared.ErrInsufficientStock.Code: ErrCodeInsufficientStock,
	shared.ErrPersistence.Code:       ErrCodeInternal,
}

// kindCodes is the fallback when a domain error carries a code the API does not know
var kindCodes = map[shared.ErrorKind]string{
	shared.KindValidation:    ErrCodeInvalidInput,
	shared.KindNotFound:      ErrCodeNotFound,
	shared.KindStateConflict: ErrCodeInvalidState,
	shared.KindPersistence:   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	return code
}

// FromError builds the HTTP status and error body for err. Store failures never leak their
// cause or context to the client.
func FromError(err error) (int, *ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, &ErrorInfo{
			Code:    ErrCodeInternal,
			Message: "An internal error occurred",
		}
	}

	code, ok := domainCodes[de.Code]
	if !ok {
		code, ok = kindCodes[de.Kind]
		if !ok {
			code = ErrCodeInternal
		}
	}
	if code == ErrCodeInternal {
		return http.StatusInternalServerError, &ErrorInfo{
			Code:    ErrCodeInternal,
			Message: "An internal error occurred",
		}
	}
	return GetHTTPStatus(code), &ErrorInfo{
		Code:    code,
		Message: de.Message,
		Details: de.Context,
	}
}
