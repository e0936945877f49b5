package dto

import "net/http"

// Error codes surfaced by the API. They mirror the domain error codes so a
// client can branch on them without parsing messages.
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodePartnerNotFound     = "PARTNER_NOT_FOUND"
	ErrCodeWarehouseNotFound   = "WAREHOUSE_NOT_FOUND"
	ErrCodeLocationNotFound    = "LOCATION_NOT_FOUND"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeAlreadyCancelled    = "ALREADY_CANCELLED"
	ErrCodeTaskAlreadyResolved = "TASK_ALREADY_RESOLVED"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInternal            = "INTERNAL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeProductNotFound:   http.StatusNotFound,
	ErrCodePartnerNotFound:   http.StatusNotFound,
	ErrCodeWarehouseNotFound: http.StatusNotFound,
	ErrCodeLocationNotFound:  http.StatusNotFound,
	ErrCodeTaskNotFound:      http.StatusNotFound,

	ErrCodeInvalidRequest: http.StatusBadRequest,
	ErrCodeValidation:     http.StatusBadRequest,

	ErrCodeInsufficientStock:   http.StatusConflict,
	ErrCodeAlreadyCancelled:    http.StatusConflict,
	ErrCodeTaskAlreadyResolved: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
