package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrProductNotFound     = NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrPartnerNotFound     = NewDomainError("PARTNER_NOT_FOUND", "Partner not found")
	ErrLocationNotFound    = NewDomainError("LOCATION_NOT_FOUND", "Location not found")
	ErrTaskNotFound        = NewDomainError("TASK_NOT_FOUND", "Warehouse task not found")
	ErrInvalidRequest      = NewDomainError("INVALID_REQUEST", "Invalid request")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrTaskAlreadyResolved = NewDomainError("TASK_ALREADY_RESOLVED", "Warehouse task is already resolved")
	ErrAlreadyCancelled    = NewDomainError("ALREADY_CANCELLED", "Transaction is already cancelled")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInternal            = NewDomainError("INTERNAL", "Internal error")
)

// IsDomainError reports whether err is a DomainError with the given code.
func IsDomainError(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
