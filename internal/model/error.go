package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeCartEmpty            = "CART_EMPTY"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOutOfStock           = "OUT_OF_STOCK"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeReadOnlyField        = "READ_ONLY_FIELD"
	ErrCodeCheckoutInProgress   = "CHECKOUT_IN_PROGRESS"
	ErrCodePaymentUnavailable   = "PAYMENT_METHOD_UNAVAILABLE"
	ErrCodeUnsupportedPayment   = "UNSUPPORTED_PAYMENT_METHOD"
	ErrCodeMissingPaymentDetail = "MISSING_PAYMENT_DETAILS"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors carrying a formatted
// message still compare equal to the sentinel of the same kind.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
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
	ErrCartEmpty             = NewDomainError(ErrCodeCartEmpty, "Your cart is empty")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOutOfStock            = NewDomainError(ErrCodeOutOfStock, "Product is out of stock")
	ErrInsufficientStock     = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidQuantity       = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrValidationFailed      = NewDomainError(ErrCodeValidationFailed, "Please correct the highlighted fields")
	ErrReadOnlyField         = NewDomainError(ErrCodeReadOnlyField, "Name and email come from your account and cannot be changed here")
	ErrCheckoutInProgress    = NewDomainError(ErrCodeCheckoutInProgress, "A checkout is already in progress for this cart")
	ErrPaymentUnavailable    = NewDomainError(ErrCodePaymentUnavailable, "eSewa integration is coming soon")
	ErrUnsupportedPayment    = NewDomainError(ErrCodeUnsupportedPayment, "Unsupported payment method")
	ErrMissingPaymentDetails = NewDomainError(ErrCodeMissingPaymentDetail, "Missing payment details")
)
