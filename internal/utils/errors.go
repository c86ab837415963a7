package utils

import "errors"

// Common application errors used across services. Handlers map them to
// HTTP status codes with errors.Is.
var (
	ErrValidation         = errors.New("INVALID_REQUEST")
	ErrForbidden          = errors.New("FORBIDDEN")
	ErrRuleNotFound       = errors.New("PRICING_RULE_NOT_FOUND")
	ErrSaleNotFound       = errors.New("SALE_NOT_FOUND")
	ErrBulkUpdateNotFound = errors.New("BULK_UPDATE_NOT_FOUND")
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrAlreadyReverted    = errors.New("ALREADY_REVERTED")
	ErrPriceConflict      = errors.New("PRICE_CONFLICT")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
)

// ValidationError carries the human readable reason of a rejected request
// while still matching ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
