package trading

import "errors"

// Sentinel errors for the order path. Wrap with %w so callers can match
// through errors.Is.
var (
	ErrValidation          = errors.New("order validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOrderRejected       = errors.New("order rejected")
)
