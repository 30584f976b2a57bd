package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// InsufficientFundsError is raised at confirmation time when an outbound
// bank/cash payment exceeds the journal's available balance. It is always
// surfaced to the caller, never silently clamped.
type InsufficientFundsError struct {
	AttemptedAmount  decimal.Decimal
	AvailableBalance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("payment amount (%s) exceeds the available journal balance (%s)",
		e.AttemptedAmount.StringFixed(2), e.AvailableBalance.StringFixed(2))
}

// MissingConfigurationError indicates a required piece of accounting
// configuration (e.g. the outstanding payments account) is absent.
// Leg construction must abort before any persistence call.
type MissingConfigurationError struct {
	What string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.What)
}

// AppError wraps a lower-level error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
