package contracts

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; the typed errors below match them
var (
	ErrNoData       = errors.New("no index data")
	ErrZeroBase     = errors.New("zero base index value")
	ErrInvalidInput = errors.New("invalid input")
)

// NoDataError: the requested period has no canonical index value.
// Callers must skip/flag the contract, never substitute a neighbouring month.
type NoDataError struct {
	Series SeriesType
	Period Period
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("cannot compute: missing %s index data for period %s", e.Series, e.Period)
}

// Is matches ErrNoData
func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

// ZeroBaseError: the normalised base value is zero (unseeded/degenerate data).
// Must reach an operator; never masked as "unchanged rent".
type ZeroBaseError struct {
	Series SeriesType
	Period Period
}

func (e *ZeroBaseError) Error() string {
	return fmt.Sprintf("cannot compute: %s base index value for period %s is zero", e.Series, e.Period)
}

// Is matches ErrZeroBase
func (e *ZeroBaseError) Is(target error) bool { return target == ErrZeroBase }

// InvalidInputError rejects bad arguments before any computation
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid is shorthand for &InvalidInputError{...}
func Invalid(field, format string, args ...interface{}) error {
	return &InvalidInputError{Field: field, Message: fmt.Sprintf(format, args...)}
}
