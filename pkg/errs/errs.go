// Package errs defines the failure taxonomy shared by the signal engine and
// the backtest simulator. Callers discriminate with errors.As and errors.Is.
package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientData means the series is shorter than the warm-up window.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnordered means timestamps are not strictly increasing.
	ErrUnordered = errors.New("series not in ascending time order")

	// ErrDuplicateTime means two bars share a timestamp.
	ErrDuplicateTime = errors.New("duplicate timestamp")

	// ErrBadPrice means a bar carries a NaN or infinite value.
	ErrBadPrice = errors.New("non-finite price")
)

// ConfigError reports an invalid parameter. It is returned before any
// computation starts; values are never clamped.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// Configf builds a ConfigError with a formatted reason.
func Configf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataError reports input that violates the Series invariants.
type DataError struct {
	Index  int // -1 when the error is not tied to a single bar
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("data: bar %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("data: %s", e.Reason)
}

func (e *DataError) Unwrap() error { return e.Err }

// DomainError reports degenerate arithmetic during a backtest, such as a
// non-positive close where a price ratio is required.
type DomainError struct {
	Index  int
	Time   time.Time
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain: bar %d (%s): %s", e.Index, e.Time.UTC().Format(time.RFC3339), e.Reason)
}

// IsConfig reports whether err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsData reports whether err is or wraps a DataError.
func IsData(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// IsDomain reports whether err is or wraps a DomainError.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
