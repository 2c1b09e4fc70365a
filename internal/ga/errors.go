package ga

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every ConfigError
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPrecondition is wrapped by the panics raised on contract violations
	ErrPrecondition = errors.New("precondition violation")
)

// ConfigError reports an out-of-range or inconsistent setting.
// It is the only error kind components return from their constructors.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// InvalidConfig builds a ConfigError for field
func InvalidConfig(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Check panics with an ErrPrecondition error when cond is false.
// Callers use it for invariants that only a programming error can break.
func Check(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...)))
	}
}
