package operator

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every construction-time validation failure.
var ErrInvalidConfig = errors.New("invalid operator configuration")

// ErrInconsistentState is returned when redundant views of the model disagree.
// It indicates model corruption and must stop the chain.
var ErrInconsistentState = errors.New("inconsistent model state")

// ErrScheduleSealed is returned when operators are added after selection started.
var ErrScheduleSealed = errors.New("operator schedule is sealed")

// ConfigError describes one invalid constructor argument.
type ConfigError struct {
	Operator string // Operator name or kind
	Key      string // Argument name
	Reason   string // Human-readable reason for failure
	Value    any    // The value that failed validation
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s: %s", e.Operator, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s (got %v)", e.Operator, e.Key, e.Reason, e.Value)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Invalid builds a ConfigError.
func Invalid(operator, key, reason string, value any) error {
	return &ConfigError{Operator: operator, Key: key, Reason: reason, Value: value}
}
