package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every service. Controllers map these to HTTP
// statuses; raw store errors never cross the service boundary.

// ValidationError reports malformed or out-of-range input, including enum
// values outside the registry.
type ValidationError struct {
	Field   string
	Message string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("invalid value for %s: %s (allowed: %s)", e.Field, e.Message, strings.Join(e.Allowed, ", "))
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ConfigurationError means a required policy value is absent for the
// publication date in question. Fatal to the calculation path: silently
// defaulting would misstate payouts.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// PermissionError means the caller lacks the role, ownership, or assignment
// the operation requires.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Message
}

// NotFoundError means a referenced entity is absent.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// StateError means the attempted transition or mutation is not legal for the
// record's current status.
type StateError struct {
	From   string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in status '%s'", e.Action, e.From)
}

// CalculationFault wraps an unexpected failure inside the incentive engine.
// Absorbed at the engine boundary by the lifecycle layer, which degrades to
// an all-zero result and logs loudly.
type CalculationFault struct {
	Cause error
}

func (e *CalculationFault) Error() string {
	return "incentive calculation fault: " + e.Cause.Error()
}

func (e *CalculationFault) Unwrap() error {
	return e.Cause
}

// Classification helpers used by controllers when mapping to HTTP statuses.

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}
