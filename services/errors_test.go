package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsValidation(&ValidationError{Field: "quartile", Message: "Q9"}))
	assert.True(t, IsConfiguration(&ConfigurationError{Message: "missing percentages"}))
	assert.True(t, IsPermission(&PermissionError{Message: "not the applicant"}))
	assert.True(t, IsNotFound(&NotFoundError{Entity: "contribution"}))
	assert.True(t, IsState(&StateError{From: "completed", Action: "edit"}))

	assert.False(t, IsValidation(errors.New("plain")))
	assert.False(t, IsConfiguration(&ValidationError{Field: "x"}))
}

func TestErrorClassification_Wrapped(t *testing.T) {
	err := fmt.Errorf("while approving: %w", &ConfigurationError{Message: "no policy"})
	assert.True(t, IsConfiguration(err))
	assert.False(t, IsValidation(err))
}

func TestCalculationFault_Unwrap(t *testing.T) {
	cause := errors.New("division blew up")
	fault := &CalculationFault{Cause: cause}
	assert.ErrorIs(t, fault, cause)
}
