package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("researcher@university.edu"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@domain"))
}

func TestValidateApplicationNumber(t *testing.T) {
	assert.True(t, ValidateApplicationNumber("RP-2026-0001"))
	assert.True(t, ValidateApplicationNumber("IPR-2026-0042"))
	assert.False(t, ValidateApplicationNumber("XX-2026-0001"))
	assert.False(t, ValidateApplicationNumber("RP-26-0001"))
	assert.False(t, ValidateApplicationNumber("RP-2026-1"))
}

func TestValidatePassword(t *testing.T) {
	valid, reason := ValidatePassword("longenough")
	assert.True(t, valid)
	assert.Empty(t, reason)

	valid, reason = ValidatePassword("short")
	assert.False(t, valid)
	assert.Equal(t, "Password must be at least 8 characters", reason)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "title", SanitizeInput("  title  "))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
}
