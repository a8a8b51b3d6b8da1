package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	inner := errors.New("connection refused")
	err := APIError("Failed to reach model service", inner)

	assert.Contains(t, err.Error(), "[api]")
	assert.Contains(t, err.Error(), "Failed to reach model service")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)
}

func TestDomainError_NoInner(t *testing.T) {
	err := ValidationError("Missing PDF(s): neutral", nil)
	assert.Equal(t, "[validation] Missing PDF(s): neutral", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, TypeOf(ValidationError("x", nil)))
	assert.Equal(t, ErrorTypeConfig, TypeOf(ConfigError("x", nil)))
	assert.Equal(t, ErrorTypeParse, TypeOf(ParseError("x", nil)))

	wrapped := fmt.Errorf("outer: %w", IOError("write settings", nil))
	assert.Equal(t, ErrorTypeIO, TypeOf(wrapped))

	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}
