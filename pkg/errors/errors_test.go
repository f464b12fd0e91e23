package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyMatchers(t *testing.T) {
	transport := NewTransportError("list users", errors.New("connection refused"))
	server := NewServerError("create user", 500, "boom")
	validation := NewValidationError("email", "email is already taken")

	assert.True(t, IsTransport(transport))
	assert.False(t, IsTransport(server))

	assert.True(t, IsServer(server))
	assert.False(t, IsServer(validation))

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(transport))
}

func TestMatchersSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("error creating user: %w", NewServerError("create user", 404, ""))
	assert.True(t, IsServer(err))
	assert.Contains(t, err.Error(), "server returned 404")
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewTransportError("delete user", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "no response from server")
}

func TestValidationError_Messages(t *testing.T) {
	withField := NewValidationError("email", "invalid email format")
	assert.Equal(t, "validation failed: email - invalid email format", withField.Error())

	bare := NewValidationError("", "first name is required")
	assert.Equal(t, "validation failed: first name is required", bare.Error())
}
