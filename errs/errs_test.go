package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Run("Should format code and message", func(t *testing.T) {
		err := New(CodeEntityNotFound, errors.New("workflow missing"), nil)
		assert.Equal(t, "ENTITY_NOT_FOUND: workflow missing", err.Error())
	})

	t.Run("Should handle nil cause", func(t *testing.T) {
		err := New(CodeConfiguration, nil, nil)
		assert.Equal(t, "CONFIGURATION: CONFIGURATION", err.Error())
	})

	t.Run("Should handle nil receiver", func(t *testing.T) {
		var err *Error
		assert.Empty(t, err.Error())
	})
}

func TestError_Is(t *testing.T) {
	err := NotFound("task", "t1")
	assert.True(t, errors.Is(err, ErrEntityNotFound))
	assert.False(t, errors.Is(err, ErrConfiguration))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(CodeStructuralIntegrity, cause, nil)
	require.ErrorIs(t, err, cause)
}

func TestError_AsMap(t *testing.T) {
	t.Run("Should render fields", func(t *testing.T) {
		err := New(CodeDataIntegrity, errors.New("dup"), map[string]any{"id": "x"})
		m := err.AsMap()
		assert.Equal(t, "DATA_INTEGRITY", m["code"])
		assert.Equal(t, "dup", m["message"])
		assert.Equal(t, map[string]any{"id": "x"}, m["details"])
	})

	t.Run("Should return nil on nil receiver", func(t *testing.T) {
		var err *Error
		assert.Nil(t, err.AsMap())
	})
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("task", "t1", "completed", "started")
	assert.True(t, errors.Is(err, ErrInvalidStateTransition))
	assert.Equal(t, "completed", err.Details["from"])
}
