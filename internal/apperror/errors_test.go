package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_SurvivesWrapping(t *testing.T) {
	base := Validation("capacity must be >= %d", 0)
	wrapped := fmt.Errorf("service: could not update capacity: %w", base)

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindValidation))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "capacity must be >= 0", Message(wrapped))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("connection refused")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", Message(err))
	assert.False(t, Is(nil, KindInternal))
}

func TestConflict_UnwrapsCause(t *testing.T) {
	cause := errors.New("could not serialize access")
	err := Conflict("concurrent update detected", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "concurrent update detected: could not serialize access", err.Error())
	assert.Equal(t, "conflict", err.Kind.String())
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("resource", 42)
	assert.Equal(t, "resource with id 42 not found", err.Error())
	assert.Equal(t, KindNotFound, err.Kind)
}
