package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeConflict, "taken")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches wrapped domain code", func(t *testing.T) {
		inner := New(CodeUnauthorized, "bad password")
		err := Wrap(inner, CodeInternal, "authenticate")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeUnauthorized))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := errors.Join(errors.New("other"), New(CodeTimeout, "slow"))
		assert.True(t, Is(err, CodeTimeout))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "code expired", MessageOf(New(CodeUnauthorized, "code expired"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(New(CodeInternal, "db exploded"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("raw"), "fallback"))
}

func TestValidation(t *testing.T) {
	err := Validation("form incomplete",
		FieldError{Field: "email", Message: "required"},
		FieldError{Field: "password", Message: "required"},
	)
	require.True(t, HasCode(err, CodeValidation))
	fields := Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("raw")))
}
