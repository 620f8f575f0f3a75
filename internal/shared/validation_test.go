package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatecore/core/internal/platform/httpx"
)

func TestValidate(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
	}
	require.NoError(t, Validate(form{Email: "admin@admin.com"}))

	err := Validate(form{Email: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
	assert.Contains(t, err.Error(), "Email failed on email")

	assert.NoError(t, Validate(PageRequest{Page: 0, Size: 10}))
	assert.Error(t, Validate(PageRequest{Page: -1}))
}
