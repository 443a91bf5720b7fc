package validators

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string  `validate:"required,username"`
	Handle   *string `validate:"omitempty,username"`
}

func TestUsernameRule(t *testing.T) {
	v := NewValidator()

	valid := []string{"sam", "sara_k", "j.doe", "user123", "abcdefghijabcdefghijabcdefghij"}
	for _, name := range valid {
		assert.NoError(t, v.Validate(&signup{Username: name}), name)
	}

	invalid := []string{"", "ab", "Sam", "has space", "emoji🙂", "dash-ed", "abcdefghijabcdefghijabcdefghijk"}
	for _, name := range invalid {
		assert.Error(t, v.Validate(&signup{Username: name}), name)
	}
}

func TestValidateReturnsBadRequest(t *testing.T) {
	bad := "NO"
	err := NewValidator().Validate(&signup{Username: "fine", Handle: &bad})
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
