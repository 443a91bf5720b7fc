package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("loading post: %w", NotFound("post"))

	assert.True(t, stderrors.Is(err, NotFound("")))
	assert.False(t, stderrors.Is(err, InvalidOperation("")))
	assert.True(t, IsNotFound(err))
}

func TestRemoteFailureUnwraps(t *testing.T) {
	cause := stderrors.New("deadline exceeded")
	err := RemoteFailure("ledger.Like", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRemoteFailure(err))
	assert.Equal(t, "ledger.Like: REMOTE_FAILURE: deadline exceeded", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestNotOwnerIsInvalidOperationWithForbiddenStatus(t *testing.T) {
	err := NotOwner("post")

	assert.True(t, IsInvalidOperation(err))
	assert.Equal(t, http.StatusForbidden, err.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, InvalidOperation("x").HTTPStatus())
}

func TestCodeOfPlainError(t *testing.T) {
	_, ok := CodeOf(stderrors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("UNKNOWN").StatusCode())
}
