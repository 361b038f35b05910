package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		code string
	}{
		{"unauthorized", Unauthorized("sign in first"), ErrUnauthorized, CodeUnauthorized},
		{"forbidden", Forbidden("not your post"), ErrForbidden, CodeForbidden},
		{"invalid input", InvalidInput("comment is empty"), ErrInvalidInput, CodeInvalidInput},
		{"not found", NotFound("post not found"), ErrNotFound, CodeNotFound},
		{"dependency", Dependency(errors.New("timeout"), "insert post"), ErrDependencyFailure, CodeDependencyFailure},
	}

	all := []error{ErrUnauthorized, ErrForbidden, ErrInvalidInput, ErrNotFound, ErrDependencyFailure}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			for _, k := range all {
				assert.Equal(t, k == tt.kind, errors.Is(tt.err, k), "kind %v", k)
			}
		})
	}
}

func TestDependency_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency(cause, "upload blob")

	assert.True(t, IsDependencyFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upload blob: connection refused", err.Error())
	assert.Equal(t, "upload blob", GetMessage(err))
	assert.Nil(t, Dependency(nil, "noop"))
}

func TestWrap_PreservesKind(t *testing.T) {
	inner := Forbidden("not the author")
	wrapped := fmt.Errorf("delete post: %w", Wrap(inner, "command failed"))

	assert.True(t, IsForbidden(wrapped))
	assert.Equal(t, CodeForbidden, GetCode(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestGetMessage_PlainError(t *testing.T) {
	assert.Equal(t, "", GetMessage(nil))
	assert.Equal(t, "boom", GetMessage(errors.New("boom")))
	assert.Equal(t, "", GetCode(errors.New("boom")))
}
