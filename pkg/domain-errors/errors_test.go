package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("load order: %w", Wrap(cause, CodeInternal, "failed to load order"))

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.False(t, HasCode(cause, CodeInternal))
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "noop"))
}

func TestIsComparesCodeAndMessage(t *testing.T) {
	err := New(CodeBadRequest, "cannot submit empty order")
	assert.ErrorIs(t, err, New(CodeBadRequest, "cannot submit empty order"))
	assert.NotErrorIs(t, err, New(CodeBadRequest, "other"))
}
