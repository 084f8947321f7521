package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", Clone(ErrNotFound, "course not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "course not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, "internal server error: boom", appErr.Error())
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "bad course")
	assert.Equal(t, "bad course", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("export: %w", ErrUnsupportedFormat)
	assert.True(t, IsCode(err, "UNSUPPORTED_FORMAT"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(fmt.Errorf("plain"), "NOT_FOUND"))
}
