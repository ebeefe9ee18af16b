package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrGroupHasChildren, "Gruppe hat noch Kinder"))

	appErr := FromError(wrapped)
	assert.Equal(t, "GROUP_HAS_CHILDREN", appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "Gruppe hat noch Kinder", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("connection refused"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := Clone(ErrDuplicateEmail, "custom message")
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
	assert.False(t, errors.Is(err, ErrDuplicateMealSlot))
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	detailed := ErrValidation.WithDetails(map[string]string{"email": "required"})
	assert.Equal(t, "required", detailed.Details["email"])
	assert.Nil(t, ErrValidation.Details)
}
