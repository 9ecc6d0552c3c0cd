package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation: http.StatusBadRequest,
		KindAuth:       http.StatusUnauthorized,
		KindForbidden:  http.StatusForbidden,
		KindNotFound:   http.StatusNotFound,
		KindConflict:   http.StatusConflict,
		KindInternal:   http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestWrapKeepsIdentity(t *testing.T) {
	sentinel := NotFound("product not found")
	cause := errors.New("sql: no rows")

	wrapped := fmt.Errorf("get product: %w", sentinel.Wrap(cause))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.Nil(t, sentinel.Unwrap(), "Wrap must not mutate the sentinel")
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsKind(errors.New("boom"), KindConflict))
}

func TestInternalHidesCauseFromMessage(t *testing.T) {
	err := Internal("failed to save photo", errors.New("disk full at /var/uploads"))

	assert.Equal(t, "failed to save photo", err.Message())
	assert.Contains(t, err.Error(), "disk full")
}

func TestValidationFields(t *testing.T) {
	err := Validation("validation failed", FieldError{Field: "name", Message: "field is required"})

	assert.Equal(t, KindValidation, err.Kind())
	assert.Len(t, err.Fields(), 1)
	assert.False(t, errors.Is(err, Validation("other message")))
}
