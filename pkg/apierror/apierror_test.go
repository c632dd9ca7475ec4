package apierror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorFormatting(t *testing.T) {
	err := New("CONFLICT", "email registered", "a@b.com", http.StatusBadRequest)
	assert.Equal(t, "CONFLICT: email registered (a@b.com)", err.Error())

	plain := Unauthorized("Not authorized")
	assert.Equal(t, "UNAUTHORIZED: Not authorized", plain.Error())
	assert.Equal(t, http.StatusUnauthorized, plain.HTTPStatus)

	var nilErr *APIError
	assert.Equal(t, "", nilErr.Error())
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Forbidden("nope"), "FORBIDDEN"))
	assert.False(t, Is(Forbidden("nope"), "UNAUTHORIZED"))
	assert.False(t, Is(nil, "FORBIDDEN"))
}
