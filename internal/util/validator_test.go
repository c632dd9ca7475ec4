package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/model"
	"shop-backend/pkg/apierror"
)

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	year := 2200
	tests := []struct {
		name        string
		input       any
		wantDetails string
	}{
		{name: "valid sign-up", input: model.SignUpRequest{Email: "a@b.com", Password: "secret1"}},
		{name: "missing email", input: model.SignUpRequest{Password: "secret1"}, wantDetails: "email:required"},
		{name: "bad email and short password", input: model.SignUpRequest{Email: "nope", Password: "abc"}, wantDetails: "email:email,password:min"},
		{name: "empty patch", input: model.UpdateUserRequest{}},
		{name: "year too late", input: model.UpdateUserRequest{YearOfBirth: &year}, wantDetails: "yearOfBirth:max"},
		{name: "empty comment", input: model.CreateCommentRequest{}, wantDetails: "text:required"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.input)
			if tt.wantDetails == "" {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "BAD_REQUEST", apiErr.Code)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
		})
	}
}

func TestValidationMessagesOmitValues(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(model.SignUpRequest{Email: "a@b.com", Password: "xyz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must be at least 6 characters")
	assert.NotContains(t, err.Error(), "xyz")
}
