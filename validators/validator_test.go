package validators

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/aora/backend/internal/models"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	body, ok := he.Message.(echo.Map)
	require.True(t, ok)
	fields, ok := body["fields"].(map[string]string)
	require.True(t, ok)
	return fields
}

func TestValidateRegistration(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&models.CreateUserRequest{Username: "ana", Email: "ana@example.com"}))

	fields := fieldErrors(t, v.Validate(&models.CreateUserRequest{Username: "an", Email: "nope"}))
	assert.Equal(t, "Username must be at least 3 characters", fields["username"])
	assert.Equal(t, "Invalid email format", fields["email"])

	fields = fieldErrors(t, v.Validate(&models.CreateUserRequest{}))
	assert.Equal(t, "Username is required", fields["username"])
	assert.Equal(t, "Email is required", fields["email"])
}

func TestValidatePostForms(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&models.CreatePostRequest{Title: "Sunset"}))
	fields := fieldErrors(t, v.Validate(&models.CreatePostRequest{}))
	assert.Equal(t, "Title is required", fields["title"])

	fields = fieldErrors(t, v.Validate(&models.UpdatePostRequest{}))
	assert.Equal(t, "Title is required", fields["title"])

	fields = fieldErrors(t, v.Validate(&models.CreateUserRequest{Username: "ana", Email: "ana@example.com", Avatar: "not a url"}))
	assert.Equal(t, "Avatar must be a valid URL", fields["avatar"])
}
