package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		typ    ErrorType
		code   string
	}{
		{NewValidationError(nil), http.StatusBadRequest, ErrorTypeValidation, "VALIDATION_ERROR"},
		{NewInvalidOperation("register", "too short"), http.StatusBadRequest, ErrorTypeBusiness, "INVALID_OPERATION"},
		{NewBadCredentials(), http.StatusUnauthorized, ErrorTypeAuthentication, "BAD_CREDENTIALS"},
		{NewMissingToken(), http.StatusUnauthorized, ErrorTypeAuthentication, "AUTHENTICATION_REQUIRED"},
		{NewInvalidToken(nil), http.StatusUnauthorized, ErrorTypeAuthentication, "INVALID_TOKEN"},
		{NewTokenExpired(nil), http.StatusUnauthorized, ErrorTypeAuthentication, "TOKEN_EXPIRED"},
		{NewAuthenticationFailed(nil), http.StatusUnauthorized, ErrorTypeAuthentication, "AUTHENTICATION_FAILED"},
		{NewUserNotFound("ghost"), http.StatusNotFound, ErrorTypeBusiness, "USER_NOT_FOUND"},
		{NewUserAlreadyExists("alice"), http.StatusConflict, ErrorTypeBusiness, "USER_ALREADY_EXISTS"},
		{NewAccessDenied("ADMIN"), http.StatusForbidden, ErrorTypeAuthorization, "ACCESS_DENIED"},
		{NewStorageError("Error saving user to database", errors.New("disk full")), http.StatusInternalServerError, ErrorTypeSystem, "DATABASE_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, ErrorTypeSystem, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		status, resp := Translate(tc.err, false)
		assert.Equal(t, tc.status, status, tc.code)
		require.NotNil(t, resp.Error, tc.code)
		assert.Equal(t, tc.code, resp.Error.ErrorCode)
		assert.Equal(t, tc.typ, resp.Error.ErrorType)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Message)
	}
}

func TestTranslateHidesInternalsWithoutDebug(t *testing.T) {
	t.Parallel()

	err := NewStorageError("Error saving user to database", errors.New("connection refused"))
	_, resp := Translate(err, false)

	assert.Nil(t, resp.Error.DebugInfo)
	assert.Empty(t, resp.Error.StackTrace)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestTranslateDebugInfo(t *testing.T) {
	t.Parallel()

	err := NewPanicError("nil map write", []byte("goroutine 1 [running]"))
	_, resp := Translate(err, true)

	require.NotNil(t, resp.Error.DebugInfo)
	assert.Equal(t, "panic: nil map write", resp.Error.DebugInfo["message"])
	assert.Contains(t, resp.Error.DebugInfo, "exceptionType")
	assert.Equal(t, "goroutine 1 [running]", resp.Error.StackTrace)

	_, resp = Translate(NewUserNotFound("ghost"), true)
	assert.Equal(t, map[string]any{"username": "ghost"}, resp.Error.DebugInfo["details"])
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("login: %w", NewBadCredentials())
	domainErr := ToDomainError(wrapped)

	assert.Equal(t, KindBadCredentials, domainErr.Kind)
	assert.True(t, IsKind(wrapped, KindBadCredentials))
	assert.False(t, IsKind(wrapped, KindUserNotFound))
	assert.Nil(t, ToDomainError(nil))
}

func TestTranslateValidationErrors(t *testing.T) {
	t.Parallel()

	fields := []FieldError{{Field: "username", Message: "Username is required"}}
	status, resp := Translate(NewValidationError(fields), false)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, fields, resp.Error.ValidationErrors)
}
