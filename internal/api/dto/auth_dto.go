package dto

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 50
	passwordMinLength = 8
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate returns field-level problems, or nil when the payload is acceptable.
func (r LoginRequest) Validate() []apperrors.FieldError {
	var errs []apperrors.FieldError
	switch n := utf8.RuneCountInString(r.Username); {
	case strings.TrimSpace(r.Username) == "":
		errs = append(errs, apperrors.FieldError{Field: "username", Message: "Username is required", RejectedValue: r.Username})
	case n < usernameMinLength || n > usernameMaxLength:
		errs = append(errs, apperrors.FieldError{Field: "username", Message: "Username must between 3 and 50 characters", RejectedValue: r.Username})
	}
	switch {
	case strings.TrimSpace(r.Password) == "":
		errs = append(errs, apperrors.FieldError{Field: "password", Message: "Password is required"})
	case utf8.RuneCountInString(r.Password) < passwordMinLength:
		errs = append(errs, apperrors.FieldError{Field: "password", Message: "Password must be at least 8 characters long"})
	}
	return errs
}

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
}

// Validate only checks shape; business rules are enforced by the auth service.
func (r RegisterRequest) Validate() []apperrors.FieldError {
	if utf8.RuneCountInString(r.Username) > usernameMaxLength {
		return []apperrors.FieldError{{Field: "username", Message: "Username must be at most 50 characters", RejectedValue: r.Username}}
	}
	return nil
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WelcomeResponse is the caller profile returned by /demo/welcome.
type WelcomeResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Country  string `json:"country"`
	Role     string `json:"role"`
}

// UserInfoResponse describes the bound identity.
type UserInfoResponse struct {
	Username        string   `json:"username"`
	Authorities     []string `json:"authorities"`
	IsAuthenticated bool     `json:"is_authenticated"`
}
