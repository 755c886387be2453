package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure the authentication pipeline can produce.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindInvalidOperation
	KindBadCredentials
	KindMissingToken
	KindInvalidToken
	KindTokenExpired
	KindAuthenticationFailed
	KindUserNotFound
	KindResourceNotFound
	KindUserAlreadyExists
	KindAccessDenied
	KindStorage
)

// ErrorType is the coarse error family reported to clients.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION"
	ErrorTypeAuthorization  ErrorType = "AUTHORIZATION"
	ErrorTypeBusiness       ErrorType = "BUSINESS"
	ErrorTypeSystem         ErrorType = "SYSTEM"
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindBadRequest, KindInvalidOperation:
		return http.StatusBadRequest
	case KindBadCredentials, KindMissingToken, KindInvalidToken, KindTokenExpired, KindAuthenticationFailed:
		return http.StatusUnauthorized
	case KindUserNotFound, KindResourceNotFound:
		return http.StatusNotFound
	case KindUserAlreadyExists:
		return http.StatusConflict
	case KindAccessDenied:
		return http.StatusForbidden
	case KindStorage, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Type returns the error family for the kind.
func (k Kind) Type() ErrorType {
	switch k {
	case KindValidation, KindBadRequest:
		return ErrorTypeValidation
	case KindInvalidOperation, KindUserNotFound, KindResourceNotFound, KindUserAlreadyExists:
		return ErrorTypeBusiness
	case KindBadCredentials, KindMissingToken, KindInvalidToken, KindTokenExpired, KindAuthenticationFailed:
		return ErrorTypeAuthentication
	case KindAccessDenied:
		return ErrorTypeAuthorization
	case KindStorage, KindInternal:
		return ErrorTypeSystem
	default:
		return ErrorTypeSystem
	}
}

// Code returns the stable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindInvalidOperation:
		return "INVALID_OPERATION"
	case KindBadCredentials:
		return "BAD_CREDENTIALS"
	case KindMissingToken:
		return "AUTHENTICATION_REQUIRED"
	case KindInvalidToken:
		return "INVALID_TOKEN"
	case KindTokenExpired:
		return "TOKEN_EXPIRED"
	case KindAuthenticationFailed:
		return "AUTHENTICATION_FAILED"
	case KindUserNotFound:
		return "USER_NOT_FOUND"
	case KindResourceNotFound:
		return "RESOURCE_NOT_FOUND"
	case KindUserAlreadyExists:
		return "USER_ALREADY_EXISTS"
	case KindAccessDenied:
		return "ACCESS_DENIED"
	case KindStorage:
		return "DATABASE_ERROR"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// FieldError describes a single rejected request field.
type FieldError struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	RejectedValue any    `json:"rejectedValue,omitempty"`
}

// DomainError standardizes application errors.
type DomainError struct {
	Kind             Kind
	Message          string
	Details          map[string]any
	ValidationErrors []FieldError
	Stack            []byte
	Err              error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Code returns the client facing error code.
func (e *DomainError) Code() string {
	return e.Kind.Code()
}

// HTTPStatus returns the response status for the error.
func (e *DomainError) HTTPStatus() int {
	return e.Kind.Status()
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, message string, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Message: message, Details: details}
}

func NewValidationError(fields []FieldError) error {
	return &DomainError{
		Kind:             KindValidation,
		Message:          "Validation failed for one or more fields",
		ValidationErrors: fields,
	}
}

func NewBadRequest(message string) error {
	return NewDomainError(KindBadRequest, message, nil)
}

func NewInvalidOperation(operation, reason string) error {
	return NewDomainError(KindInvalidOperation,
		fmt.Sprintf("Invalid operation: %s. Reason: %s", operation, reason),
		map[string]any{"operation": operation, "reason": reason})
}

func NewBadCredentials() error {
	return NewDomainError(KindBadCredentials, "Invalid username or password", nil)
}

func NewMissingToken() error {
	return NewDomainError(KindMissingToken,
		"Authentication is required to access this resource. Please provide a valid token.", nil)
}

func NewInvalidToken(err error) error {
	return &DomainError{Kind: KindInvalidToken, Message: "Invalid or malformed JWT token", Err: err}
}

func NewTokenExpired(err error) error {
	return &DomainError{Kind: KindTokenExpired, Message: "JWT token has expired", Err: err}
}

func NewAuthenticationFailed(err error) error {
	return &DomainError{Kind: KindAuthenticationFailed, Message: "Authentication failed", Err: err}
}

func NewUserNotFound(username string) error {
	return NewDomainError(KindUserNotFound,
		fmt.Sprintf("User with username '%s' not found", username),
		map[string]any{"username": username})
}

func NewNotFound(resource string) error {
	return NewDomainError(KindResourceNotFound, fmt.Sprintf("%s not found", resource),
		map[string]any{"resource": resource})
}

func NewUserAlreadyExists(username string) error {
	return NewDomainError(KindUserAlreadyExists,
		fmt.Sprintf("User with username '%s' already exists", username),
		map[string]any{"username": username})
}

func NewAccessDenied(requiredRole string) error {
	return NewDomainError(KindAccessDenied,
		fmt.Sprintf("You don't have permission to access this resource. %s role required.", requiredRole),
		map[string]any{"requiredRole": requiredRole})
}

func NewStorageError(message string, err error) error {
	return &DomainError{Kind: KindStorage, Message: message, Err: err}
}

func NewInternalError(err error) error {
	return &DomainError{Kind: KindInternal, Message: "An unexpected error occurred", Err: err}
}

// NewPanicError wraps a recovered panic value together with the captured stack.
func NewPanicError(recovered any, stack []byte) error {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	return &DomainError{Kind: KindInternal, Message: "An unexpected error occurred", Err: err, Stack: stack}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{Kind: KindInternal, Message: "An unexpected error occurred", Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Kind == kind
}
