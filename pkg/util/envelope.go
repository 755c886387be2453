package util

import (
	"fmt"
	"time"
)

// APIResponse is the single response shape returned by every endpoint.
type APIResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Data      any           `json:"data,omitempty"`
	Error     *ErrorDetails `json:"error,omitempty"`
}

// ErrorDetails is the error part of the envelope.
type ErrorDetails struct {
	ErrorCode        string         `json:"errorCode"`
	ErrorType        ErrorType      `json:"errorType"`
	ValidationErrors []FieldError   `json:"validationErrors,omitempty"`
	DebugInfo        map[string]any `json:"debugInfo,omitempty"`
	StackTrace       string         `json:"stackTrace,omitempty"`
}

// Success wraps data in a successful envelope.
func Success(message string, data any) APIResponse {
	return APIResponse{
		Timestamp: time.Now().UTC(),
		Success:   true,
		Message:   message,
		Data:      data,
	}
}

// Translate maps any failure to its status code and error envelope.
// Internal detail is attached only when debug is true.
func Translate(err error, debug bool) (int, APIResponse) {
	domainErr := ToDomainError(err)
	if domainErr == nil {
		domainErr = ToDomainError(NewInternalError(nil))
	}

	details := &ErrorDetails{
		ErrorCode:        domainErr.Code(),
		ErrorType:        domainErr.Kind.Type(),
		ValidationErrors: domainErr.ValidationErrors,
	}

	if debug {
		info := map[string]any{}
		if len(domainErr.Details) > 0 {
			info["details"] = domainErr.Details
		}
		if domainErr.Err != nil {
			info["exceptionType"] = fmt.Sprintf("%T", domainErr.Err)
			info["message"] = domainErr.Err.Error()
		}
		if len(info) > 0 {
			details.DebugInfo = info
		}
		if len(domainErr.Stack) > 0 {
			details.StackTrace = string(domainErr.Stack)
		}
	}

	return domainErr.HTTPStatus(), APIResponse{
		Timestamp: time.Now().UTC(),
		Success:   false,
		Message:   domainErr.Message,
		Error:     details,
	}
}
