package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventAccessDenied   EventType = "access_denied"
)

// Event represents an audit event emitted by the authentication pipeline.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, subject string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Role    domain.Role `json:"role"`
	Country string      `json:"country"`
}

// LoginPayload payload.
type LoginPayload struct {
	Role   domain.Role `json:"role,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// AccessDeniedPayload payload.
type AccessDeniedPayload struct {
	Path         string      `json:"path"`
	Method       string      `json:"method"`
	Role         domain.Role `json:"role"`
	RequiredRole domain.Role `json:"required_role"`
}
