package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventUserRegistered      EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CreatedBy string                `json:"created_by"`
	Title     string                `json:"title"`
	Product   string                `json:"product"`
	Priority  domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	CreatedBy   string              `json:"created_by"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	ActionTaken *string             `json:"action_taken,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	CreatedBy string `json:"created_by"`
	Text      string `json:"text"`
}

// UserRegisteredPayload payload. Password is the temporary credential handed
// to the new account in the welcome mail; it is never persisted in this form.
type UserRegisteredPayload struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}
