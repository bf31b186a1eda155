package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Field names follow the public API contract.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Email       string `json:"email"`
	Product     string `json:"product"`
}

// UpdateTicketRequest payload for admin status updates. An absent actionTaken
// leaves the stored value unchanged.
type UpdateTicketRequest struct {
	Status      string  `json:"status"`
	ActionTaken *string `json:"actionTaken"`
}

// AddMessageRequest payload.
type AddMessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse is one thread entry.
type MessageResponse struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Priority    string            `json:"priority"`
	Product     string            `json:"product"`
	Status      string            `json:"status"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	ActionTaken *string           `json:"actionTaken"`
	Messages    []MessageResponse `json:"messages"`
}

// NewTicketResponse maps the domain model.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	messages := make([]MessageResponse, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		messages = append(messages, MessageResponse{Text: msg.Text, Timestamp: msg.Timestamp})
	}
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    string(ticket.Priority),
		Product:     ticket.Product,
		Status:      string(ticket.Status),
		CreatedBy:   ticket.CreatedBy,
		CreatedAt:   ticket.CreatedAt,
		ActionTaken: ticket.ActionTaken,
		Messages:    messages,
	}
}

// NewTicketResponses maps a slice.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
