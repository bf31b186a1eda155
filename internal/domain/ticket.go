package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Any status in the
// known set may overwrite any other; ordering is not enforced.
type TicketStatus string

const (
	TicketStatusOpen               TicketStatus = "Open"
	TicketStatusInProgress         TicketStatus = "In Progress"
	TicketStatusReadyForCollection TicketStatus = "Ready for Collection"
	TicketStatusCollected          TicketStatus = "Collected"
	TicketStatusClosed             TicketStatus = "Closed"
)

// KnownStatus reports whether s is a member of the status set.
func KnownStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusReadyForCollection,
		TicketStatusCollected, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketMessage is one admin-to-user communication. The message sequence on a
// ticket is append-only; entries are never edited or removed.
type TicketMessage struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    TicketPriority
	Product     string
	Status      TicketStatus
	CreatedBy   string
	CreatedAt   time.Time
	ActionTaken *string
	Messages    []TicketMessage
}
