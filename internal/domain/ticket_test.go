package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestKnownStatus(t *testing.T) {
	for _, s := range []TicketStatus{
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusReadyForCollection,
		TicketStatusCollected,
		TicketStatusClosed,
	} {
		if !KnownStatus(s) {
			t.Errorf("KnownStatus(%q) = false", s)
		}
	}
	for _, s := range []TicketStatus{"", "open", "Escalated", "CLOSED"} {
		if KnownStatus(s) {
			t.Errorf("KnownStatus(%q) = true", s)
		}
	}
}

// Message wire fields are part of the stored jsonb contract.
func TestTicketMessageJSONFields(t *testing.T) {
	msg := TicketMessage{Text: "hello", Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["text"]; !ok {
		t.Fatalf("missing text field in %s", raw)
	}
	if _, ok := decoded["timestamp"]; !ok {
		t.Fatalf("missing timestamp field in %s", raw)
	}
}
