package events

import (
	"time"

	"github.com/spec-kit/resale-admin/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventRefundStatusChanged EventType = "refund_status_changed"
	EventSnapshotRefreshed   EventType = "snapshot_refreshed"
)

// Event represents a domain event emitted by the console.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Operator  string      `json:"operator,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Fields    map[string]string   `json:"fields,omitempty"`
}

// RefundStatusChangedPayload payload.
type RefundStatusChangedPayload struct {
	OldRefund domain.RefundStatus `json:"old_refund"`
	NewRefund domain.RefundStatus `json:"new_refund"`
}

// SnapshotRefreshedPayload payload.
type SnapshotRefreshedPayload struct {
	Tickets   int `json:"tickets"`
	Orders    int `json:"orders"`
	Customers int `json:"customers"`
}
