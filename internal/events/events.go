package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Type enumerates supported event identifiers.
type Type string

const (
	TicketCreated  Type = "ticket_created"
	TicketAssigned Type = "ticket_assigned"
	TicketResolved Type = "ticket_resolved"
	TicketClosed   Type = "ticket_closed"
	TicketUpdated  Type = "ticket_updated"
	TicketDeleted  Type = "ticket_deleted"
)

// Event is emitted by the ticket registry after a successful mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title     string                `json:"title"`
	Priority  domain.TicketPriority `json:"priority"`
	CreatedBy string                `json:"created_by"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Resolution string `json:"resolution"`
}

// TicketStatusPayload payload for close/update/delete events.
type TicketStatusPayload struct {
	Status domain.TicketStatus `json:"status"`
}
