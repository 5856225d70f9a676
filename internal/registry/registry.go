// Package registry owns the ticket collection and its lifecycle transitions.
// Transitions check structural validity only (ticket existence, required
// fields); who may invoke them is the access policy's concern and is decided
// by callers before reaching this package.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/store"
)

// ErrMissingField signals an empty required field at creation.
var ErrMissingField = errors.New("title and description required")

// CreateInput describes a ticket before creation.
type CreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CreatedBy   string
}

// Registry holds the live ticket collection.
type Registry struct {
	mu         sync.RWMutex
	store      store.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	tickets    []domain.Ticket
}

// New loads the ticket snapshot, seeding the demo dataset when absent.
func New(ctx context.Context, st store.Store, dispatcher events.Dispatcher, logger *zap.Logger) (*Registry, error) {
	r := &Registry{store: st, dispatcher: dispatcher, logger: logger}

	raw, err := st.Get(ctx, store.KeyTickets)
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.tickets = seedTickets(time.Now())
		if err := r.persist(ctx); err != nil {
			return nil, err
		}
		logger.Info("seeded demo tickets", zap.Int("count", len(r.tickets)))
	case err != nil:
		return nil, fmt.Errorf("load tickets: %w", err)
	default:
		if err := json.Unmarshal(raw, &r.tickets); err != nil {
			return nil, fmt.Errorf("decode tickets: %w", err)
		}
	}

	return r, nil
}

// Create adds a new open ticket. Title and description must be non-empty; an
// empty priority defaults to medium.
func (r *Registry) Create(ctx context.Context, input CreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, ErrMissingField
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	now := time.Now()
	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   input.CreatedBy,
		AssignedTo:  nil,
		Resolution:  nil,
	}

	r.mu.Lock()
	r.tickets = append(r.tickets, ticket)
	if err := r.persist(ctx); err != nil {
		r.tickets = r.tickets[:len(r.tickets)-1]
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	r.publish(ctx, events.TicketCreated, ticket.ID, events.TicketCreatedPayload{
		Title:     ticket.Title,
		Priority:  ticket.Priority,
		CreatedBy: ticket.CreatedBy,
	})
	out := ticket
	return &out, nil
}

// Assign moves a ticket to assigned and records the assignee. A nil result
// with a nil error means no ticket matched.
func (r *Registry) Assign(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	ticket, err := r.mutate(ctx, ticketID, func(t *domain.Ticket) {
		t.Status = domain.TicketStatusAssigned
		assignee := userID
		t.AssignedTo = &assignee
	})
	if ticket != nil && err == nil {
		r.publish(ctx, events.TicketAssigned, ticket.ID, events.TicketAssignedPayload{AssignedTo: userID})
	}
	return ticket, err
}

// Resolve moves a ticket to resolved and records the resolution text.
func (r *Registry) Resolve(ctx context.Context, ticketID, resolution string) (*domain.Ticket, error) {
	ticket, err := r.mutate(ctx, ticketID, func(t *domain.Ticket) {
		t.Status = domain.TicketStatusResolved
		text := resolution
		t.Resolution = &text
	})
	if ticket != nil && err == nil {
		r.publish(ctx, events.TicketResolved, ticket.ID, events.TicketResolvedPayload{Resolution: resolution})
	}
	return ticket, err
}

// Close moves a ticket to closed.
func (r *Registry) Close(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := r.mutate(ctx, ticketID, func(t *domain.Ticket) {
		t.Status = domain.TicketStatusClosed
	})
	if ticket != nil && err == nil {
		r.publish(ctx, events.TicketClosed, ticket.ID, events.TicketStatusPayload{Status: ticket.Status})
	}
	return ticket, err
}

// Update fully replaces the ticket with the matching id, forcing UpdatedAt to
// now. A nil result with a nil error means no ticket matched.
func (r *Registry) Update(ctx context.Context, ticket domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	idx := -1
	for i := range r.tickets {
		if r.tickets[i].ID == ticket.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return nil, nil
	}

	previous := r.tickets[idx]
	ticket.UpdatedAt = time.Now()
	r.tickets[idx] = ticket
	if err := r.persist(ctx); err != nil {
		r.tickets[idx] = previous
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	r.publish(ctx, events.TicketUpdated, ticket.ID, events.TicketStatusPayload{Status: ticket.Status})
	out := ticket
	return &out, nil
}

// Delete removes the ticket unconditionally. It reports whether a record was
// removed.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	kept := r.tickets[:0]
	var removed *domain.Ticket
	for _, t := range r.tickets {
		if t.ID == id {
			deleted := t
			removed = &deleted
			continue
		}
		kept = append(kept, t)
	}
	if removed == nil {
		r.mu.Unlock()
		return false, nil
	}
	r.tickets = kept
	if err := r.persist(ctx); err != nil {
		r.mu.Unlock()
		return false, err
	}
	r.mu.Unlock()

	r.publish(ctx, events.TicketDeleted, id, events.TicketStatusPayload{Status: removed.Status})
	return true, nil
}

// Tickets returns a copy of the whole collection.
func (r *Registry) Tickets() []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Ticket, len(r.tickets))
	copy(out, r.tickets)
	return out
}

// TicketByID looks up a ticket by id.
func (r *Registry) TicketByID(id string) (*domain.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			out := r.tickets[i]
			return &out, true
		}
	}
	return nil, false
}

// UserTickets returns all tickets created by the user.
func (r *Registry) UserTickets(userID string) []domain.Ticket {
	return r.filter(func(t domain.Ticket) bool { return t.CreatedBy == userID })
}

// UnassignedTickets returns all open tickets.
func (r *Registry) UnassignedTickets() []domain.Ticket {
	return r.filter(func(t domain.Ticket) bool { return t.Status == domain.TicketStatusOpen })
}

// AssignedTickets returns all tickets assigned to the user, regardless of
// status. Resolved and closed tickets keep their assignee.
func (r *Registry) AssignedTickets(userID string) []domain.Ticket {
	return r.filter(func(t domain.Ticket) bool {
		return t.AssignedTo != nil && *t.AssignedTo == userID
	})
}

func (r *Registry) filter(keep func(domain.Ticket) bool) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Ticket{}
	for _, t := range r.tickets {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) mutate(ctx context.Context, id string, apply func(*domain.Ticket)) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tickets {
		if r.tickets[i].ID != id {
			continue
		}
		previous := r.tickets[i]
		apply(&r.tickets[i])
		r.tickets[i].UpdatedAt = time.Now()
		if err := r.persist(ctx); err != nil {
			r.tickets[i] = previous
			return nil, err
		}
		out := r.tickets[i]
		return &out, nil
	}
	return nil, nil
}

func (r *Registry) persist(ctx context.Context) error {
	raw, err := json.Marshal(r.tickets)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, store.KeyTickets, raw)
}

func (r *Registry) publish(ctx context.Context, eventType events.Type, ticketID string, payload interface{}) {
	if r.dispatcher == nil {
		return
	}
	_ = r.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
