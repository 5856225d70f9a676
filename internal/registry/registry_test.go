package registry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/registry"
	"github.com/spec-kit/helpdesk/internal/store"
)

func newRegistry(t *testing.T) (*registry.Registry, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	reg, err := registry.New(context.Background(), st, nil, zap.NewNop())
	require.NoError(t, err)
	return reg, st
}

func TestBootstrapSeedsDemoTickets(t *testing.T) {
	ctx := context.Background()
	reg, st := newRegistry(t)

	tickets := reg.Tickets()
	require.Len(t, tickets, 3)
	statuses := map[domain.TicketStatus]bool{}
	for _, ticket := range tickets {
		statuses[ticket.Status] = true
	}
	assert.True(t, statuses[domain.TicketStatusOpen])
	assert.True(t, statuses[domain.TicketStatusAssigned])
	assert.True(t, statuses[domain.TicketStatusResolved])

	_, err := st.Get(ctx, store.KeyTickets)
	require.NoError(t, err)

	again, err := registry.New(ctx, st, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, again.Tickets(), 3)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	t.Run("new ticket starts open with nothing assigned", func(t *testing.T) {
		ticket, err := reg.Create(ctx, registry.CreateInput{
			Title:       "Printer",
			Description: "broken",
			Priority:    domain.TicketPriorityMedium,
			CreatedBy:   "1",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Nil(t, ticket.AssignedTo)
		assert.Nil(t, ticket.Resolution)
		assert.Equal(t, "1", ticket.CreatedBy)
		assert.False(t, ticket.CreatedAt.IsZero())
		assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)
	})

	t.Run("empty priority defaults to medium", func(t *testing.T) {
		ticket, err := reg.Create(ctx, registry.CreateInput{
			Title:       "No priority",
			Description: "whatever",
			CreatedBy:   "1",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	})

	t.Run("blank required fields fail", func(t *testing.T) {
		_, err := reg.Create(ctx, registry.CreateInput{Title: "  ", Description: "x", CreatedBy: "1"})
		assert.ErrorIs(t, err, registry.ErrMissingField)
		_, err = reg.Create(ctx, registry.CreateInput{Title: "x", Description: "", CreatedBy: "1"})
		assert.ErrorIs(t, err, registry.ErrMissingField)
	})
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	created, err := reg.Create(ctx, registry.CreateInput{
		Title:       "Printer",
		Description: "broken",
		Priority:    domain.TicketPriorityMedium,
		CreatedBy:   "1",
	})
	require.NoError(t, err)

	t.Run("assign", func(t *testing.T) {
		ticket, err := reg.Assign(ctx, created.ID, "2")
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
		require.NotNil(t, ticket.AssignedTo)
		assert.Equal(t, "2", *ticket.AssignedTo)

		for _, open := range reg.UnassignedTickets() {
			assert.NotEqual(t, created.ID, open.ID)
		}
		assigned := reg.AssignedTickets("2")
		require.NotEmpty(t, assigned)
		found := false
		for _, a := range assigned {
			if a.ID == created.ID {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("resolve", func(t *testing.T) {
		ticket, err := reg.Resolve(ctx, created.ID, "replaced cable")
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
		require.NotNil(t, ticket.Resolution)
		assert.Equal(t, "replaced cable", *ticket.Resolution)

		// assignment is never cleared once set
		require.NotNil(t, ticket.AssignedTo)
		assert.Equal(t, "2", *ticket.AssignedTo)
		found := false
		for _, a := range reg.AssignedTickets("2") {
			if a.ID == created.ID {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("close", func(t *testing.T) {
		ticket, err := reg.Close(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
		require.NotNil(t, ticket.AssignedTo)
		require.NotNil(t, ticket.Resolution)
	})
}

func TestSilentNoOps(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)
	before := reg.Tickets()

	ticket, err := reg.Assign(ctx, "ghost", "2")
	assert.NoError(t, err)
	assert.Nil(t, ticket)

	ticket, err = reg.Resolve(ctx, "ghost", "done")
	assert.NoError(t, err)
	assert.Nil(t, ticket)

	ticket, err = reg.Close(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, ticket)

	ticket, err = reg.Update(ctx, domain.Ticket{ID: "ghost"})
	assert.NoError(t, err)
	assert.Nil(t, ticket)

	removed, err := reg.Delete(ctx, "ghost")
	assert.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, before, reg.Tickets())
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry(t)

	t.Run("update replaces the record and forces updatedAt", func(t *testing.T) {
		existing, ok := reg.TicketByID("1")
		require.True(t, ok)

		replacement := *existing
		replacement.Title = "Printer still broken"
		replacement.Priority = domain.TicketPriorityCritical
		replacement.UpdatedAt = time.Time{}

		updated, err := reg.Update(ctx, replacement)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Printer still broken", updated.Title)
		assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)
		assert.False(t, updated.UpdatedAt.IsZero())
		assert.False(t, updated.UpdatedAt.Before(existing.UpdatedAt))
	})

	t.Run("delete removes unconditionally", func(t *testing.T) {
		removed, err := reg.Delete(ctx, "1")
		require.NoError(t, err)
		assert.True(t, removed)
		_, ok := reg.TicketByID("1")
		assert.False(t, ok)
	})
}

func TestQueriesAreIdempotent(t *testing.T) {
	reg, _ := newRegistry(t)

	assert.Equal(t, reg.UserTickets("1"), reg.UserTickets("1"))
	assert.Equal(t, reg.UnassignedTickets(), reg.UnassignedTickets())
	assert.Equal(t, reg.AssignedTickets("2"), reg.AssignedTickets("2"))

	first, ok1 := reg.TicketByID("2")
	second, ok2 := reg.TicketByID("2")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg, st := newRegistry(t)

	created, err := reg.Create(ctx, registry.CreateInput{
		Title:       "Monitor flicker",
		Description: "second screen flickers",
		Priority:    domain.TicketPriorityLow,
		CreatedBy:   "1",
	})
	require.NoError(t, err)
	_, err = reg.Assign(ctx, created.ID, "2")
	require.NoError(t, err)

	again, err := registry.New(ctx, st, nil, zap.NewNop())
	require.NoError(t, err)

	loaded, ok := again.TicketByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusAssigned, loaded.Status)
	require.NotNil(t, loaded.AssignedTo)
	assert.Equal(t, "2", *loaded.AssignedTo)
}

func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	dispatcher := events.NewInMemoryDispatcher()

	var mu sync.Mutex
	seen := []events.Type{}
	record := func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type)
		return nil
	}
	dispatcher.Subscribe(events.TicketCreated, record)
	dispatcher.Subscribe(events.TicketAssigned, record)
	dispatcher.Subscribe(events.TicketResolved, record)
	dispatcher.Subscribe(events.TicketClosed, record)

	reg, err := registry.New(ctx, st, dispatcher, zap.NewNop())
	require.NoError(t, err)

	created, err := reg.Create(ctx, registry.CreateInput{
		Title:       "Keyboard",
		Description: "keys stuck",
		CreatedBy:   "1",
	})
	require.NoError(t, err)
	_, err = reg.Assign(ctx, created.ID, "2")
	require.NoError(t, err)
	_, err = reg.Resolve(ctx, created.ID, "cleaned")
	require.NoError(t, err)
	_, err = reg.Close(ctx, created.ID)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.Type{
		events.TicketCreated,
		events.TicketAssigned,
		events.TicketResolved,
		events.TicketClosed,
	}, seen)
}
