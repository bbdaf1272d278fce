package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	"github.com/helpdesk-kit/helpdesk/internal/repository/memory"
)

var t0 = time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handler(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	clock      *fakeClock
	store      *memory.Store
	dispatcher events.Dispatcher
	recorded   *recordedEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: t0}
	dispatcher := events.NewInMemoryDispatcher(nil)
	recorded := &recordedEvents{}
	for _, et := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketEscalated,
		events.EventCommentAdded,
	} {
		dispatcher.Subscribe(et, recorded.handler)
	}
	return &fixture{
		clock:      clock,
		store:      memory.NewStore(memory.WithClock(clock.Now)),
		dispatcher: dispatcher,
		recorded:   recorded,
	}
}

func (f *fixture) ticketService() *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:  f.store.Tickets(),
		CommentRepo: f.store.Comments(),
		Dispatcher:  f.dispatcher,
		Clock:       f.clock.Now,
	})
}

func (f *fixture) kbService() *KBService {
	return NewKBService(KBDependencies{
		ArticleRepo:  f.store.Articles(),
		CategoryRepo: f.store.Categories(),
	})
}

func (f *fixture) createTicket(t *testing.T, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	ticket, err := f.ticketService().CreateTicket(context.Background(), TicketCreateInput{
		Title:       "Cannot log in",
		Description: "Password reset link expired",
		Priority:    priority,
	})
	require.NoError(t, err)
	return ticket
}

// insertTicket bypasses the service so tests can seed legacy or closed rows.
func (f *fixture) insertTicket(t *testing.T, status domain.TicketStatus, due *time.Time) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:       "seeded",
		Description: "seeded",
		Status:      status,
		Priority:    domain.TicketPriorityMedium,
		SLADue:      due,
	}
	require.NoError(t, f.store.Tickets().Create(context.Background(), ticket))
	return ticket
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
