package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []string
	d.Subscribe(EventTicketEscalated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketEscalated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	event := NewEvent(EventTicketEscalated, "t-1", nil, time.Now(), TicketEscalatedPayload{})
	require.NoError(t, d.Publish(context.Background(), event))
	assert.Equal(t, []string{"first:t-1", "second:t-1"}, got)
	assert.NotEmpty(t, event.ID)
}
