package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	var got []Event
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		t.Fatal("unexpected delivery")
		return nil
	})

	event := New(EventLoginSucceeded, "alice", LoginPayload{Role: "USER"})
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Subject)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDispatcherIsolatesFailingHandlers(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventAccessDenied, func(context.Context, Event) error { return errors.New("sink down") })
	d.Subscribe(EventAccessDenied, func(context.Context, Event) error { panic("bad handler") })
	d.Subscribe(EventAccessDenied, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), New(EventAccessDenied, "bob", nil))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, 1, calls)
}
