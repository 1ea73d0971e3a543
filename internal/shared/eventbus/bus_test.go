package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_SubscribeCancelable(t *testing.T) {
	bus := NewEventBus(nil)
	var first, second int
	cancel := bus.SubscribeCancelable(EventTypeProfileUpdated, func(ctx context.Context, event Event) error {
		first++
		return nil
	})
	bus.Subscribe(EventTypeProfileUpdated, func(ctx context.Context, event Event) error {
		second++
		return nil
	})

	ev := NewEvent(EventTypeProfileUpdated, "student-1", "profile")
	assert.NoError(t, bus.Publish(context.Background(), ev))
	cancel()
	cancel()
	assert.NoError(t, bus.Publish(context.Background(), ev))

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 1, bus.GetSubscriberCount(EventTypeProfileUpdated))
}

func TestEventBus_CancelLastSubscriberClearsType(t *testing.T) {
	bus := NewEventBus(nil)
	cancel := bus.SubscribeCancelable(EventTypeSettingsSaved, func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount(EventTypeSettingsSaved))
	cancel()
	assert.Equal(t, 0, bus.GetSubscriberCount(EventTypeSettingsSaved))
	assert.NoError(t, bus.Publish(context.Background(), NewEvent(EventTypeSettingsSaved, nil, "settings")))
}

func TestEventBus_PublishCarriesEvent(t *testing.T) {
	bus := NewEventBus(nil)
	var got Event
	bus.Subscribe(EventTypeRecordCreated, func(ctx context.Context, event Event) error {
		got = event
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewEvent(EventTypeRecordCreated, "colleges/abc", "admin")))
	require.NotNil(t, got)
	assert.Equal(t, EventTypeRecordCreated, got.Type())
	assert.Equal(t, "colleges/abc", got.Data())
	assert.Equal(t, "admin", got.Source())
	assert.WithinDuration(t, time.Now(), got.Timestamp(), time.Second)
}

func TestEventBus_RetriesFailingHandler(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe(EventTypeLeadRecorded, func(ctx context.Context, event Event) error {
		attempts++
		if attempts < 3 {
			return assert.AnError
		}
		return nil
	})
	assert.NoError(t, bus.Publish(context.Background(), NewEvent(EventTypeLeadRecorded, nil, "leads")))
	assert.Equal(t, 3, attempts)
}

func TestEventBus_GivesUpAfterRetries(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe(EventTypeRecordDeleted, func(ctx context.Context, event Event) error {
		attempts++
		return assert.AnError
	})

	err := bus.Publish(context.Background(), NewEvent(EventTypeRecordDeleted, nil, "admin"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, attempts)
}

func TestEventBus_RetryStopsOnCanceledContext(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 5, RetryDelay: time.Hour})
	bus.Subscribe(EventTypeRecordUpdated, func(ctx context.Context, event Event) error { return assert.AnError })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bus.Publish(ctx, NewEvent(EventTypeRecordUpdated, nil, "admin"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBus(nil)
	done := make(chan struct{})
	bus.Subscribe(EventTypeLeadRecorded, func(ctx context.Context, event Event) error {
		close(done)
		return nil
	})
	bus.PublishAndForget(context.Background(), NewEvent(EventTypeLeadRecorded, nil, "leads"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for PublishAndForget")
	}
}
