package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"consultancy-portal/internal/shared/logger"

	"github.com/google/uuid"
)

// Event types published by the portal
const (
	EventTypeRecordCreated  = "record.created"
	EventTypeRecordUpdated  = "record.updated"
	EventTypeRecordDeleted  = "record.deleted"
	EventTypeLeadRecorded   = "lead.recorded"
	EventTypeProfileUpdated = "student.profile_updated"
	EventTypeSettingsSaved  = "settings.saved"
)

// Event is something that happened in the portal.
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler reacts to one event. A returned error makes the bus retry it.
type Handler func(ctx context.Context, event Event) error

// EventBusInterface is what usecases publish to and subscribe on.
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler)
	SubscribeCancelable(eventType string, handler Handler) (cancel func())
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
	GetSubscriberCount(eventType string) int
}

// BusConfig controls handler retries.
type BusConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultBusConfig() BusConfig {
	return BusConfig{MaxRetries: 3, RetryDelay: 100 * time.Millisecond}
}

// EventBus delivers events in-process. Publish calls handlers one after the
// other in subscription order; PublishAndForget does the same on a goroutine.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	logger   logger.Logger
	config   BusConfig
}

type subscription struct {
	id      string
	handler Handler
}

func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.Nop()
	}
	return &EventBus{
		handlers: make(map[string][]subscription),
		logger:   log.WithComponent("eventbus"),
		config:   config,
	}
}

// Subscribe adds a handler that lives as long as the bus.
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.add(eventType, handler)
}

// SubscribeCancelable adds a handler and returns a func that removes only that
// handler. Calling it more than once is a no-op.
func (eb *EventBus) SubscribeCancelable(eventType string, handler Handler) func() {
	id := eb.add(eventType, handler)

	var once sync.Once
	return func() {
		once.Do(func() { eb.remove(eventType, id) })
	}
}

func (eb *EventBus) add(eventType string, handler Handler) string {
	id := uuid.NewString()
	eb.mu.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})
	eb.mu.Unlock()
	eb.logger.Debugf("subscriber %s added for %s", id, eventType)
	return id
}

func (eb *EventBus) remove(eventType, id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.handlers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(eb.handlers[eventType]) == 0 {
		delete(eb.handlers, eventType)
	}
	eb.logger.Debugf("subscriber %s removed for %s", id, eventType)
}

// Publish runs every handler for the event type and returns the first handler
// that still fails after its retries.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	if len(subs) == 0 {
		return nil
	}
	eb.logger.Debugf("publishing %s to %d handlers", event.Type(), len(subs))

	for _, sub := range subs {
		if err := eb.deliver(ctx, event, sub); err != nil {
			return err
		}
	}
	return nil
}

func (eb *EventBus) deliver(ctx context.Context, event Event, sub subscription) error {
	var lastErr error
	for attempt := 0; attempt <= eb.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eb.config.RetryDelay):
			}
		}
		if lastErr = sub.handler(ctx, event); lastErr == nil {
			return nil
		}
		eb.logger.Warnf("subscriber %s failed on %s (attempt %d): %v", sub.id, event.Type(), attempt+1, lastErr)
	}
	return fmt.Errorf("subscriber %s failed after %d attempts: %w", sub.id, eb.config.MaxRetries+1, lastErr)
}

// PublishAndForget publishes on a goroutine and only logs failures.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	go func() {
		if err := eb.Publish(ctx, event); err != nil {
			eb.logger.Errorf("failed to publish %s: %v", event.Type(), err)
		}
	}()
}

// GetSubscriberCount returns the number of handlers for an event type
func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

type basicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewEvent stamps data with the current time. Source names the usecase that published it.
func NewEvent(eventType string, data interface{}, source string) Event {
	return &basicEvent{eventType: eventType, data: data, timestamp: time.Now().UTC(), source: source}
}

func (e *basicEvent) Type() string         { return e.eventType }
func (e *basicEvent) Data() interface{}    { return e.data }
func (e *basicEvent) Timestamp() time.Time { return e.timestamp }
func (e *basicEvent) Source() string       { return e.source }
