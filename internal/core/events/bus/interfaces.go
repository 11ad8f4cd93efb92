package bus

import "time"

// EventBus is an in-process pub/sub bus used to fan gameplay events (goals,
// kickoffs, resets, kick contacts) out to the transport and logging layers.
//
// Delivery is synchronous: Publish calls handlers in the caller goroutine, so
// handlers invoked from the simulation loop must not block. Handler errors are
// joined and returned from Publish.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type().
	Publish(event Event) error
	// PublishBatch publishes events in order and aggregates handler errors.
	PublishBatch(events ...Event) error
	// Subscribe registers a handler for one event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeFiltered registers a handler that only sees events accepted by
	// every filter.
	SubscribeFiltered(eventType string, handler EventHandler, filters ...EventFilter) (Subscription, error)
	// SubscribeAll registers a handler that receives every event type.
	SubscribeAll(handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is accepted.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns counters; they only move while an observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	ID() string
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
	// EventFilter decides whether an event reaches a subscriber.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
