package events

import "time"

// TopicAll subscribes to every published event.
const TopicAll = "*"

// Runtime event topics published by the console and router.
const (
	TopicLogEvent        = "log_event"
	TopicOrderPlaced     = "order_placed"
	TopicOrderRejected   = "order_rejected"
	TopicPositionClosed  = "position_closed"
	TopicRuntimeSnapshot = "runtime_snapshot"
)

// Event is an ephemeral runtime notification. Events are never persisted and
// are consumed synchronously by subscribers.
type Event struct {
	Type      string
	Payload   map[string]interface{}
	Timestamp time.Time
}

// Handler consumes one event.
type Handler func(Event)

// Bus is a minimal in-process pub/sub used for runtime orchestration. The
// console owns it and publishes from the single decision loop only, so no
// locking is needed.
type Bus struct {
	subscribers map[string][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic. TopicAll receives everything.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish delivers the payload to topic subscribers, then wildcard
// subscribers, synchronously and in registration order.
func (b *Bus) Publish(topic string, payload map[string]interface{}) {
	event := Event{
		Type:      topic,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	for _, handler := range b.subscribers[topic] {
		handler(event)
	}
	if topic == TopicAll {
		return
	}
	for _, handler := range b.subscribers[TopicAll] {
		handler(event)
	}
}
