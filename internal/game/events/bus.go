package events

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// handlerEntry is a function handler registered for one event type.
type handlerEntry struct {
	id        string
	eventType string
	fn        EventHandler
}

// EventBus delivers events synchronously, in subscription order. Delivery
// runs without holding the lock, so handlers may publish or subscribe.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	handlers    []handlerEntry
	nextID      int
	logger      zerolog.Logger
}

var _ Bus = (*EventBus)(nil)

func NewEventBus() *EventBus {
	return &EventBus{
		logger: log.With().Str("component", "event_bus").Logger(),
	}
}

// SetLogger replaces the logger derived from the global logger.
func (eb *EventBus) SetLogger(logger zerolog.Logger) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.logger = logger.With().Str("component", "event_bus").Logger()
}

// Subscribe adds subscriber. One with the same ID is replaced and moves to
// the end of the delivery order.
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	next := make([]Subscriber, 0, len(eb.subscribers)+1)
	for _, s := range eb.subscribers {
		if s.ID() != subscriber.ID() {
			next = append(next, s)
		}
	}
	// published slices are never written in place
	eb.subscribers = append(next, subscriber)
	eb.logger.Debug().Str("subscriber_id", subscriber.ID()).Msg("Subscriber added")
}

// Unsubscribe removes a subscriber, or a function handler by the ID
// SubscribeFunc returned.
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscribers {
		if s.ID() == id {
			eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
			eb.logger.Debug().Str("subscriber_id", id).Msg("Subscriber removed")
			return
		}
	}
	for i, h := range eb.handlers {
		if h.id == id {
			eb.handlers = append(eb.handlers[:i:i], eb.handlers[i+1:]...)
			eb.logger.Debug().Str("handler_id", id).Msg("Function handler removed")
			return
		}
	}
}

// SubscribeFunc registers handler for eventType and returns its ID.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := fmt.Sprintf("%s_func_%d", eventType, eb.nextID)
	eb.handlers = append(eb.handlers, handlerEntry{id: id, eventType: eventType, fn: handler})
	return id
}

// Publish hands event to every interested subscriber, then to the function
// handlers of its type. A panicking receiver is logged and skipped.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	subscribers := eb.subscribers
	handlers := eb.handlers
	logger := eb.logger
	eb.mu.RUnlock()

	eventType := event.Type()
	logger.Debug().
		Str("event_type", eventType).
		Str("episode_id", event.EpisodeID()).
		Msg("Publishing event")

	for _, s := range subscribers {
		if s.InterestedIn(eventType) {
			deliver(logger, s.ID(), eventType, func() { s.HandleEvent(event) })
		}
	}
	for _, h := range handlers {
		if h.eventType == eventType {
			deliver(logger, h.id, eventType, func() { h.fn(event) })
		}
	}
}

func deliver(logger zerolog.Logger, receiver, eventType string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("receiver", receiver).
				Str("event_type", eventType).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	fn()
}

// SubscriberCount returns the number of subscribers.
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// HandlerCount returns the number of function handlers for eventType.
func (eb *EventBus) HandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	n := 0
	for _, h := range eb.handlers {
		if h.eventType == eventType {
			n++
		}
	}
	return n
}
