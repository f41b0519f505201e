package events

import "time"

// Event is anything published on a Bus during an episode.
type Event interface {
	Type() string
	Timestamp() time.Time
	EpisodeID() string
}

// BaseEvent carries the fields every episode event shares. Embedding it
// makes a struct an Event.
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Episode   string    `json:"episode_id"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) EpisodeID() string    { return e.Episode }

func newBase(eventType, episodeID string) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now(), Episode: episodeID}
}

// EventHandler receives events of the type it was registered for.
type EventHandler func(Event)

// Subscriber receives every event it reports interest in.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

type Publisher interface {
	Publish(Event)
}

// Bus is what the environment publishes to and the clients attach to.
// Unsubscribe takes either a subscriber ID or a SubscribeFunc handler ID.
type Bus interface {
	Publisher
	Subscribe(Subscriber)
	Unsubscribe(id string)
	SubscribeFunc(eventType string, handler EventHandler) string
}
