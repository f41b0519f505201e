package audio

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/events"
)

// Attach opens the speaker and subscribes its cues to bus. When the speaker
// cannot be opened the game runs silent.
func Attach(bus events.Bus, sampleRate int, logger zerolog.Logger) *SoundManager {
	sm := NewSoundManager(sampleRate, logger)
	if err := sm.Initialize(); err != nil {
		sm.logger.Warn().Err(err).Msg("Audio unavailable, continuing without sound")
	}
	bus.Subscribe(NewSubscriber("audio", sm))
	return sm
}

// Subscriber turns episode events into cues.
type Subscriber struct {
	id     string
	player Player
}

func NewSubscriber(id string, player Player) *Subscriber {
	return &Subscriber{id: id, player: player}
}

func (s *Subscriber) ID() string { return s.id }

func (s *Subscriber) InterestedIn(eventType string) bool {
	_, ok := cueFor(eventType)
	return ok
}

func (s *Subscriber) HandleEvent(event events.Event) {
	if cue, ok := cueFor(event.Type()); ok {
		s.player.Play(cue)
	}
}

func cueFor(eventType string) (Cue, bool) {
	switch eventType {
	case events.TypeWallCollision:
		return CueCollision, true
	case events.TypeTargetReached:
		return CueGoal, true
	case events.TypeEpisodeTruncated:
		return CueTruncated, true
	case events.TypeEpisodeStarted:
		return CueReset, true
	}
	return 0, false
}
