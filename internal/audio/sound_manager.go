// Package audio plays short tones for episode events.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

// Cue is a sound played for one kind of episode event.
type Cue int

const (
	CueCollision Cue = iota
	CueGoal
	CueTruncated
	CueReset
)

func (c Cue) String() string {
	switch c {
	case CueCollision:
		return "collision"
	case CueGoal:
		return "goal"
	case CueTruncated:
		return "truncated"
	case CueReset:
		return "reset"
	default:
		return fmt.Sprintf("Cue(%d)", int(c))
	}
}

type tone struct {
	freq     float64
	duration time.Duration
}

// cueTones lists the notes of each cue, played back to back.
var cueTones = map[Cue][]tone{
	CueCollision: {{freq: 120, duration: 80 * time.Millisecond}},
	CueGoal: {
		{freq: 660, duration: 90 * time.Millisecond},
		{freq: 880, duration: 90 * time.Millisecond},
		{freq: 1320, duration: 160 * time.Millisecond},
	},
	CueTruncated: {
		{freq: 440, duration: 120 * time.Millisecond},
		{freq: 220, duration: 200 * time.Millisecond},
	},
	CueReset: {{freq: 520, duration: 40 * time.Millisecond}},
}

const cueVolume = 0.3

// Player plays cues. SoundManager is the speaker-backed implementation.
type Player interface {
	Play(cue Cue)
}

// SoundManager mixes cues onto the system speaker.
type SoundManager struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
	logger      zerolog.Logger
}

func NewSoundManager(sampleRate int, logger zerolog.Logger) *SoundManager {
	return &SoundManager{
		sampleRate: beep.SampleRate(sampleRate),
		mixer:      &beep.Mixer{},
		logger:     logger.With().Str("component", "audio").Logger(),
	}
}

// Initialize opens the speaker. Callers treat a failure as "play silently".
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sm.sampleRate, sm.sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Close silences the mixer and releases the speaker.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// Play queues cue on the mixer. It is a no-op until Initialize succeeded.
func (sm *SoundManager) Play(cue Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	s, err := Stream(sm.sampleRate, cue)
	if err != nil {
		sm.logger.Warn().Err(err).Stringer("cue", cue).Msg("Failed to build cue")
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Stream renders cue as a finite streamer at sr.
func Stream(sr beep.SampleRate, cue Cue) (beep.Streamer, error) {
	tones, ok := cueTones[cue]
	if !ok {
		return nil, fmt.Errorf("unknown cue %v", cue)
	}

	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		sine, err := generators.SineTone(sr, t.freq)
		if err != nil {
			return nil, fmt.Errorf("cue %v: %w", cue, err)
		}
		parts = append(parts, beep.Take(sr.N(t.duration), sine))
	}
	return scale(beep.Seq(parts...), cueVolume), nil
}

// Length is the number of samples Stream produces for cue at sr.
func Length(sr beep.SampleRate, cue Cue) int {
	n := 0
	for _, t := range cueTones[cue] {
		n += sr.N(t.duration)
	}
	return n
}

func scale(s beep.Streamer, gain float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
		return n, ok
	})
}
