package experience

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

var _ game.ExperienceCollector = (*Collector)(nil)

// DefaultDiscount is the gamma used for ReturnToGo unless SetDiscount changes it.
const DefaultDiscount = 0.99

// Collector turns environment steps into transitions. Every transition goes
// to the buffer; completed episodes are also handed to the persistence layer.
type Collector struct {
	mu          sync.Mutex
	buffer      *Buffer
	persistence PersistenceLayer
	serializer  *Serializer
	pending     map[string][]*Transition // by episode ID
	episodes    []game.EpisodeStats
	discount    float64
	logger      zerolog.Logger
}

// NewCollector creates a collector. A nil persistence layer disables
// persistence.
func NewCollector(buffer *Buffer, persistence PersistenceLayer, logger zerolog.Logger) *Collector {
	if persistence == nil {
		persistence = &NullPersistence{}
	}
	return &Collector{
		buffer:      buffer,
		persistence: persistence,
		serializer:  NewSerializer(),
		pending:     make(map[string][]*Transition),
		discount:    DefaultDiscount,
		logger:      logger.With().Str("component", "experience_collector").Logger(),
	}
}

// SetDiscount sets the gamma of ReturnToGo.
func (c *Collector) SetDiscount(gamma float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discount = gamma
}

// OnStep records the transition taken from prevObs
func (c *Collector) OnStep(episodeID string, prevObs *core.Grid, action core.Action, result game.StepResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &Transition{
		ID:              uuid.New().String(),
		EpisodeID:       episodeID,
		Step:            result.Info.Steps,
		Rows:            prevObs.Rows(),
		Cols:            prevObs.Cols(),
		Observation:     prevObs.Flat(),
		Action:          c.serializer.ActionToIndex(action),
		Reward:          result.Reward,
		NextObservation: result.Observation.Flat(),
		Done:            result.Done,
		Truncated:       result.Truncated,
		ActionMask:      c.serializer.GenerateActionMask(prevObs),
		CollectedAt:     time.Now(),
	}

	if err := c.buffer.Add(t); err != nil {
		c.logger.Warn().Err(err).Str("transition_id", t.ID).Msg("Dropping transition")
	}
	c.pending[episodeID] = append(c.pending[episodeID], t)

	c.logger.Debug().
		Str("transition_id", t.ID).
		Int("step", t.Step).
		Float64("reward", t.Reward).
		Bool("done", t.Done).
		Msg("Collected transition")
}

// OnEpisodeEnd persists the finished episode
func (c *Collector) OnEpisodeEnd(stats game.EpisodeStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.pending[stats.EpisodeID])
	if err := c.flushLocked(stats.EpisodeID); err != nil {
		c.logger.Error().Err(err).Str("episode_id", stats.EpisodeID).Msg("Failed to persist episode")
	}

	c.logger.Info().
		Str("episode_id", stats.EpisodeID).
		Int("transitions", n).
		Bool("solved", stats.Solved).
		Float64("return", stats.Return).
		Msg("Episode ended, finalizing experience collection")

	c.episodes = append(c.episodes, stats)
}

// OnEpisodeAbandoned persists what was collected for an episode that was
// reset before it ended, so pending transitions do not pile up.
func (c *Collector) OnEpisodeAbandoned(episodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.pending[episodeID])
	if err := c.flushLocked(episodeID); err != nil {
		c.logger.Error().Err(err).Str("episode_id", episodeID).Msg("Failed to persist abandoned episode")
	}
	c.logger.Debug().Str("episode_id", episodeID).Int("transitions", n).Msg("Flushed abandoned episode")
}

// flushLocked fills in returns, persists and forgets the pending
// transitions of one episode.
func (c *Collector) flushLocked(episodeID string) error {
	transitions, ok := c.pending[episodeID]
	if !ok {
		return nil
	}
	delete(c.pending, episodeID)
	c.fillReturns(transitions)
	return c.persistence.Write(context.Background(), transitions)
}

// Episodes returns the stats of every completed episode
func (c *Collector) Episodes() []game.EpisodeStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]game.EpisodeStats, len(c.episodes))
	copy(result, c.episodes)
	return result
}

func (c *Collector) Buffer() *Buffer { return c.buffer }

func (c *Collector) fillReturns(transitions []*Transition) {
	for i, g := range DiscountedReturns(transitions, c.discount) {
		transitions[i].ReturnToGo = g
	}
}

// Close flushes unfinished episodes and closes the persistence layer.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for episodeID := range c.pending {
		if err := c.flushLocked(episodeID); err != nil {
			c.logger.Error().Err(err).Str("episode_id", episodeID).Msg("Failed to persist unfinished episode")
		}
	}
	return c.persistence.Close()
}
