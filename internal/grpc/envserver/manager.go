package envserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
)

var (
	ErrEnvNotFound = errors.New("environment not found")
	ErrAtCapacity  = errors.New("server at capacity")
	ErrBadRequest  = errors.New("malformed request")
)

// ManagerConfig holds the limits of an EnvManager.
type ManagerConfig struct {
	// MaxEnvs caps concurrently open environments; 0 means unlimited.
	MaxEnvs int
	// MaxRows and MaxCols bound the grid a client may request; 0 means
	// unlimited.
	MaxRows, MaxCols int
	// IdleTimeout closes environments untouched for this long; 0 disables it.
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
	// Defaults is the template every CreateEnv request starts from. Its
	// EventBus is ignored; each environment gets its own.
	Defaults game.EnvConfig
}

// EnvInstance is one hosted environment. All access to the environment goes
// through Do, which serialises callers.
type EnvInstance struct {
	id        string
	createdAt time.Time

	mu           sync.Mutex
	env          *game.Env
	lastActivity time.Time
	replies      *IdempotencyCache
}

func (i *EnvInstance) ID() string { return i.id }

func (i *EnvInstance) CreatedAt() time.Time { return i.createdAt }

func (i *EnvInstance) LastActivity() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastActivity
}

// Do runs fn with exclusive access to the environment and marks the
// instance active.
func (i *EnvInstance) Do(fn func(env *game.Env) error) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastActivity = time.Now()
	return fn(i.env)
}

// Status snapshots the environment for GetEnv.
func (i *EnvInstance) Status() EnvStatus {
	var s EnvStatus
	_ = i.Do(func(env *game.Env) error {
		stats := env.Stats()
		s = EnvStatus{
			EnvID:        i.id,
			EpisodeID:    env.EpisodeID(),
			Seed:         env.Seed(),
			Phase:        env.Phase().String(),
			Steps:        stats.Steps,
			Return:       stats.Return,
			Position:     env.Position(),
			LegalActions: env.LegalActionMask(),
			Render:       game.Render(env.Observation(), false),
		}
		return nil
	})
	return s
}

// EnvManager owns every environment hosted by the server.
type EnvManager struct {
	mu       sync.RWMutex
	envs     map[string]*EnvInstance
	creating int

	config ManagerConfig
	logger zerolog.Logger
}

func NewEnvManager(config ManagerConfig, logger zerolog.Logger) *EnvManager {
	return &EnvManager{
		envs:   make(map[string]*EnvInstance),
		config: config,
		logger: logger.With().Str("component", "env_manager").Logger(),
	}
}

// Create builds a new environment from the defaults overlaid with opts.
// Maze generation happens outside the manager lock; a slot is reserved
// first so concurrent creates cannot overshoot MaxEnvs.
func (m *EnvManager) Create(ctx context.Context, opts CreateOptions) (*EnvInstance, error) {
	m.mu.RLock()
	defaults := m.config.Defaults
	m.mu.RUnlock()

	cfg := opts.apply(defaults)
	if err := m.checkSize(cfg.Maze.Rows, cfg.Maze.Cols); err != nil {
		return nil, err
	}

	if err := m.reserve(); err != nil {
		return nil, err
	}
	defer m.release()

	cfg.EventBus = nil

	env, err := game.NewEnv(ctx, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inst := &EnvInstance{
		id:           uuid.New().String(),
		createdAt:    now,
		env:          env,
		lastActivity: now,
		replies:      NewIdempotencyCache(m.config.IdleTimeout),
	}

	m.mu.Lock()
	m.envs[inst.id] = inst
	active := len(m.envs)
	m.mu.Unlock()

	m.logger.Info().
		Str("env_id", inst.id).
		Int64("seed", env.Seed()).
		Int("rows", env.Maze().Rows()).
		Int("cols", env.Maze().Cols()).
		Int("active_envs", active).
		Msg("Created environment")
	return inst, nil
}

// SetDefaults replaces the template of later CreateEnv requests. Open
// environments keep their configuration.
func (m *EnvManager) SetDefaults(defaults game.EnvConfig) {
	m.mu.Lock()
	m.config.Defaults = defaults
	m.mu.Unlock()
	m.logger.Info().
		Int("rows", defaults.Maze.Rows).
		Int("cols", defaults.Maze.Cols).
		Msg("Updated environment defaults")
}

func (m *EnvManager) checkSize(rows, cols int) error {
	if (m.config.MaxRows > 0 && rows > m.config.MaxRows) || (m.config.MaxCols > 0 && cols > m.config.MaxCols) {
		m.logger.Warn().
			Int("rows", rows).
			Int("cols", cols).
			Int("max_rows", m.config.MaxRows).
			Int("max_cols", m.config.MaxCols).
			Msg("Rejecting oversized environment")
		return fmt.Errorf("%w: grid %dx%d exceeds the %dx%d limit", ErrBadRequest, rows, cols, m.config.MaxRows, m.config.MaxCols)
	}
	return nil
}

func (m *EnvManager) reserve() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit := m.config.MaxEnvs; limit > 0 && len(m.envs)+m.creating >= limit {
		m.logger.Warn().
			Int("active_envs", len(m.envs)).
			Int("max_envs", limit).
			Msg("Rejecting environment creation - server at capacity")
		return fmt.Errorf("%w: %d/%d environments active", ErrAtCapacity, len(m.envs), limit)
	}
	m.creating++
	return nil
}

func (m *EnvManager) release() {
	m.mu.Lock()
	m.creating--
	m.mu.Unlock()
}

func (m *EnvManager) Get(id string) (*EnvInstance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.envs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEnvNotFound, id)
	}
	return inst, nil
}

// Close removes an environment.
func (m *EnvManager) Close(id string) error {
	m.mu.Lock()
	inst, ok := m.envs[id]
	delete(m.envs, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrEnvNotFound, id)
	}
	m.logger.Info().Str("env_id", id).Dur("age", time.Since(inst.CreatedAt())).Msg("Closed environment")
	return nil
}

func (m *EnvManager) ActiveEnvs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.envs)
}

// CleanupIdle closes environments idle since before now-IdleTimeout and
// returns their IDs.
func (m *EnvManager) CleanupIdle(now time.Time) []string {
	if m.config.IdleTimeout <= 0 {
		return nil
	}
	cutoff := now.Add(-m.config.IdleTimeout)

	m.mu.RLock()
	var stale []string
	for id, inst := range m.envs {
		if inst.LastActivity().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.Close(id); err == nil {
			m.logger.Info().Str("env_id", id).Msg("Closed idle environment")
		}
	}
	return stale
}

// Run cleans up idle environments every CleanupInterval until ctx is done.
func (m *EnvManager) Run(ctx context.Context) {
	interval := m.config.CleanupInterval
	if interval <= 0 || m.config.IdleTimeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if closed := m.CleanupIdle(now); len(closed) > 0 {
				m.logger.Debug().Int("closed", len(closed)).Int("active_envs", m.ActiveEnvs()).Msg("Idle cleanup finished")
			}
		case <-ctx.Done():
			return
		}
	}
}
