package agent

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// ErrNoPolicy is returned by Session.Advance when nobody drives the agent.
var ErrNoPolicy = errors.New("session has no policy")

// Session is the interactive loop shared by the terminal and graphical
// clients: a human moves with Move, a policy with Advance. It is not safe
// for concurrent use; both clients drive it from a single goroutine.
type Session struct {
	env    *game.Env
	policy Policy
	obs    *core.Grid

	last       game.StepResult
	lastAction core.Action
	hasLast    bool
	episodes   int
	solved     int
}

// NewSession wraps env. A nil policy means manual control only.
func NewSession(env *game.Env, policy Policy) *Session {
	return &Session{env: env, policy: policy, obs: env.Observation(), episodes: 1}
}

func (s *Session) Env() *game.Env           { return s.env }
func (s *Session) Observation() *core.Grid  { return s.obs }
func (s *Session) Policy() Policy           { return s.policy }
func (s *Session) SetPolicy(policy Policy)  { s.policy = policy }
func (s *Session) Episodes() int            { return s.episodes }
func (s *Session) Solved() int              { return s.solved }
func (s *Session) Ended() bool              { return s.env.IsDone() }
func (s *Session) Stats() game.EpisodeStats { return s.env.Stats() }

// Last returns the most recent step of the current episode.
func (s *Session) Last() (game.StepResult, bool) { return s.last, s.hasLast }

// Bumped returns the wall cell the last step walked into, if it collided.
func (s *Session) Bumped() (core.Coordinate, bool) {
	if !s.hasLast || s.last.Info.Outcome != game.OutcomeCollision {
		return core.Coordinate{}, false
	}
	return s.last.Info.Position.Move(s.lastAction), true
}

// Move applies a player action.
func (s *Session) Move(action core.Action) (game.StepResult, error) {
	result, err := s.env.Step(action)
	if err != nil {
		return game.StepResult{}, err
	}
	s.record(action, result)
	return result, nil
}

// Advance lets the policy take one step. Once an episode has ended the next
// call starts a new one instead of stepping.
func (s *Session) Advance() (game.StepResult, bool, error) {
	if s.policy == nil {
		return game.StepResult{}, false, ErrNoPolicy
	}
	if s.Ended() {
		return game.StepResult{}, false, s.Reset(nil)
	}

	action, err := s.policy.Act(s.obs)
	if err != nil {
		return game.StepResult{}, false, fmt.Errorf("policy %s: %w", s.policy.Name(), err)
	}
	result, err := s.Move(action)
	if err != nil {
		return game.StepResult{}, false, err
	}
	return result, true, nil
}

// Reset starts a new episode. A nil seed advances the previous one.
func (s *Session) Reset(seed *int64) error {
	obs, err := s.env.Reset(seed)
	if err != nil {
		return err
	}
	s.obs = obs
	s.last, s.hasLast = game.StepResult{}, false
	s.episodes++
	return nil
}

func (s *Session) record(action core.Action, result game.StepResult) {
	s.obs = result.Observation
	s.last, s.lastAction, s.hasLast = result, action, true
	if result.Done {
		s.solved++
	}
}

// Status is the one-line HUD shared by the clients.
func (s *Session) Status() string {
	stats := s.env.Stats()
	line := fmt.Sprintf("episode %d  seed %d  steps %d  return %.2f  solved %d/%d",
		s.episodes, stats.Seed, stats.Steps, stats.Return, s.solved, s.episodes)
	if s.policy != nil {
		line += "  agent " + s.policy.Name()
	}
	return line
}

// Message describes the last step, or how the episode ended.
func (s *Session) Message() string {
	if !s.hasLast {
		return "ready"
	}
	switch {
	case s.last.Done:
		return fmt.Sprintf("target reached in %d steps", s.last.Info.Steps)
	case s.last.Truncated:
		return fmt.Sprintf("truncated after %d steps", s.last.Info.Steps)
	case s.last.Info.Message != "":
		return s.last.Info.Message
	default:
		return s.last.Info.Outcome.String()
	}
}
