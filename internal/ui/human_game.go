package ui

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// apply handles one player command. Quitting returns ebiten.Termination.
func (g *Game) apply(cmd agent.Command) error {
	switch cmd.Kind {
	case agent.CommandQuit:
		return ebiten.Termination

	case agent.CommandMove:
		if g.session.Policy() != nil {
			g.showMessage("Agent in control - press P to take over", 60)
			return nil
		}
		result, err := g.session.Move(cmd.Action)
		if errors.Is(err, core.ErrEpisodeDone) {
			g.showMessage("Episode over - press R for a new maze", 90)
			return nil
		}
		if err != nil {
			return err
		}
		g.afterStep(result)

	case agent.CommandReset:
		if err := g.session.Reset(nil); err != nil {
			g.logger.Error().Err(err).Msg("Reset failed")
			g.showMessage(err.Error(), 120)
			return nil
		}
		g.stepTimer = 0

	case agent.CommandToggleAgent:
		switch {
		case g.opts.Autopilot == nil:
			g.showMessage("No agent configured", 60)
		case g.session.Policy() == nil:
			g.session.SetPolicy(g.opts.Autopilot)
			g.stepTimer = 0
		default:
			g.session.SetPolicy(nil)
		}
	}
	return nil
}

// afterStep flashes the wall the player bumped into.
func (g *Game) afterStep(result game.StepResult) {
	if result.Info.Outcome != game.OutcomeCollision {
		return
	}
	if wall, ok := g.session.Bumped(); ok {
		g.board.Flash(wall)
	}
}

func (g *Game) showMessage(msg string, frames int) {
	g.statusMessage = msg
	g.messageTimer = frames
}
