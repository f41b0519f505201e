package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

func IsLeftClickJustPressed() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}

func CursorPosition() (int, int) {
	return ebiten.CursorPosition()
}

// ClickCommand turns a click on a cell next to the player into a move.
// Clicks anywhere else do nothing.
func ClickCommand(player, clicked core.Coordinate) agent.Command {
	if a, ok := player.ActionTo(clicked); ok {
		return agent.Move(a)
	}
	return agent.Command{}
}
