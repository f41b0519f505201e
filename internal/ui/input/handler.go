package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

var letterKeys = map[ebiten.Key]rune{
	ebiten.KeyW: 'w', ebiten.KeyA: 'a', ebiten.KeyS: 's', ebiten.KeyD: 'd',
	ebiten.KeyH: 'h', ebiten.KeyJ: 'j', ebiten.KeyK: 'k', ebiten.KeyL: 'l',
	ebiten.KeyR: 'r', ebiten.KeyP: 'p', ebiten.KeyQ: 'q',
}

// Handler collects the commands issued since the last frame.
type Handler struct {
	// cellAt maps a cursor position onto the grid
	cellAt func(x, y int) core.Coordinate

	keys     []ebiten.Key
	commands []agent.Command
	hover    core.Coordinate
	player   core.Coordinate
}

func NewHandler(cellAt func(x, y int) core.Coordinate) *Handler {
	return &Handler{cellAt: cellAt}
}

// SetPlayer tells the handler where the player stands, so clicks on a
// neighbouring cell become moves.
func (h *Handler) SetPlayer(c core.Coordinate) { h.player = c }

func (h *Handler) Update() {
	h.hover = h.cellAt(CursorPosition())

	h.keys = inpututil.AppendJustPressedKeys(h.keys[:0])
	for _, k := range h.keys {
		if cmd := KeyCommand(k); cmd.Kind != agent.CommandNone {
			h.commands = append(h.commands, cmd)
		}
	}

	if IsLeftClickJustPressed() {
		if cmd := ClickCommand(h.player, h.hover); cmd.Kind != agent.CommandNone {
			h.commands = append(h.commands, cmd)
		}
	}
}

// Commands returns and clears the pending commands.
func (h *Handler) Commands() []agent.Command {
	cmds := h.commands
	h.commands = nil
	return cmds
}

func (h *Handler) Hover() core.Coordinate { return h.hover }

// KeyCommand decodes a key. Arrows move; Escape quits; letters follow
// agent.RuneCommand.
func KeyCommand(k ebiten.Key) agent.Command {
	switch k {
	case ebiten.KeyArrowUp:
		return agent.Move(core.ActionUp)
	case ebiten.KeyArrowRight:
		return agent.Move(core.ActionRight)
	case ebiten.KeyArrowDown:
		return agent.Move(core.ActionDown)
	case ebiten.KeyArrowLeft:
		return agent.Move(core.ActionLeft)
	case ebiten.KeyEscape:
		return agent.Command{Kind: agent.CommandQuit}
	}
	if r, ok := letterKeys[k]; ok {
		return agent.RuneCommand(r)
	}
	return agent.Command{}
}
