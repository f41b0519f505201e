package agent

import "github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"

// CommandKind is what a key press asks an interactive client to do.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandMove
	CommandReset
	CommandToggleAgent
	CommandQuit
)

// Command is a decoded key press. Action is set for CommandMove only.
type Command struct {
	Kind   CommandKind
	Action core.Action
}

func Move(a core.Action) Command { return Command{Kind: CommandMove, Action: a} }

// RuneCommand decodes the letter keys both clients share: WASD and hjkl
// move, r resets, p toggles the agent and q quits. Letters are case
// insensitive.
func RuneCommand(r rune) Command {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	switch r {
	case 'w', 'k':
		return Move(core.ActionUp)
	case 'd', 'l':
		return Move(core.ActionRight)
	case 's', 'j':
		return Move(core.ActionDown)
	case 'a', 'h':
		return Move(core.ActionLeft)
	case 'r':
		return Command{Kind: CommandReset}
	case 'p':
		return Command{Kind: CommandToggleAgent}
	case 'q':
		return Command{Kind: CommandQuit}
	}
	return Command{}
}
