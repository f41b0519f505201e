package core

// Player tracks the agent's position. It is a pure movement calculator:
// bounds and walls are checked by the environment.
type Player struct {
	Position Coordinate
}

func NewPlayer(start Coordinate) *Player {
	return &Player{Position: start}
}

// PotentialNextPosition returns where the action would take the player.
func (p *Player) PotentialNextPosition(action Action) Coordinate {
	return p.Position.Move(action)
}

func (p *Player) MoveTo(c Coordinate) {
	p.Position = c
}
