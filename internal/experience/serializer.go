package experience

import (
	"fmt"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/rules"
)

// Channel indices for the one-hot tensor representation. Channels follow
// the cell code order.
const (
	ChannelWall   = int(core.CellWall)
	ChannelPath   = int(core.CellPath)
	ChannelTarget = int(core.CellTarget)
	ChannelStart  = int(core.CellStart)
	ChannelPlayer = int(core.CellPlayer)
	NumChannels   = int(core.NumCellCodes)
)

// Serializer converts observations to tensor representations
type Serializer struct {
	legalMoves *rules.LegalMoveCalculator
}

// NewSerializer creates a new observation serializer
func NewSerializer() *Serializer {
	return &Serializer{legalMoves: rules.NewLegalMoveCalculator()}
}

// ObservationToTensor one-hot encodes obs as a channel-major
// [NumChannels][rows][cols] tensor.
func (s *Serializer) ObservationToTensor(obs *core.Grid) []float32 {
	rows, cols := obs.Rows(), obs.Cols()
	tensor := make([]float32, NumChannels*rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			code := obs.At(core.NewCoordinate(r, c))
			if !code.IsValid() {
				continue
			}
			tensor[s.getChannelIndex(int(code), r, c, rows, cols)] = 1.0
		}
	}
	return tensor
}

// GenerateActionMask marks the actions that would not collide from the
// player cell of obs.
func (s *Serializer) GenerateActionMask(obs *core.Grid) []bool {
	return s.legalMoves.GetObservationActionMask(obs)
}

func (s *Serializer) ActionToIndex(action core.Action) int {
	return int(action)
}

func (s *Serializer) IndexToAction(index int) (core.Action, error) {
	action := core.Action(index)
	if !action.IsValid() {
		return 0, fmt.Errorf("index %d: %w", index, core.ErrInvalidAction)
	}
	return action, nil
}

// getChannelIndex calculates the flat index for a channel and position
func (s *Serializer) getChannelIndex(channel, row, col, rows, cols int) int {
	return channel*rows*cols + row*cols + col
}
