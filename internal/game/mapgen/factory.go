package mapgen

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

// Factory turns episode seeds into mazes. One seed always yields the same maze.
type Factory struct {
	config Config
	logger zerolog.Logger
}

// NewFactory validates config eagerly so that misconfiguration surfaces at
// construction rather than on the first reset.
func NewFactory(config Config, logger zerolog.Logger) (*Factory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.RoomTypes = append([]core.RoomType(nil), config.RoomTypes...)
	return &Factory{config: config, logger: logger}, nil
}

func (f *Factory) Config() Config { return f.config }

// CreateMaze generates the maze for seed from a fresh random stream.
func (f *Factory) CreateMaze(seed int64) (*core.Maze, error) {
	gen := NewGenerator(f.config, rand.New(rand.NewSource(seed)))
	gen.SetLogger(f.logger.With().Int64("seed", seed).Logger())
	return gen.Generate()
}
