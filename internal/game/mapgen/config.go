package mapgen

import (
	"fmt"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/game/core"
)

const (
	DefaultMaxPlacementAttempts  = 200
	DefaultMaxGenerationAttempts = 20

	minGridSide = 3
	minRoomSide = 3
)

// Config holds configuration for maze generation
type Config struct {
	Rows int `mapstructure:"rows"`
	Cols int `mapstructure:"cols"`

	RoomCount           IntParam   `mapstructure:"room_count"`
	GlobalRoomRatio     FloatParam `mapstructure:"global_room_ratio"`
	AccessPointsPerRoom IntParam   `mapstructure:"access_points_per_room"`
	RoomRatio           FloatParam `mapstructure:"room_ratio"`
	RoomTypes           []core.RoomType

	MaxPlacementAttempts  int `mapstructure:"max_placement_attempts"`
	MaxGenerationAttempts int `mapstructure:"max_generation_attempts"`
}

// DefaultConfig returns the standard ranges, with the room count capped to
// RoomBudget and the access points to what a room on the grid can offer.
func DefaultConfig(rows, cols int) Config {
	budget := RoomBudget(rows, cols)
	return Config{
		Rows:                  rows,
		Cols:                  cols,
		RoomCount:             IntRange(min(1, budget), min(8, budget)),
		GlobalRoomRatio:       FloatRange(0.1, 0.8),
		AccessPointsPerRoom:   IntRange(1, accessLimit(rows, cols, 4)),
		RoomRatio:             FloatRange(0.5, 1.5),
		RoomTypes:             core.AllRoomTypes(),
		MaxPlacementAttempts:  DefaultMaxPlacementAttempts,
		MaxGenerationAttempts: DefaultMaxGenerationAttempts,
	}
}

// WithSize returns a copy sized rows x cols. A room count maximum above the
// new RoomBudget, or an access point maximum above MaxAccessPoints, is
// lowered as long as the minimum still fits.
func (c Config) WithSize(rows, cols int) Config {
	c.Rows, c.Cols = rows, cols
	if budget := RoomBudget(rows, cols); c.RoomCount.Max > budget && c.RoomCount.Min <= budget {
		c.RoomCount.Max = budget
	}
	if limit := accessLimit(rows, cols, c.AccessPointsPerRoom.Max); c.AccessPointsPerRoom.Min <= limit {
		c.AccessPointsPerRoom.Max = limit
	}
	c.RoomTypes = append([]core.RoomType(nil), c.RoomTypes...)
	return c
}

// latticeSize is the number of odd indices strictly inside [0, n-1].
func latticeSize(n int) int {
	if n < minGridSide {
		return 0
	}
	return (n - 1) / 2
}

// lastOdd is the largest odd index that is not on the border.
func lastOdd(n int) int {
	return 2*latticeSize(n) - 1
}

// RoomCapacity is the largest room count a rows x cols grid can hold when
// every room is at least 3x3, rooms keep one corridor between their rings,
// and the corridor cells outside every room stay in one piece.
func RoomCapacity(rows, cols int) int {
	lr, lc := latticeSize(rows), latticeSize(cols)
	if lr < 2 || lc < 2 || (lr < 3 && lc < 3) {
		return 0
	}
	if lr == 2 || lc == 2 {
		// Every room spans the short side, so only a room at either end
		// leaves the corridor network connected.
		return min((max(lr, lc)+1)/3, 2)
	}
	return ((lr + 1) / 3) * ((lc + 1) / 3)
}

// RoomBudget is the room count random placement reaches reliably: half the
// capacity, and at least one room when any fits.
func RoomBudget(rows, cols int) int {
	capacity := RoomCapacity(rows, cols)
	if capacity == 0 {
		return 0
	}
	return max(1, capacity/2)
}

// MaxAccessPoints is the most access candidates a single room placed on a
// rows x cols grid can offer, or 0 when no room fits.
func MaxAccessPoints(rows, cols int) int {
	if RoomCapacity(rows, cols) == 0 {
		return 0
	}
	lr, lc := latticeSize(rows), latticeSize(cols)

	best := 0
	for hl := lr - 2; hl <= lr; hl++ {
		for wl := lc - 2; wl <= lc; wl++ {
			if hl < 2 || wl < 2 {
				continue
			}
			rs, cs := openSides(hl, lr), openSides(wl, lc)
			// A room spanning one axis must sit at an end of the other.
			if rs == 0 {
				cs = min(cs, 1)
			}
			if cs == 0 {
				rs = min(rs, 1)
			}
			best = max(best, rs*wl+cs*hl)
		}
	}
	return best
}

// openSides counts the sides of a span of n lattice cells that can face a
// corridor along an axis of total lattice cells.
func openSides(n, total int) int {
	switch {
	case n <= total-2:
		return 2
	case n == total-1:
		return 1
	default:
		return 0
	}
}

// accessLimit lowers want to MaxAccessPoints when a room fits at all.
func accessLimit(rows, cols, want int) int {
	if m := MaxAccessPoints(rows, cols); m > 0 {
		return min(want, m)
	}
	return want
}

// Validate checks that the configuration can produce a maze.
func (c Config) Validate() error {
	if c.Rows < minGridSide || c.Cols < minGridSide {
		return fmt.Errorf("%w: grid %dx%d is smaller than %dx%d", ErrInvalidConfig, c.Rows, c.Cols, minGridSide, minGridSide)
	}
	if latticeSize(c.Rows)*latticeSize(c.Cols) < 2 {
		return fmt.Errorf("%w: grid %dx%d has room for a single corridor cell", ErrInvalidConfig, c.Rows, c.Cols)
	}

	if err := c.RoomCount.validate("room_count"); err != nil {
		return err
	}
	if c.RoomCount.Min < 0 {
		return fmt.Errorf("%w: room_count must be non-negative", ErrInvalidConfig)
	}
	if capacity := RoomCapacity(c.Rows, c.Cols); c.RoomCount.Min > capacity {
		return fmt.Errorf("%w: room_count minimum %d exceeds capacity %d of a %dx%d grid",
			ErrInvalidConfig, c.RoomCount.Min, capacity, c.Rows, c.Cols)
	}

	if err := c.GlobalRoomRatio.validate("global_room_ratio"); err != nil {
		return err
	}
	if c.GlobalRoomRatio.Min < 0 || c.GlobalRoomRatio.Max > 1 {
		return fmt.Errorf("%w: global_room_ratio must lie in [0,1], got %s", ErrInvalidConfig, c.GlobalRoomRatio)
	}

	if err := c.AccessPointsPerRoom.validate("access_points_per_room"); err != nil {
		return err
	}
	if c.AccessPointsPerRoom.Min < 1 {
		return fmt.Errorf("%w: access_points_per_room must be at least 1", ErrInvalidConfig)
	}
	if m := MaxAccessPoints(c.Rows, c.Cols); c.RoomCount.Max > 0 && m > 0 && c.AccessPointsPerRoom.Min > m {
		return fmt.Errorf("%w: access_points_per_room minimum %d exceeds the %d candidates a room on a %dx%d grid can offer",
			ErrInvalidConfig, c.AccessPointsPerRoom.Min, m, c.Rows, c.Cols)
	}

	if err := c.RoomRatio.validate("room_ratio"); err != nil {
		return err
	}
	if c.RoomRatio.Min <= 0 {
		return fmt.Errorf("%w: room_ratio must be positive", ErrInvalidConfig)
	}

	if len(c.RoomTypes) == 0 {
		return fmt.Errorf("%w: room_types is empty", ErrInvalidConfig)
	}
	for _, t := range c.RoomTypes {
		if !t.IsValid() {
			return fmt.Errorf("%w: unknown room type %q", ErrInvalidConfig, t)
		}
	}

	if c.MaxPlacementAttempts <= 0 {
		return fmt.Errorf("%w: max_placement_attempts must be positive", ErrInvalidConfig)
	}
	if c.MaxGenerationAttempts <= 0 {
		return fmt.Errorf("%w: max_generation_attempts must be positive", ErrInvalidConfig)
	}
	return nil
}

// Params are the values resolved for one Generate call.
type Params struct {
	RoomCount           int
	GlobalRoomRatio     float64
	AccessPointsPerRoom int
	RoomRatio           float64
}
