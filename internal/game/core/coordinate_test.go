package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(3, 5)
	assert.Equal(t, 3, c.Row)
	assert.Equal(t, 5, c.Col)
}

func TestCoordinate_FromIndex(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		cols     int
		expected Coordinate
	}{
		{"TopLeft", 0, 10, Coordinate{0, 0}},
		{"TopRight", 9, 10, Coordinate{0, 9}},
		{"SecondRow", 10, 10, Coordinate{1, 0}},
		{"Middle", 55, 10, Coordinate{5, 5}},
		{"SmallGrid", 7, 4, Coordinate{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromIndex(tt.index, tt.cols))
		})
	}
}

func TestCoordinate_RoundTrip(t *testing.T) {
	cols := 7
	for i := 0; i < 49; i++ {
		coord := FromIndex(i, cols)
		assert.Equal(t, i, coord.ToIndex(cols), "Round trip failed for index %d", i)
	}
}

func TestCoordinate_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		valid bool
	}{
		{"Origin", Coordinate{0, 0}, true},
		{"BottomRight", Coordinate{4, 6}, true},
		{"NegativeRow", Coordinate{-1, 0}, false},
		{"NegativeCol", Coordinate{0, -1}, false},
		{"RowOverflow", Coordinate{5, 0}, false},
		{"ColOverflow", Coordinate{0, 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.coord.IsValid(5, 7))
		})
	}
}

func TestCoordinate_DistanceTo(t *testing.T) {
	assert.Equal(t, 0, Coordinate{2, 2}.DistanceTo(Coordinate{2, 2}))
	assert.Equal(t, 7, Coordinate{0, 0}.DistanceTo(Coordinate{3, 4}))
	assert.Equal(t, 7, Coordinate{3, 4}.DistanceTo(Coordinate{0, 0}))
	assert.True(t, Coordinate{1, 1}.IsAdjacentTo(Coordinate{1, 2}))
	assert.False(t, Coordinate{1, 1}.IsAdjacentTo(Coordinate{2, 2}))
}

func TestCoordinate_NeighborsFollowActionOrder(t *testing.T) {
	c := Coordinate{2, 2}
	n := c.Neighbors()

	assert.Equal(t, Coordinate{1, 2}, n[ActionUp])
	assert.Equal(t, Coordinate{2, 3}, n[ActionRight])
	assert.Equal(t, Coordinate{3, 2}, n[ActionDown])
	assert.Equal(t, Coordinate{2, 1}, n[ActionLeft])

	for _, a := range AllActions() {
		assert.Equal(t, n[a], c.Move(a))
		back, ok := n[a].ActionTo(c)
		require.True(t, ok)
		assert.Equal(t, a.Opposite(), back)
	}
}

func TestCoordinate_ValidNeighbors(t *testing.T) {
	assert.Len(t, Coordinate{0, 0}.ValidNeighbors(3, 3), 2)
	assert.Len(t, Coordinate{0, 1}.ValidNeighbors(3, 3), 3)
	assert.Len(t, Coordinate{1, 1}.ValidNeighbors(3, 3), 4)
}

func TestCoordinate_ActionToNotAdjacent(t *testing.T) {
	_, ok := Coordinate{0, 0}.ActionTo(Coordinate{1, 1})
	assert.False(t, ok)
	_, ok = Coordinate{0, 0}.ActionTo(Coordinate{0, 0})
	assert.False(t, ok)
}

func TestCoordinate_MoveInvalidAction(t *testing.T) {
	c := Coordinate{1, 1}
	assert.Equal(t, c, c.Move(Action(9)))
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"up", ActionUp},
		{"R", ActionRight},
		{" down ", ActionDown},
		{"3", ActionLeft},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAction("jump")
	assert.True(t, errors.Is(err, ErrInvalidAction))
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "UP", ActionUp.String())
	assert.Equal(t, "LEFT", ActionLeft.String())
	assert.Equal(t, "Action(7)", Action(7).String())
	assert.False(t, Action(-1).IsValid())
	assert.False(t, Action(NumActions).IsValid())
}

func TestWrapActionError(t *testing.T) {
	assert.Nil(t, WrapActionError(ActionUp, nil))

	wrapped := WrapActionError(ActionDown, ErrEpisodeDone)
	require.Error(t, wrapped)
	assert.Equal(t, "action DOWN: episode is done", wrapped.Error())
	assert.True(t, errors.Is(wrapped, ErrEpisodeDone))

	wrapped = WrapActionError(Action(5), ErrInvalidAction)
	assert.Equal(t, "action 5: invalid action", wrapped.Error())
}
