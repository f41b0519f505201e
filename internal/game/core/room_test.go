package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect_Geometry(t *testing.T) {
	r := Rect{Row: 3, Col: 5, Height: 3, Width: 5}
	assert.Equal(t, 5, r.Bottom())
	assert.Equal(t, 9, r.Right())
	assert.Equal(t, 15, r.Area())

	assert.True(t, r.Contains(Coordinate{3, 5}))
	assert.True(t, r.Contains(Coordinate{5, 9}))
	assert.False(t, r.Contains(Coordinate{6, 9}))

	inflated := r.Inflate(1)
	assert.Equal(t, Rect{Row: 2, Col: 4, Height: 5, Width: 7}, inflated)
}

func TestRect_Intersects(t *testing.T) {
	a := Rect{Row: 1, Col: 1, Height: 3, Width: 3}

	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"same", a, true},
		{"touching corner", Rect{Row: 3, Col: 3, Height: 3, Width: 3}, true},
		{"right of", Rect{Row: 1, Col: 4, Height: 3, Width: 3}, false},
		{"below", Rect{Row: 4, Col: 1, Height: 1, Width: 1}, false},
		{"inside", Rect{Row: 2, Col: 2, Height: 1, Width: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(a))
		})
	}
}

func TestRoom_Ring(t *testing.T) {
	room := Room{Bounds: Rect{Row: 3, Col: 3, Height: 3, Width: 3}, Type: RoomOpen}
	assert.True(t, room.OnRing(Coordinate{2, 2}))
	assert.True(t, room.OnRing(Coordinate{6, 4}))
	assert.False(t, room.OnRing(Coordinate{4, 4}))
	assert.False(t, room.OnRing(Coordinate{1, 1}))
}

func TestParseRoomType(t *testing.T) {
	for _, rt := range AllRoomTypes() {
		got, err := ParseRoomType(" " + string(rt))
		require.NoError(t, err)
		assert.Equal(t, rt, got)
	}
	got, err := ParseRoomType("PILLARS")
	require.NoError(t, err)
	assert.Equal(t, RoomPillars, got)

	_, err = ParseRoomType("cave")
	assert.Error(t, err)
}
