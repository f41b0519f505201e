package core

import (
	"fmt"
	"strings"
)

// RoomType selects the interior decoration applied after a room is carved.
type RoomType string

const (
	// RoomOpen is a plain rectangle of path cells.
	RoomOpen RoomType = "open"
	// RoomPillars places single wall pillars on the interior even offsets.
	RoomPillars RoomType = "pillars"
	// RoomCourtyard walls a central block, leaving a walkway around it.
	RoomCourtyard RoomType = "courtyard"
)

// AllRoomTypes returns every supported room type.
func AllRoomTypes() []RoomType {
	return []RoomType{RoomOpen, RoomPillars, RoomCourtyard}
}

func (t RoomType) IsValid() bool {
	switch t {
	case RoomOpen, RoomPillars, RoomCourtyard:
		return true
	}
	return false
}

func ParseRoomType(s string) (RoomType, error) {
	t := RoomType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown room type %q", s)
	}
	return t, nil
}

// Rect is an axis-aligned block of cells anchored at its top-left corner.
type Rect struct {
	Row, Col      int
	Height, Width int
}

func (r Rect) Bottom() int { return r.Row + r.Height - 1 }
func (r Rect) Right() int  { return r.Col + r.Width - 1 }
func (r Rect) Area() int   { return r.Height * r.Width }

// Inflate grows the rectangle by n cells on every side.
func (r Rect) Inflate(n int) Rect {
	return Rect{Row: r.Row - n, Col: r.Col - n, Height: r.Height + 2*n, Width: r.Width + 2*n}
}

func (r Rect) Contains(c Coordinate) bool {
	return c.Row >= r.Row && c.Row <= r.Bottom() && c.Col >= r.Col && c.Col <= r.Right()
}

func (r Rect) Intersects(o Rect) bool {
	return r.Row <= o.Bottom() && o.Row <= r.Bottom() && r.Col <= o.Right() && o.Col <= r.Right()
}

// Room is a rectangular interior of path cells enclosed by a wall ring.
// Access points are the ring cells opened towards the corridor network.
type Room struct {
	Bounds       Rect
	Type         RoomType
	AccessPoints []Coordinate
}

// Ring returns the rectangle covering the interior and its wall ring.
func (r Room) Ring() Rect { return r.Bounds.Inflate(1) }

// OnRing reports whether c is a ring cell (outside the interior, inside Ring).
func (r Room) OnRing(c Coordinate) bool {
	return r.Ring().Contains(c) && !r.Bounds.Contains(c)
}

func (r Room) clone() Room {
	out := r
	out.AccessPoints = append([]Coordinate(nil), r.AccessPoints...)
	return out
}
