// Package world provides the hex grid and the System → Body → Space containment
// hierarchy. Uses axial coordinates (q, r) for the hex grid.
package world

import (
	"fmt"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the coordinate offset by o.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Direction is one of the six hex directions, indexed clockwise from East.
// It doubles as a unit's facing.
type Direction uint8

const (
	DirEast Direction = iota
	DirNorthEast
	DirNorthWest
	DirWest
	DirSouthWest
	DirSouthEast
)

// NumDirections is the number of hex neighbors.
const NumDirections = 6

// HexNeighborDirections defines the six neighbor offsets in axial coordinates,
// indexed by Direction.
var HexNeighborDirections = [NumDirections]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

var directionNames = [NumDirections]string{"E", "NE", "NW", "W", "SW", "SE"}

// Valid reports whether d is one of the six directions.
func (d Direction) Valid() bool {
	return d < NumDirections
}

// Offset returns the axial offset for d.
func (d Direction) Offset() HexCoord {
	return HexNeighborDirections[d%NumDirections]
}

// Clockwise returns the next direction in the table.
func (d Direction) Clockwise() Direction {
	return (d + 1) % NumDirections
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// ParseDirection resolves a direction from its short name ("E", "nw", ...).
func ParseDirection(name string) (Direction, bool) {
	for i, n := range directionNames {
		if strings.EqualFold(n, name) {
			return Direction(i), true
		}
	}
	return 0, false
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [NumDirections]HexCoord {
	var result [NumDirections]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// DirectionTo returns the direction from h to an adjacent coordinate o.
func (h HexCoord) DirectionTo(o HexCoord) (Direction, bool) {
	for i, dir := range HexNeighborDirections {
		if h.Add(dir) == o {
			return Direction(i), true
		}
	}
	return 0, false
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// Spiral returns the first n coordinates of an outward spiral around center:
// the center itself, then ring 1, ring 2, and so on.
func Spiral(center HexCoord, n int) []HexCoord {
	if n <= 0 {
		return nil
	}
	out := make([]HexCoord, 0, n)
	out = append(out, center)
	for radius := 1; len(out) < n; radius++ {
		for _, c := range Ring(center, radius) {
			if len(out) == n {
				break
			}
			out = append(out, c)
		}
	}
	return out
}

// Ring returns the 6*radius coordinates at exactly radius from center.
func Ring(center HexCoord, radius int) []HexCoord {
	if radius <= 0 {
		return []HexCoord{center}
	}
	out := make([]HexCoord, 0, NumDirections*radius)
	// Start radius steps toward SouthWest, then walk each side.
	c := HexCoord{
		Q: center.Q + HexNeighborDirections[DirSouthWest].Q*radius,
		R: center.R + HexNeighborDirections[DirSouthWest].R*radius,
	}
	for side := 0; side < NumDirections; side++ {
		for step := 0; step < radius; step++ {
			out = append(out, c)
			c = c.Add(HexNeighborDirections[side])
		}
	}
	return out
}

// RadiusForCount returns the smallest radius whose hexagon holds n cells.
func RadiusForCount(n int) int {
	radius := 0
	for 3*radius*(radius+1)+1 < n {
		radius++
	}
	return radius
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
