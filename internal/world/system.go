package world

import (
	"fmt"

	"github.com/talgya/eos/internal/resource"
)

// BodyID indexes System.Bodies.
type BodyID int

// SpaceID indexes System.Spaces. Spaces are never destroyed, so an ID stays
// valid for the life of the System.
type SpaceID int

// NoSpace marks an absent space reference.
const NoSpace SpaceID = -1

// Space is one hex cell on a Body.
type Space struct {
	ID        SpaceID            `json:"id"`
	Body      BodyID             `json:"body_id"`
	Coord     HexCoord           `json:"coord"` // Relative to the body anchor
	Name      string             `json:"name"`
	Inventory resource.Inventory `json:"inventory"`
}

// Body owns a contiguous run of spaces. The first space is the body's entry
// point and is always system-accessible.
type Body struct {
	ID     BodyID    `json:"id"`
	Name   string    `json:"name"`
	Anchor HexCoord  `json:"anchor"` // Layout only
	Spaces []SpaceID `json:"spaces"`

	index map[HexCoord]SpaceID
}

// Entry returns the body's first space.
func (b *Body) Entry() SpaceID {
	if len(b.Spaces) == 0 {
		return NoSpace
	}
	return b.Spaces[0]
}

// At returns the space at a body-relative coordinate.
func (b *Body) At(c HexCoord) (SpaceID, bool) {
	id, ok := b.index[c]
	return id, ok
}

// System is the root container. Its topology is fixed once built.
type System struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Bodies []*Body  `json:"bodies"`
	Spaces []*Space `json:"-"`
}

// NewSystem creates an empty system.
func NewSystem(id, name string) *System {
	return &System{ID: id, Name: name}
}

// AddBody appends a body with count spaces laid out in a spiral from the
// body center. Space coordinates are body-relative.
func (s *System) AddBody(name string, anchor HexCoord, count int) *Body {
	b := &Body{
		ID:     BodyID(len(s.Bodies)),
		Name:   name,
		Anchor: anchor,
		index:  make(map[HexCoord]SpaceID, count),
	}
	for i, c := range Spiral(HexCoord{}, count) {
		sp := &Space{
			ID:        SpaceID(len(s.Spaces)),
			Body:      b.ID,
			Coord:     c,
			Name:      fmt.Sprintf("%s - Space %d", name, i+1),
			Inventory: resource.Inventory{},
		}
		s.Spaces = append(s.Spaces, sp)
		b.Spaces = append(b.Spaces, sp.ID)
		b.index[c] = sp.ID
	}
	s.Bodies = append(s.Bodies, b)
	return b
}

// Space returns the space with the given ID, or nil.
func (s *System) Space(id SpaceID) *Space {
	if id < 0 || int(id) >= len(s.Spaces) {
		return nil
	}
	return s.Spaces[id]
}

// Body returns the body with the given ID, or nil.
func (s *System) Body(id BodyID) *Body {
	if id < 0 || int(id) >= len(s.Bodies) {
		return nil
	}
	return s.Bodies[id]
}

// BodyOf returns the body that owns a space.
func (s *System) BodyOf(id SpaceID) *Body {
	sp := s.Space(id)
	if sp == nil {
		return nil
	}
	return s.Body(sp.Body)
}

// Neighbor returns the same-body space adjacent to id in direction d.
// Bodies are never adjacent to each other through coordinates.
func (s *System) Neighbor(id SpaceID, d Direction) (SpaceID, bool) {
	sp := s.Space(id)
	if sp == nil || !d.Valid() {
		return NoSpace, false
	}
	return s.Bodies[sp.Body].At(sp.Coord.Add(d.Offset()))
}

// Adjacent reports whether two spaces are same-body neighbors, and in which
// direction b lies from a.
func (s *System) Adjacent(a, b SpaceID) (Direction, bool) {
	sa, sb := s.Space(a), s.Space(b)
	if sa == nil || sb == nil || sa.Body != sb.Body {
		return 0, false
	}
	return sa.Coord.DirectionTo(sb.Coord)
}

// PathDistances returns the number of local steps from every space reachable
// from origin without leaving its body. Spiral bodies with a partial outer
// ring are not convex, so this can exceed the hex distance.
func (s *System) PathDistances(origin SpaceID) map[SpaceID]int {
	so := s.Space(origin)
	if so == nil {
		return nil
	}
	body := s.Bodies[so.Body]
	dist := map[SpaceID]int{origin: 0}
	queue := []SpaceID{origin}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range s.Spaces[id].Coord.Neighbors() {
			n, ok := body.At(c)
			if !ok {
				continue
			}
			if _, seen := dist[n]; !seen {
				dist[n] = dist[id] + 1
				queue = append(queue, n)
			}
		}
	}
	return dist
}

// NextStep returns the first local step on a shortest same-body path from
// from to to. Ties go to the lowest direction. It reports false when from is
// already at to or no path exists.
func (s *System) NextStep(from, to SpaceID) (SpaceID, Direction, bool) {
	if from == to {
		return NoSpace, 0, false
	}
	remaining := s.PathDistances(to)
	best, ok := remaining[from]
	if !ok {
		return NoSpace, 0, false
	}
	next, facing := NoSpace, Direction(0)
	for d := Direction(0); d < NumDirections; d++ {
		n, exists := s.Neighbor(from, d)
		if !exists {
			continue
		}
		if dist, ok := remaining[n]; ok && dist < best {
			best, next, facing = dist, n, d
		}
	}
	return next, facing, next != NoSpace
}

// WithinRadius returns the spaces of the body of center that lie within
// radius, in body order.
func (s *System) WithinRadius(center SpaceID, radius int) []SpaceID {
	sc := s.Space(center)
	if sc == nil {
		return nil
	}
	var out []SpaceID
	for _, id := range s.Bodies[sc.Body].Spaces {
		if Distance(sc.Coord, s.Spaces[id].Coord) <= radius {
			out = append(out, id)
		}
	}
	return out
}

// EntrySpaces returns each body's first space, in body order.
func (s *System) EntrySpaces() []SpaceID {
	out := make([]SpaceID, 0, len(s.Bodies))
	for _, b := range s.Bodies {
		if e := b.Entry(); e != NoSpace {
			out = append(out, e)
		}
	}
	return out
}

// GlobalCoord returns a space's coordinate in system space (anchor + relative).
// Only layout and world generation use it.
func (s *System) GlobalCoord(id SpaceID) HexCoord {
	sp := s.Space(id)
	if sp == nil {
		return HexCoord{}
	}
	return s.Bodies[sp.Body].Anchor.Add(sp.Coord)
}

// String returns a summary of the system.
func (s *System) String() string {
	return fmt.Sprintf("System(%s, bodies=%d, spaces=%d)", s.Name, len(s.Bodies), len(s.Spaces))
}
