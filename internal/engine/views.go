// Read-only views. Views are copies: callers may hold them across turns
// without seeing later mutations. Space contents are fog-gated per player.
package engine

import (
	"sort"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// UnitView is a unit as reported to callers.
type UnitView struct {
	ID        agents.UnitID      `json:"id"`
	Kind      agents.UnitKind    `json:"kind"`
	Name      string             `json:"name"`
	Owner     agents.PlayerID    `json:"owner"`
	Space     world.SpaceID      `json:"space_id"`
	SpaceName string             `json:"space_name"`
	Body      world.BodyID       `json:"body_id"`
	BodyName  string             `json:"body_name"`
	Facing    world.Direction    `json:"facing"`
	Inventory resource.Inventory `json:"inventory"`
	Explored  []world.SpaceID    `json:"explored,omitempty"`
	Drone     *agents.Drone      `json:"drone,omitempty"`
}

// SpaceView is a space as seen by one player. Resources and structures are
// only filled in when the space is visible to that player.
type SpaceView struct {
	ID               world.SpaceID          `json:"id"`
	Name             string                 `json:"name"`
	Body             world.BodyID           `json:"body_id"`
	BodyName         string                 `json:"body_name"`
	Coord            world.HexCoord         `json:"coord"`
	SystemAccessible bool                   `json:"system_accessible"`
	Visible          bool                   `json:"visible"`
	Resources        resource.Inventory     `json:"resources,omitempty"`
	Structures       []structures.Structure `json:"structures,omitempty"`
	Units            []agents.UnitID        `json:"units,omitempty"`
}

// BodyView groups a body's spaces.
type BodyView struct {
	ID     world.BodyID   `json:"id"`
	Name   string         `json:"name"`
	Anchor world.HexCoord `json:"anchor"`
	Spaces []SpaceView    `json:"spaces"`
}

// SystemView is the whole system as seen by one player.
type SystemView struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Turn   uint64     `json:"turn"`
	Bodies []BodyView `json:"bodies"`
}

// MoveOption is one destination a unit could move to now.
type MoveOption struct {
	Mode       TravelMode       `json:"mode"`
	Direction  *world.Direction `json:"direction,omitempty"` // Local moves only
	Target     world.SpaceID    `json:"target_space_id"`
	SpaceName  string           `json:"space_name"`
	BodyName   string           `json:"body_name"`
	Cost       int              `json:"fuel_cost"`
	Affordable bool             `json:"affordable"`
}

// PortRoute is one space-port connection from a unit's space.
type PortRoute struct {
	FromPort   structures.ID `json:"from_port"`
	ToPort     structures.ID `json:"to_port"`
	Space      world.SpaceID `json:"space_id"`
	SpaceName  string        `json:"space_name"`
	BodyName   string        `json:"body_name"`
	Network    string        `json:"network"`
	Cost       int           `json:"fuel_cost"`
	Affordable bool          `json:"affordable"`
}

func (g *Game) unitView(u *agents.Unit) UnitView {
	sp := g.sys.Space(u.Space)
	b := g.sys.Body(sp.Body)
	v := UnitView{
		ID:        u.ID,
		Kind:      u.Kind,
		Name:      u.Name,
		Owner:     u.Owner,
		Space:     u.Space,
		SpaceName: sp.Name,
		Body:      b.ID,
		BodyName:  b.Name,
		Facing:    u.Facing,
		Inventory: u.Inventory.Clone(),
	}
	if u.Kind == agents.UnitPlayer {
		v.Explored = u.ExploredSpaces()
	}
	if u.Drone != nil {
		d := *u.Drone
		v.Drone = &d
	}
	return v
}

func (g *Game) allUnitViews() []UnitView {
	out := make([]UnitView, 0, len(g.unitOrder))
	for _, id := range g.unitOrder {
		out = append(out, g.unitView(g.units[id]))
	}
	return out
}

func structureView(s *structures.Structure) structures.Structure {
	c := *s
	c.Inventory = s.Inventory.Clone()
	return c
}

func (g *Game) spaceView(player agents.PlayerID, sp *world.Space) SpaceView {
	return g.spaceViewWith(player, sp, g.unitsBySpace())
}

func (g *Game) spaceViewWith(player agents.PlayerID, sp *world.Space, occupants map[world.SpaceID][]agents.UnitID) SpaceView {
	v := SpaceView{
		ID:               sp.ID,
		Name:             sp.Name,
		Body:             sp.Body,
		BodyName:         g.sys.Body(sp.Body).Name,
		Coord:            sp.Coord,
		SystemAccessible: g.systemAccessible[sp.ID],
		Visible:          g.visibleTo(player, sp.ID),
	}
	if !v.Visible {
		return v
	}
	v.Resources = sp.Inventory.Clone()
	for _, s := range g.structuresAt(sp.ID) {
		v.Structures = append(v.Structures, structureView(s))
	}
	v.Units = occupants[sp.ID]
	return v
}

func (g *Game) unitsBySpace() map[world.SpaceID][]agents.UnitID {
	out := make(map[world.SpaceID][]agents.UnitID)
	for _, id := range g.unitOrder {
		u := g.units[id]
		out[u.Space] = append(out[u.Space], id)
	}
	return out
}

// GetSystem returns the system as seen by a player.
func (g *Game) GetSystem(player agents.PlayerID) SystemView {
	g.mu.Lock()
	defer g.mu.Unlock()

	occupants := g.unitsBySpace()
	v := SystemView{ID: g.sys.ID, Name: g.sys.Name, Turn: g.turn}
	for _, b := range g.sys.Bodies {
		bv := BodyView{ID: b.ID, Name: b.Name, Anchor: b.Anchor}
		for _, sid := range b.Spaces {
			bv.Spaces = append(bv.Spaces, g.spaceViewWith(player, g.sys.Space(sid), occupants))
		}
		v.Bodies = append(v.Bodies, bv)
	}
	return v
}

// GetSpace returns one space as seen by a player.
func (g *Game) GetSpace(player agents.PlayerID, id world.SpaceID) (SpaceView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sp := g.sys.Space(id)
	if sp == nil {
		return SpaceView{}, newError(KindEntityNotFound, "space %d not found", id)
	}
	return g.spaceView(player, sp), nil
}

// GetUnit returns a unit owned by the player, player unit or drone.
func (g *Game) GetUnit(player agents.PlayerID, id agents.UnitID) (UnitView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, ok := g.units[id]
	if !ok {
		return UnitView{}, newError(KindEntityNotFound, "unit %d not found", id)
	}
	if u.Owner != player {
		return UnitView{}, newError(KindPermissionDenied, "unit %d belongs to another player", id)
	}
	return g.unitView(u), nil
}

// Units returns every unit the player owns, in creation order.
func (g *Game) Units(player agents.PlayerID) []UnitView {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []UnitView
	for _, id := range g.unitOrder {
		if u := g.units[id]; u.Owner == player {
			out = append(out, g.unitView(u))
		}
	}
	return out
}

// ActiveDrones returns every autonomous unit still in play.
func (g *Game) ActiveDrones() []UnitView {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []UnitView
	for _, id := range g.unitOrder {
		if u := g.units[id]; u.IsAutonomous() {
			out = append(out, g.unitView(u))
		}
	}
	return out
}

// GetStructure returns a structure the player can see.
func (g *Game) GetStructure(player agents.PlayerID, id structures.ID) (structures.Structure, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.structure(id)
	if s == nil || !g.visibleTo(player, s.Space) {
		return structures.Structure{}, newError(KindEntityNotFound, "structure %d not found", id)
	}
	return structureView(s), nil
}

// SpacePorts returns every space port, operational or not, in ID order.
func (g *Game) SpacePorts() []structures.Structure {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []structures.Structure
	for _, s := range g.structs {
		if s.Kind == structures.KindSpacePort {
			out = append(out, structureView(s))
		}
	}
	return out
}

// accessibleSpaces returns every space the unit may target non-locally, in
// ascending order.
func (g *Game) accessibleSpaces(u *agents.Unit) []world.SpaceID {
	set := make(map[world.SpaceID]bool)
	for id := range g.systemAccessible {
		set[id] = true
	}
	for id := range u.Explored {
		set[id] = true
	}
	if p, ok := g.players[u.Owner]; ok {
		for id := range p.Scanned {
			set[id] = true
		}
	}
	out := make([]world.SpaceID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetMovementOptions lists every move the unit could make now, with cost.
func (g *Game) GetMovementOptions(player agents.PlayerID, id agents.UnitID) ([]MoveOption, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return nil, err
	}
	fuel := u.Fuel()
	var out []MoveOption

	for d := world.Direction(0); d < world.NumDirections; d++ {
		n, ok := g.sys.Neighbor(u.Space, d)
		if !ok {
			continue
		}
		dir := d
		out = append(out, g.moveOption(TravelLocal, &dir, n, g.rules.Movement.LocalCost, fuel))
	}

	for _, sid := range g.accessibleSpaces(u) {
		if sid == u.Space {
			continue
		}
		if _, adjacent := g.sys.Adjacent(u.Space, sid); adjacent {
			continue
		}
		plan, err := g.resolveMove(u, To(sid))
		if err != nil {
			continue
		}
		out = append(out, g.moveOption(plan.mode, nil, sid, plan.cost, fuel))
	}
	return out, nil
}

func (g *Game) moveOption(mode TravelMode, d *world.Direction, target world.SpaceID, cost, fuel int) MoveOption {
	sp := g.sys.Space(target)
	return MoveOption{
		Mode:       mode,
		Direction:  d,
		Target:     target,
		SpaceName:  sp.Name,
		BodyName:   g.sys.Body(sp.Body).Name,
		Cost:       cost,
		Affordable: fuel >= cost,
	}
}

// GetSpacePortRoutes lists the space-port destinations reachable from the
// unit's current space.
func (g *Game) GetSpacePortRoutes(player agents.PlayerID, id agents.UnitID) ([]PortRoute, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return nil, err
	}
	if len(g.operationalPorts(u.Space)) == 0 {
		return nil, nil
	}

	fuel := u.Fuel()
	var out []PortRoute
	for _, sid := range g.accessibleSpaces(u) {
		if sid == u.Space {
			continue
		}
		origin, dest, err := g.portRoute(u.Space, sid)
		if err != nil {
			continue
		}
		sp := g.sys.Space(sid)
		out = append(out, PortRoute{
			FromPort:   origin.ID,
			ToPort:     dest.ID,
			Space:      sid,
			SpaceName:  sp.Name,
			BodyName:   g.sys.Body(sp.Body).Name,
			Network:    origin.Network,
			Cost:       origin.TravelCost,
			Affordable: fuel >= origin.TravelCost,
		})
	}
	return out, nil
}

// PlayerView summarizes a player.
type PlayerView struct {
	ID      agents.PlayerID `json:"id"`
	Name    string          `json:"name"`
	Units   []agents.UnitID `json:"units"`
	Scanned []world.SpaceID `json:"scanned"`
}

// Players returns every player in join order.
func (g *Game) Players() []PlayerView {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]PlayerView, 0, len(g.playerOrder))
	for _, id := range g.playerOrder {
		p := g.players[id]
		out = append(out, PlayerView{
			ID:      p.ID,
			Name:    p.Name,
			Units:   append([]agents.UnitID(nil), p.Units...),
			Scanned: p.ScannedSpaces(),
		})
	}
	return out
}
