// Drone environment: the live game state as seen by the drone state machine.
// Drones stay on their current body and move only by local steps paid from
// their own fuel.
package engine

import (
	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

type droneEnv struct {
	g *Game
}

// FindResource picks the stocked space with the shortest walk. Ties go to
// the earlier space on the body.
func (e droneEnv) FindResource(u *agents.Unit, id resource.ID) (world.SpaceID, bool) {
	sys := e.g.sys
	walk := sys.PathDistances(u.Space)
	best, bestDist := world.NoSpace, -1
	for _, sid := range sys.BodyOf(u.Space).Spaces {
		dist, reachable := walk[sid]
		if !reachable || sys.Space(sid).Inventory.Get(id) == 0 {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = sid, dist
		}
	}
	return best, bestDist >= 0
}

func (e droneEnv) Stock(space world.SpaceID, id resource.ID) int {
	sp := e.g.sys.Space(space)
	if sp == nil {
		return 0
	}
	return sp.Inventory.Get(id)
}

// NearestCollectionPoint considers collection points owned by the drone's
// player or by the system, nearest by walk. Ties go to the lowest structure ID.
func (e droneEnv) NearestCollectionPoint(u *agents.Unit) (structures.ID, world.SpaceID, bool) {
	sys := e.g.sys
	walk := sys.PathDistances(u.Space)
	var best *structures.Structure
	bestDist := -1
	for _, sid := range sys.BodyOf(u.Space).Spaces {
		dist, reachable := walk[sid]
		if !reachable {
			continue
		}
		for _, s := range e.g.structuresAt(sid) {
			if !e.acceptsFrom(s, u) {
				continue
			}
			if bestDist < 0 || dist < bestDist || (dist == bestDist && s.ID < best.ID) {
				best, bestDist = s, dist
			}
		}
	}
	if best == nil {
		return 0, world.NoSpace, false
	}
	return best.ID, best.Space, true
}

func (e droneEnv) acceptsFrom(s *structures.Structure, u *agents.Unit) bool {
	return s.IsCollectionPoint() && (s.Owner == "" || s.Owner == string(u.Owner))
}

func (e droneEnv) StepToward(u *agents.Unit, target world.SpaceID) bool {
	next, facing, ok := e.g.sys.NextStep(u.Space, target)
	if !ok {
		return false
	}
	return e.step(u, next, facing)
}

func (e droneEnv) Wander(u *agents.Unit) bool {
	d := u.Facing
	for i := 0; i < world.NumDirections; i++ {
		if n, ok := e.g.sys.Neighbor(u.Space, d); ok {
			return e.step(u, n, d)
		}
		d = d.Clockwise()
	}
	return false
}

// step makes one local move if the drone can pay for it.
func (e droneEnv) step(u *agents.Unit, to world.SpaceID, facing world.Direction) bool {
	if e.g.payFuel(u, e.g.rules.Movement.LocalCost) != nil {
		return false
	}
	u.Space = to
	u.Facing = facing
	return true
}

func (e droneEnv) Harvest(u *agents.Unit, id resource.ID, max int) int {
	sp := e.g.sys.Space(u.Space)
	n := sp.Inventory.Get(id)
	if n > max {
		n = max
	}
	if n <= 0 {
		return 0
	}
	if resource.Transfer(sp.Inventory, u.Inventory, id, n) != nil {
		return 0
	}
	return n
}

func (e droneEnv) Deposit(u *agents.Unit, point structures.ID) (resource.Inventory, bool) {
	s := e.g.structure(point)
	if s == nil || s.Space != u.Space || !e.acceptsFrom(s, u) {
		return nil, false
	}
	moved, err := s.AcceptCargo(u.Inventory)
	if err != nil {
		return nil, false
	}
	return moved, true
}
