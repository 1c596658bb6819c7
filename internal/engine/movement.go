// Movement and travel-cost resolution.
//
// Modes, in precedence order:
//  1. local: a same-body neighbor, at the local cost
//  2. space port: both ends host operational ports on a shared network, at
//     the origin port's own travel cost
//  3. inter-body: any other move to a different body, at the flat cost
//
// Non-local destinations must be accessible. A move commits only when the
// unit can pay for it.
package engine

import (
	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// TravelMode names how a move is made.
type TravelMode string

const (
	TravelLocal     TravelMode = "local"
	TravelSpacePort TravelMode = "space_port"
	TravelInterBody TravelMode = "inter_body"
)

// MoveIntent is either a facing direction or a target space.
type MoveIntent struct {
	Direction world.Direction
	Target    world.SpaceID
	ByTarget  bool
}

// Toward moves one step in a direction.
func Toward(d world.Direction) MoveIntent {
	return MoveIntent{Direction: d, Target: world.NoSpace}
}

// To moves directly to a space.
func To(space world.SpaceID) MoveIntent {
	return MoveIntent{Target: space, ByTarget: true}
}

// movePlan is a validated, not yet committed move.
type movePlan struct {
	dest   world.SpaceID
	mode   TravelMode
	cost   int
	facing world.Direction
	port   structures.ID // Origin port for space-port travel
}

// MoveUnit moves a player's unit and returns its new state.
func (g *Game) MoveUnit(player agents.PlayerID, id agents.UnitID, intent MoveIntent) (UnitView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return UnitView{}, err
	}
	plan, err := g.resolveMove(u, intent)
	if err != nil {
		return UnitView{}, err
	}
	if err := g.payFuel(u, plan.cost); err != nil {
		return UnitView{}, err
	}

	from := u.Space
	u.Space = plan.dest
	if plan.mode == TravelLocal {
		u.Facing = plan.facing
	}
	u.Explore(plan.dest)

	if plan.mode != TravelLocal {
		g.addEvent("move", "%s travelled %s → %s by %s", u.Name,
			g.sys.Space(from).Name, g.sys.Space(plan.dest).Name, plan.mode)
	}
	return g.unitView(u), nil
}

func (g *Game) payFuel(u *agents.Unit, cost int) error {
	if have := u.Fuel(); have < cost {
		return newError(KindInsufficientFuel, "need %d fuel, have %d", cost, have)
	}
	return u.Inventory.Take(resource.Fuel, cost)
}

// resolveMove validates a move without touching state. Fuel is the last
// check so callers can surface accessibility problems first.
func (g *Game) resolveMove(u *agents.Unit, intent MoveIntent) (movePlan, error) {
	if !intent.ByTarget {
		if !intent.Direction.Valid() {
			return movePlan{}, newError(KindInvalidLocation, "invalid direction %d", intent.Direction)
		}
		dest, ok := g.sys.Neighbor(u.Space, intent.Direction)
		if !ok {
			return movePlan{}, newError(KindInvalidLocation, "no space %s of %s", intent.Direction, g.sys.Space(u.Space).Name)
		}
		return movePlan{dest: dest, mode: TravelLocal, cost: g.rules.Movement.LocalCost, facing: intent.Direction}, nil
	}

	target := g.sys.Space(intent.Target)
	if target == nil {
		return movePlan{}, newError(KindInvalidLocation, "space %d does not exist", intent.Target)
	}
	if target.ID == u.Space {
		return movePlan{}, newError(KindInvalidLocation, "unit is already at %s", target.Name)
	}

	if d, ok := g.sys.Adjacent(u.Space, target.ID); ok {
		return movePlan{dest: target.ID, mode: TravelLocal, cost: g.rules.Movement.LocalCost, facing: d}, nil
	}

	origin, _, portErr := g.portRoute(u.Space, target.ID)
	if portErr == nil {
		if !g.accessible(u, target.ID) {
			return movePlan{}, newError(KindInvalidLocation, "%s has not been explored", target.Name)
		}
		return movePlan{dest: target.ID, mode: TravelSpacePort, cost: origin.TravelCost, facing: u.Facing, port: origin.ID}, nil
	}

	if g.sys.Space(u.Space).Body == target.Body {
		if KindOf(portErr) == KindNetworkMismatch {
			return movePlan{}, portErr
		}
		return movePlan{}, newError(KindInvalidLocation, "%s is not adjacent and no space port connects it", target.Name)
	}

	if !g.accessible(u, target.ID) {
		return movePlan{}, newError(KindInvalidLocation, "%s has not been explored", target.Name)
	}
	return movePlan{dest: target.ID, mode: TravelInterBody, cost: g.rules.Movement.InterBodyCost, facing: u.Facing}, nil
}

// operationalPorts returns the routing-capable ports on a space.
// Non-operational ports are treated as absent.
func (g *Game) operationalPorts(space world.SpaceID) []*structures.Structure {
	var out []*structures.Structure
	for _, s := range g.structuresAt(space) {
		if s.IsSpacePort() {
			out = append(out, s)
		}
	}
	return out
}

// portRoute picks the cheapest pair of connected ports between two spaces.
// Ties go to the lowest origin, then destination, ID.
func (g *Game) portRoute(from, to world.SpaceID) (*structures.Structure, *structures.Structure, error) {
	origins := g.operationalPorts(from)
	if len(origins) == 0 {
		return nil, nil, newError(KindInvalidLocation, "no operational space port at origin")
	}
	dests := g.operationalPorts(to)
	if len(dests) == 0 {
		return nil, nil, newError(KindInvalidLocation, "no operational space port at destination")
	}

	var bestO, bestD *structures.Structure
	var mismatch error
	for _, o := range origins {
		for _, d := range dests {
			if err := o.ConnectsTo(d); err != nil {
				mismatch = err
				continue
			}
			if bestO == nil || o.TravelCost < bestO.TravelCost {
				bestO, bestD = o, d
			}
		}
	}
	if bestO == nil {
		return nil, nil, newError(KindNetworkMismatch, "%v", mismatch)
	}
	return bestO, bestD, nil
}

// ValidateSpacePortTravel checks port travel between two spaces for a unit
// and returns the fuel it would cost.
func (g *Game) ValidateSpacePortTravel(player agents.PlayerID, id agents.UnitID, from, to world.SpaceID) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return 0, err
	}
	if g.sys.Space(from) == nil || g.sys.Space(to) == nil {
		return 0, newError(KindInvalidLocation, "space does not exist")
	}
	if len(g.operationalPorts(from)) == 0 {
		return 0, newError(KindInvalidLocation, "no operational space port at origin")
	}
	if len(g.operationalPorts(to)) == 0 {
		return 0, newError(KindInvalidLocation, "no operational space port at destination")
	}
	if !g.accessible(u, to) {
		return 0, newError(KindInvalidLocation, "destination space port not accessible")
	}
	origin, _, err := g.portRoute(from, to)
	if err != nil {
		return 0, err
	}
	if have := u.Fuel(); have < origin.TravelCost {
		return origin.TravelCost, newError(KindInsufficientFuel, "need %d fuel, have %d", origin.TravelCost, have)
	}
	return origin.TravelCost, nil
}
