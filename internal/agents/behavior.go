// Mining-drone behavior: a per-turn state machine.
// search → collect → returning → deposit → search, with idle as a resting
// state and expired as the terminal state once lifespan runs out.
package agents

import (
	"fmt"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// DroneState enumerates drone behavior states.
type DroneState uint8

const (
	StateSearch    DroneState = iota // Looking for the target resource
	StateCollect                     // Moving to and harvesting the target space
	StateDeposit                     // At a collection point, unloading
	StateReturning                   // Carrying cargo to the nearest collection point
	StateIdle                        // Nothing to do
	StateExpired                     // Lifespan exhausted; removed at end of turn
)

var stateNames = [...]string{"search", "collect", "deposit", "returning", "idle", "expired"}

func (s DroneState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("DroneState(%d)", uint8(s))
}

// MarshalText lets states appear by name in JSON.
func (s DroneState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DroneState) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = DroneState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown drone state %q", b)
}

// Drone is the scratch state of a mining drone.
type Drone struct {
	Lifespan       int           `json:"lifespan"` // Turns remaining
	State          DroneState    `json:"state"`
	TargetResource resource.ID   `json:"target_resource"`
	Target         world.SpaceID `json:"target_space"`
	Home           structures.ID `json:"home"`    // Factory that built it
	Dropoff        structures.ID `json:"dropoff"` // Collection point being returned to
	CargoCapacity  int           `json:"cargo_capacity"`
	HarvestRate    int           `json:"harvest_rate"`
	IdleThreshold  int           `json:"idle_threshold"`
	TurnsInState   int           `json:"turns_in_state"`
}

// DroneEnv is the world as seen by a drone. The engine implements it over
// live game state; movement is paid from the drone's own fuel.
type DroneEnv interface {
	// FindResource returns the space with the shortest walk that holds at
	// least one unit of id.
	FindResource(u *Unit, id resource.ID) (world.SpaceID, bool)
	// Stock returns how much of id a space holds.
	Stock(space world.SpaceID, id resource.ID) int
	// NearestCollectionPoint returns the closest collection point the drone
	// may deposit into, and its space.
	NearestCollectionPoint(u *Unit) (structures.ID, world.SpaceID, bool)
	// StepToward makes the first local move of a shortest walk to target.
	// It returns false when no walk exists or the drone cannot pay for it.
	StepToward(u *Unit, target world.SpaceID) bool
	// Wander makes one local move along the drone's facing, turning
	// clockwise at the edge of its body.
	Wander(u *Unit) bool
	// Harvest moves up to max of id from the drone's space into its cargo.
	Harvest(u *Unit, id resource.ID, max int) int
	// Deposit unloads all non-fuel cargo into a collection point at the
	// drone's space.
	Deposit(u *Unit, point structures.ID) (resource.Inventory, bool)
}

// Transition records what a drone did during one tick.
type Transition struct {
	Unit      UnitID             `json:"unit_id"`
	From      DroneState         `json:"from"`
	To        DroneState         `json:"to"`
	Moved     bool               `json:"moved,omitempty"`
	Harvested int                `json:"harvested,omitempty"`
	Deposited resource.Inventory `json:"deposited,omitempty"`
}

// Changed reports whether the drone changed state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// TickDrone runs one turn of drone behavior. Lifespan drops by one before any
// state logic; reaching zero forces the expired state that same tick.
func TickDrone(u *Unit, env DroneEnv) Transition {
	d := u.Drone
	tr := Transition{Unit: u.ID, From: d.State, To: d.State}
	if d.State == StateExpired {
		return tr
	}

	d.Lifespan--
	d.TurnsInState++
	if d.Lifespan <= 0 {
		d.Lifespan = 0
		d.setState(StateExpired)
		tr.To = d.State
		return tr
	}

	switch d.State {
	case StateSearch:
		tickSearch(u, env, &tr)
	case StateCollect:
		tickCollect(u, env, &tr)
	case StateReturning:
		tickReturning(u, env, &tr)
	case StateDeposit:
		tickDeposit(u, env, &tr)
	case StateIdle:
		tickIdle(u, env)
	}

	tr.To = d.State
	return tr
}

func (d *Drone) setState(s DroneState) {
	if d.State != s {
		d.State = s
		d.TurnsInState = 0
	}
}

func (d *Drone) full(u *Unit) bool {
	return u.Cargo() >= d.CargoCapacity
}

func tickSearch(u *Unit, env DroneEnv, tr *Transition) {
	d := u.Drone
	if d.full(u) {
		d.setState(StateReturning)
		return
	}

	if target, ok := env.FindResource(u, d.TargetResource); ok {
		d.Target = target
		d.setState(StateCollect)
		if u.Space != target {
			tr.Moved = env.StepToward(u, target)
		}
		return
	}

	switch {
	case u.Cargo() > 0:
		d.setState(StateReturning)
	case d.Lifespan <= d.IdleThreshold:
		d.setState(StateIdle)
	default:
		tr.Moved = env.Wander(u)
	}
}

func tickCollect(u *Unit, env DroneEnv, tr *Transition) {
	d := u.Drone
	if d.full(u) {
		d.setState(StateReturning)
		return
	}
	if d.Target == world.NoSpace || env.Stock(d.Target, d.TargetResource) == 0 {
		d.Target = world.NoSpace
		if u.Cargo() > 0 {
			d.setState(StateReturning)
		} else {
			d.setState(StateSearch)
		}
		return
	}
	if u.Space != d.Target {
		tr.Moved = env.StepToward(u, d.Target)
		return
	}

	room := d.CargoCapacity - u.Cargo()
	rate := d.HarvestRate
	if rate > room {
		rate = room
	}
	tr.Harvested = env.Harvest(u, d.TargetResource, rate)

	if d.full(u) || env.Stock(d.Target, d.TargetResource) == 0 {
		d.Target = world.NoSpace
		d.setState(StateReturning)
	}
}

func tickReturning(u *Unit, env DroneEnv, tr *Transition) {
	d := u.Drone
	if u.Cargo() == 0 {
		d.setState(StateSearch)
		return
	}
	point, at, ok := env.NearestCollectionPoint(u)
	if !ok {
		d.setState(StateIdle)
		return
	}
	d.Dropoff = point
	if u.Space != at {
		tr.Moved = env.StepToward(u, at)
	}
	if u.Space == at {
		d.setState(StateDeposit)
	}
}

func tickDeposit(u *Unit, env DroneEnv, tr *Transition) {
	d := u.Drone
	if moved, ok := env.Deposit(u, d.Dropoff); ok {
		tr.Deposited = moved
		d.setState(StateSearch)
		return
	}
	d.setState(StateReturning)
}

func tickIdle(u *Unit, env DroneEnv) {
	d := u.Drone
	if u.Cargo() > 0 {
		if _, _, ok := env.NearestCollectionPoint(u); ok {
			d.setState(StateReturning)
		}
		return
	}
	if _, ok := env.FindResource(u, d.TargetResource); ok {
		d.setState(StateSearch)
	}
}
