// Unit spawning: player units with a starting kit, and mining drones built by
// factories.
package agents

import (
	"fmt"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// DroneSpec is the rule set for a mining drone.
type DroneSpec struct {
	Lifespan      int
	CargoCapacity int
	HarvestRate   int
	IdleThreshold int // Lifespan at or below which an unproductive search goes idle
	StartingFuel  int
}

// Spawner hands out unit IDs in creation order.
type Spawner struct {
	nextID UnitID
}

// NewSpawner creates a spawner whose first unit gets ID 1.
func NewSpawner() *Spawner {
	return &Spawner{nextID: 1}
}

func (s *Spawner) take() UnitID {
	id := s.nextID
	s.nextID++
	return id
}

// SpawnPlayerUnit creates a player unit on a space with its own copy of kit.
// The spawn space is explored immediately.
func (s *Spawner) SpawnPlayerUnit(owner *Player, space world.SpaceID, kit resource.Inventory, turn uint64) *Unit {
	id := s.take()
	u := &Unit{
		ID:          id,
		Kind:        UnitPlayer,
		Name:        fmt.Sprintf("%s Unit %d", owner.Name, len(owner.Units)+1),
		Owner:       owner.ID,
		Space:       space,
		Inventory:   kit.Clone(),
		Explored:    make(map[world.SpaceID]bool),
		CreatedTurn: turn,
	}
	u.Explore(space)
	owner.Units = append(owner.Units, id)
	return u
}

// SpawnDrone creates a mining drone at its home factory's space.
func (s *Spawner) SpawnDrone(owner PlayerID, home *structures.Structure, target resource.ID, spec DroneSpec, turn uint64) *Unit {
	id := s.take()
	inv := resource.Inventory{}
	inv.Add(resource.Fuel, spec.StartingFuel)
	return &Unit{
		ID:          id,
		Kind:        UnitAutonomous,
		Name:        fmt.Sprintf("Mining Drone %d", id),
		Owner:       owner,
		Space:       home.Space,
		Inventory:   inv,
		CreatedTurn: turn,
		Drone: &Drone{
			Lifespan:       spec.Lifespan,
			State:          StateSearch,
			TargetResource: target,
			Target:         world.NoSpace,
			Home:           home.ID,
			CargoCapacity:  spec.CargoCapacity,
			HarvestRate:    spec.HarvestRate,
			IdleThreshold:  spec.IdleThreshold,
		},
	}
}
