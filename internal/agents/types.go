// Package agents provides the unit and player data model and the mining-drone
// state machine that drives autonomous units once per turn.
package agents

import (
	"fmt"
	"sort"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/world"
)

// UnitID is a unique identifier for a unit. IDs grow in creation order.
type UnitID uint64

// PlayerID identifies a player. It is the permission boundary for every
// unit-targeted operation.
type PlayerID string

// UnitKind tags the unit variant.
type UnitKind uint8

const (
	UnitPlayer     UnitKind = iota // Controlled by a player, never destroyed
	UnitAutonomous                 // Driven by the drone state machine until expiry
)

func (k UnitKind) String() string {
	if k == UnitAutonomous {
		return "autonomous"
	}
	return "player"
}

// MarshalText lets kinds appear by name in JSON.
func (k UnitKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *UnitKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*k = UnitPlayer
	case "autonomous":
		*k = UnitAutonomous
	default:
		return fmt.Errorf("unknown unit kind %q", b)
	}
	return nil
}

// Unit is a mobile entity on a space. Player units carry an explored set;
// autonomous units carry drone state instead.
type Unit struct {
	ID     UnitID          `json:"id"`
	Kind   UnitKind        `json:"kind"`
	Name   string          `json:"name"`
	Owner  PlayerID        `json:"owner"`
	Space  world.SpaceID   `json:"space_id"`
	Facing world.Direction `json:"facing"`

	Inventory resource.Inventory `json:"inventory"` // Includes fuel

	// Player units only. Only ever grows.
	Explored map[world.SpaceID]bool `json:"-"`

	// Autonomous units only.
	Drone *Drone `json:"drone,omitempty"`

	CreatedTurn uint64 `json:"created_turn"`
}

// IsAutonomous reports whether the unit is a drone.
func (u *Unit) IsAutonomous() bool {
	return u.Kind == UnitAutonomous
}

// Fuel returns the unit's fuel.
func (u *Unit) Fuel() int {
	return u.Inventory.Get(resource.Fuel)
}

// Cargo returns the non-fuel units carried.
func (u *Unit) Cargo() int {
	return u.Inventory.Total()
}

// Explore adds a space to the explored set. Autonomous units do not
// accumulate one. Returns true if the space is newly explored.
func (u *Unit) Explore(id world.SpaceID) bool {
	if u.Kind != UnitPlayer || u.Explored[id] {
		return false
	}
	if u.Explored == nil {
		u.Explored = make(map[world.SpaceID]bool)
	}
	u.Explored[id] = true
	return true
}

// HasExplored reports whether the unit has explored a space.
func (u *Unit) HasExplored(id world.SpaceID) bool {
	return u.Explored[id]
}

// ExploredSpaces returns the explored set in ascending order.
func (u *Unit) ExploredSpaces() []world.SpaceID {
	return sortedSpaces(u.Explored)
}

// Player owns player units and the spaces revealed by its scanners.
type Player struct {
	ID      PlayerID               `json:"id"`
	Name    string                 `json:"name"`
	Units   []UnitID               `json:"units"`
	Scanned map[world.SpaceID]bool `json:"-"` // Only ever grows
}

// NewPlayer creates a player with no units.
func NewPlayer(id PlayerID, name string) *Player {
	if name == "" {
		name = string(id)
	}
	return &Player{ID: id, Name: name, Scanned: make(map[world.SpaceID]bool)}
}

// Reveal adds spaces to the player's scanned set and returns how many were new.
func (p *Player) Reveal(ids []world.SpaceID) int {
	added := 0
	for _, id := range ids {
		if !p.Scanned[id] {
			p.Scanned[id] = true
			added++
		}
	}
	return added
}

// ScannedSpaces returns the scanned set in ascending order.
func (p *Player) ScannedSpaces() []world.SpaceID {
	return sortedSpaces(p.Scanned)
}

func sortedSpaces(set map[world.SpaceID]bool) []world.SpaceID {
	out := make([]world.SpaceID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
