package structures

import (
	"errors"
	"fmt"

	"github.com/talgya/eos/internal/resource"
)

var (
	ErrNotCollectionPoint = errors.New("structure does not accept deposits")
	ErrNotFactory         = errors.New("structure is not a factory")
	ErrCooldownActive     = errors.New("factory build cooldown active")
	ErrNotSpacePort       = errors.New("no operational space port")
	ErrNetworkMismatch    = errors.New("space ports are on different networks")
	ErrBadAmount          = errors.New("amount must be positive")
	ErrInsufficient       = errors.New("insufficient resources")
)

// AcceptDeposit moves n of id from src into the structure. The source is
// never driven negative; on any error nothing moves.
func (s *Structure) AcceptDeposit(src resource.Inventory, id resource.ID, n int) error {
	if !s.IsCollectionPoint() {
		return ErrNotCollectionPoint
	}
	if n <= 0 {
		return ErrBadAmount
	}
	if src.Get(id) < n {
		return fmt.Errorf("%w: have %d %s, need %d", ErrInsufficient, src.Get(id), id, n)
	}
	return resource.Transfer(src, s.Inventory, id, n)
}

// AcceptCargo deposits every non-fuel resource in src, all or nothing.
// Returns what was moved.
func (s *Structure) AcceptCargo(src resource.Inventory) (resource.Inventory, error) {
	if !s.IsCollectionPoint() {
		return nil, ErrNotCollectionPoint
	}
	moved := resource.Inventory{}
	for _, id := range src.Keys() {
		if id == resource.Fuel {
			continue
		}
		moved[id] = src.Get(id)
	}
	if _, ok := src.Pay(moved); !ok {
		return nil, ErrInsufficient
	}
	for id, n := range moved {
		s.Inventory.Add(id, n)
	}
	return moved, nil
}

// Rates are the per-turn yields of producer structures.
type Rates struct {
	FuelPump  int // Fuel created per turn
	Collector int // Max units harvested per resource per turn
}

// Produce runs one turn of production. A fuel pump creates fuel; a collector
// harvests from its space's inventory, bounded by what the space holds.
// Returns the amounts gained.
func (s *Structure) Produce(space resource.Inventory, r Rates) resource.Inventory {
	gained := resource.Inventory{}
	if !s.Capabilities.Producer {
		return gained
	}
	switch s.Kind {
	case KindFuelPump:
		s.Inventory.Add(resource.Fuel, r.FuelPump)
		gained.Add(resource.Fuel, r.FuelPump)
	case KindCollector:
		for _, id := range space.Keys() {
			take := r.Collector
			if have := space.Get(id); have < take {
				take = have
			}
			if take <= 0 {
				continue
			}
			if err := resource.Transfer(space, s.Inventory, id, take); err == nil {
				gained.Add(id, take)
			}
		}
	}
	return gained
}

// CanBuildUnit checks the factory cooldown.
func (s *Structure) CanBuildUnit() error {
	if s.Kind != KindFactory {
		return ErrNotFactory
	}
	if s.Cooldown > 0 {
		return fmt.Errorf("%w: %d turns remaining", ErrCooldownActive, s.Cooldown)
	}
	return nil
}

// StartCooldown resets the factory cooldown after a successful build.
func (s *Structure) StartCooldown(turns int) {
	s.Cooldown = turns
}

// DecayCooldown lowers a factory cooldown by one turn, stopping at zero.
func (s *Structure) DecayCooldown() {
	if s.Cooldown > 0 {
		s.Cooldown--
	}
}

// ConnectsTo validates space-port travel from s to dest.
func (s *Structure) ConnectsTo(dest *Structure) error {
	if s == nil || !s.IsSpacePort() || dest == nil || !dest.IsSpacePort() {
		return ErrNotSpacePort
	}
	if s.Network != dest.Network {
		return fmt.Errorf("%w: %q vs %q", ErrNetworkMismatch, s.Network, dest.Network)
	}
	return nil
}
