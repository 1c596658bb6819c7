// Production phase: producer structures yield, scanners refresh their
// owners' revealed spaces and player units regain fuel.
package engine

import (
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
)

// runProduction runs every producer and scanner once, in structure order.
// Returns the yield per producing structure.
func (g *Game) runProduction() map[structures.ID]resource.Inventory {
	produced := make(map[structures.ID]resource.Inventory)
	rates := g.rules.Rates()
	for _, s := range g.structs {
		switch {
		case s.Capabilities.Producer:
			gained := s.Produce(g.sys.Space(s.Space).Inventory, rates)
			if len(gained) > 0 {
				produced[s.ID] = gained
			}
		case s.Capabilities.Scanner:
			g.scan(s)
		}
	}
	return produced
}

// refuelPlayerUnits adds the configured regen to every player unit's fuel.
func (g *Game) refuelPlayerUnits() {
	regen := g.rules.Production.PlayerFuelRegen
	if regen <= 0 {
		return
	}
	for _, id := range g.unitOrder {
		if u := g.units[id]; !u.IsAutonomous() {
			u.Inventory.Add(resource.Fuel, regen)
		}
	}
}

// decayCooldowns lowers every factory cooldown by one.
func (g *Game) decayCooldowns() {
	for _, s := range g.structs {
		if s.Kind == structures.KindFactory {
			s.DecayCooldown()
		}
	}
}
