// Collection and deposit: moving resources between units, spaces, and
// structures. Both directions are all-or-nothing.
package engine

import (
	"errors"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// Source names where a collection draws from.
type Source struct {
	Space     world.SpaceID
	Structure structures.ID // Non-zero = collect from this structure
}

// FromSpace collects from a space's own inventory.
func FromSpace(id world.SpaceID) Source {
	return Source{Space: id}
}

// FromStructure collects from a structure's inventory.
func FromStructure(id structures.ID) Source {
	return Source{Space: world.NoSpace, Structure: id}
}

// CollectResource moves quantity of a resource into the unit. A quantity of
// zero takes everything available; more than available is rejected whole.
func (g *Game) CollectResource(player agents.PlayerID, id agents.UnitID, res resource.ID, quantity int, src Source) (UnitView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return UnitView{}, err
	}
	rid, err := g.lookupResource(res)
	if err != nil {
		return UnitView{}, err
	}
	if quantity < 0 {
		return UnitView{}, newError(KindInsufficientResources, "quantity must not be negative")
	}

	var from resource.Inventory
	var label string
	if src.Structure != 0 {
		s := g.structure(src.Structure)
		if s == nil {
			return UnitView{}, newError(KindEntityNotFound, "structure %d not found", src.Structure)
		}
		if s.Space != u.Space {
			return UnitView{}, newError(KindInvalidLocation, "%s is not at the unit's space", s.Name)
		}
		if s.Owner != string(player) {
			return UnitView{}, newError(KindPermissionDenied, "player %s does not own structure %d", player, s.ID)
		}
		from, label = s.Inventory, s.Name
	} else {
		sp := g.sys.Space(src.Space)
		if sp == nil {
			return UnitView{}, newError(KindInvalidLocation, "space %d does not exist", src.Space)
		}
		if sp.ID != u.Space {
			return UnitView{}, newError(KindInvalidLocation, "unit is not at %s", sp.Name)
		}
		from, label = sp.Inventory, sp.Name
	}

	available := from.Get(rid)
	if quantity == 0 {
		quantity = available
	}
	if available == 0 || quantity > available {
		need := quantity
		if need == 0 {
			need = 1
		}
		return UnitView{}, shortfallError(resource.Inventory{rid: need - available},
			"%s holds %d %s", label, available, rid)
	}
	if err := resource.Transfer(from, u.Inventory, rid, quantity); err != nil {
		return UnitView{}, newError(KindInsufficientResources, "%v", err)
	}
	return g.unitView(u), nil
}

// DepositResource moves quantity of a resource from the unit into a collection
// point at its space. A quantity of zero deposits everything held.
func (g *Game) DepositResource(player agents.PlayerID, id agents.UnitID, structID structures.ID, res resource.ID, quantity int) (structures.Structure, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return structures.Structure{}, err
	}
	rid, err := g.lookupResource(res)
	if err != nil {
		return structures.Structure{}, err
	}
	s := g.structure(structID)
	if s == nil {
		return structures.Structure{}, newError(KindEntityNotFound, "structure %d not found", structID)
	}
	if s.Space != u.Space {
		return structures.Structure{}, newError(KindInvalidLocation, "%s is not at the unit's space", s.Name)
	}
	if s.Owner != "" && s.Owner != string(player) {
		return structures.Structure{}, newError(KindPermissionDenied, "structure %d belongs to another player", s.ID)
	}
	if quantity < 0 {
		return structures.Structure{}, newError(KindInsufficientResources, "quantity must not be negative")
	}
	if quantity == 0 {
		quantity = u.Inventory.Get(rid)
	}

	switch err := s.AcceptDeposit(u.Inventory, rid, quantity); {
	case err == nil:
	case errors.Is(err, structures.ErrNotCollectionPoint):
		return structures.Structure{}, newError(KindInvalidStructureType, "%s is not a collection point", s.Name)
	default:
		need := quantity
		if need == 0 {
			need = 1
		}
		return structures.Structure{}, shortfallError(resource.Inventory{rid: need - u.Inventory.Get(rid)},
			"unit holds %d %s", u.Inventory.Get(rid), rid)
	}
	return structureView(s), nil
}
