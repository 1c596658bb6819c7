package engine

import (
	"log/slog"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/config"
	"github.com/talgya/eos/internal/resource"
)

// BuildStructure builds a recipe at the unit's space, paid in full from the
// unit's inventory.
func (g *Game) BuildStructure(player agents.PlayerID, id agents.UnitID, recipe string) (UnitView, SpaceView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return UnitView{}, SpaceView{}, err
	}
	if !g.accessible(u, u.Space) {
		return UnitView{}, SpaceView{}, newError(KindInvalidLocation, "cannot build on unexplored ground")
	}
	rec, ok := g.rules.Recipe(recipe)
	if !ok {
		return UnitView{}, SpaceView{}, newError(KindInvalidStructureType, "unknown structure type %q", recipe)
	}
	if missing, ok := u.Inventory.Pay(rec.Cost); !ok {
		return UnitView{}, SpaceView{}, shortfallError(missing, "cannot afford %s", recipe)
	}

	s := g.addStructure(rec.Kind, u.Space, string(player), rec.Params(recipe))
	revealed := g.scan(s)

	sp := g.sys.Space(u.Space)
	g.addEvent("build", "%s built a %s at %s", u.Name, s.Name, sp.Name)
	slog.Debug("structure built", "structure", s.ID, "kind", s.Kind, "space", sp.Name, "player", player, "revealed", revealed)
	return g.unitView(u), g.spaceView(player, sp), nil
}

// BuildingRequirements returns a recipe's cost and parameters.
func (g *Game) BuildingRequirements(recipe string) (config.StructureRecipe, error) {
	rec, ok := g.rules.Recipe(recipe)
	if !ok {
		return config.StructureRecipe{}, newError(KindInvalidStructureType, "unknown structure type %q", recipe)
	}
	rec.Cost = rec.Cost.Clone()
	return rec, nil
}

// AllBuildingRequirements returns every recipe keyed by name.
func (g *Game) AllBuildingRequirements() map[string]config.StructureRecipe {
	out := make(map[string]config.StructureRecipe, len(g.rules.Structures))
	for _, key := range g.rules.RecipeKeys() {
		rec := g.rules.Structures[key]
		rec.Cost = rec.Cost.Clone()
		out[key] = rec
	}
	return out
}

// Affordability reports what a unit can build.
type Affordability struct {
	Recipe     string             `json:"recipe"`
	Affordable bool               `json:"affordable"`
	Missing    resource.Inventory `json:"missing,omitempty"`
}

// CanAfford checks a unit's inventory against one recipe.
func (g *Game) CanAfford(player agents.PlayerID, id agents.UnitID, recipe string) (Affordability, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return Affordability{}, err
	}
	rec, ok := g.rules.Recipe(recipe)
	if !ok {
		return Affordability{}, newError(KindInvalidStructureType, "unknown structure type %q", recipe)
	}
	return affordability(recipe, u.Inventory, rec.Cost), nil
}

// BuildOptions checks a unit's inventory against every recipe, in name order.
func (g *Game) BuildOptions(player agents.PlayerID, id agents.UnitID) ([]Affordability, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := g.playerUnit(player, id)
	if err != nil {
		return nil, err
	}
	keys := g.rules.RecipeKeys()
	out := make([]Affordability, 0, len(keys))
	for _, key := range keys {
		out = append(out, affordability(key, u.Inventory, g.rules.Structures[key].Cost))
	}
	return out, nil
}

func affordability(key string, inv, cost resource.Inventory) Affordability {
	missing := inv.Shortfall(cost)
	a := Affordability{Recipe: key, Affordable: len(missing) == 0}
	if !a.Affordable {
		a.Missing = missing
	}
	return a
}
