package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/config"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
)

// DefaultDroneTarget is mined when a build names no target resource.
const DefaultDroneTarget resource.ID = "Iron"

// BuildUnitResult reports a factory build.
type BuildUnitResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Unit    *UnitView `json:"unit,omitempty"`
}

// BuildUnit builds an autonomous unit at a factory, paid from the factory's
// own inventory. A successful build restarts the factory cooldown.
func (g *Game) BuildUnit(player agents.PlayerID, factoryID structures.ID, unitType string, target resource.ID) (BuildUnitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.buildUnit(player, factoryID, unitType, target)
	if err != nil {
		return BuildUnitResult{Success: false, Message: err.Error()}, err
	}
	return res, nil
}

func (g *Game) buildUnit(player agents.PlayerID, factoryID structures.ID, unitType string, target resource.ID) (BuildUnitResult, error) {
	f := g.structure(factoryID)
	if f == nil {
		return BuildUnitResult{}, newError(KindEntityNotFound, "structure %d not found", factoryID)
	}
	if f.Kind != structures.KindFactory {
		return BuildUnitResult{}, newError(KindInvalidStructureType, "%s is not a factory", f.Name)
	}
	if f.Owner != string(player) {
		return BuildUnitResult{}, newError(KindPermissionDenied, "player %s does not own factory %d", player, f.ID)
	}
	rec, ok := g.rules.Units[unitType]
	if !ok || unitType != config.MiningDrone {
		return BuildUnitResult{}, newError(KindInvalidStructureType, "unknown unit type %q", unitType)
	}
	if target == "" {
		target = DefaultDroneTarget
	}
	tid, err := g.lookupResource(target)
	if err != nil {
		return BuildUnitResult{}, err
	}
	if err := f.CanBuildUnit(); err != nil {
		return BuildUnitResult{}, newError(KindBuildCooldownActive, "%s: %d turns remaining", f.Name, f.Cooldown)
	}
	if missing, ok := f.Inventory.Pay(rec.Cost); !ok {
		return BuildUnitResult{}, shortfallError(missing, "%s cannot afford a %s", f.Name, unitType)
	}

	u := g.spawner.SpawnDrone(player, f, tid, g.rules.DroneSpec(), g.turn)
	g.addUnit(u)
	f.StartCooldown(g.rules.FactoryCooldown)

	g.addEvent("build", "%s built %s targeting %s", f.Name, u.Name, tid)
	slog.Info("drone built", "unit", u.ID, "factory", f.ID, "target", tid, "player", player)

	view := g.unitView(u)
	return BuildUnitResult{
		Success: true,
		Message: fmt.Sprintf("Built %s targeting %s", u.Name, tid),
		Unit:    &view,
	}, nil
}

// FactoryStatus describes what a factory can build right now.
type FactoryStatus struct {
	Factory   structures.ID      `json:"factory_id"`
	Cooldown  int                `json:"cooldown"`
	Ready     bool               `json:"ready"`
	Inventory resource.Inventory `json:"inventory"`
	UnitTypes []UnitOption       `json:"unit_types"`
}

// UnitOption is one buildable unit type and whether it is affordable.
type UnitOption struct {
	Type       string             `json:"type"`
	Cost       resource.Inventory `json:"cost"`
	Affordable bool               `json:"affordable"`
	Missing    resource.Inventory `json:"missing,omitempty"`
}

// GetFactoryStatus reports a factory's cooldown and buildable unit types.
func (g *Game) GetFactoryStatus(player agents.PlayerID, factoryID structures.ID) (FactoryStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.structure(factoryID)
	if f == nil {
		return FactoryStatus{}, newError(KindEntityNotFound, "structure %d not found", factoryID)
	}
	if f.Kind != structures.KindFactory {
		return FactoryStatus{}, newError(KindInvalidStructureType, "%s is not a factory", f.Name)
	}
	if f.Owner != string(player) {
		return FactoryStatus{}, newError(KindPermissionDenied, "player %s does not own factory %d", player, f.ID)
	}

	rec := g.rules.Units[config.MiningDrone]
	missing := f.Inventory.Shortfall(rec.Cost)
	opt := UnitOption{Type: config.MiningDrone, Cost: rec.Cost.Clone(), Affordable: len(missing) == 0}
	if !opt.Affordable {
		opt.Missing = missing
	}
	return FactoryStatus{
		Factory:   f.ID,
		Cooldown:  f.Cooldown,
		Ready:     f.Cooldown == 0,
		Inventory: f.Inventory.Clone(),
		UnitTypes: []UnitOption{opt},
	}, nil
}
