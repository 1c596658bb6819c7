// Package config loads game rules from YAML and process settings from the
// environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

//go:embed default_rules.yaml
var defaultRules []byte

// MiningDrone is the only unit type factories can build.
const MiningDrone = "mining_drone"

// Rules is the complete set of tunable game constants.
type Rules struct {
	Resources  []string                  `yaml:"resources"`
	Movement   Movement                  `yaml:"movement"`
	Structures map[string]StructureRecipe `yaml:"structures"`
	Production Production                `yaml:"production"`

	ScannerRadius   int `yaml:"scanner_radius"`
	FactoryCooldown int `yaml:"factory_cooldown"`

	Units             map[string]UnitRecipe `yaml:"units"`
	StartingInventory resource.Inventory    `yaml:"starting_inventory"`
	World             WorldRules            `yaml:"world"`
}

// Movement holds travel costs in fuel.
type Movement struct {
	LocalCost     int `yaml:"local_cost" json:"local_cost"`
	InterBodyCost int `yaml:"inter_body_cost" json:"inter_body_cost"`
}

// StructureRecipe is a named bundle of build cost and structure parameters.
type StructureRecipe struct {
	Kind       structures.Kind    `yaml:"kind" json:"kind"`
	Cost       resource.Inventory `yaml:"cost" json:"cost"`
	Network    string             `yaml:"network,omitempty" json:"network,omitempty"`
	TravelCost int                `yaml:"travel_cost,omitempty" json:"travel_cost,omitempty"`
}

// Production holds per-turn yields. PlayerFuelRegen is added to every
// player unit's fuel each turn.
type Production struct {
	FuelPumpRate    int `yaml:"fuel_pump_rate" json:"fuel_pump_rate"`
	CollectorRate   int `yaml:"collector_rate" json:"collector_rate"`
	PlayerFuelRegen int `yaml:"player_fuel_regen" json:"player_fuel_regen"`
}

// UnitRecipe describes a factory-built unit.
type UnitRecipe struct {
	Cost          resource.Inventory `yaml:"cost" json:"cost"`
	Lifespan      int                `yaml:"lifespan" json:"lifespan"`
	CargoCapacity int                `yaml:"cargo_capacity" json:"cargo_capacity"`
	StartingFuel  int                `yaml:"starting_fuel" json:"starting_fuel"`
	HarvestRate   int                `yaml:"harvest_rate" json:"harvest_rate"`
	IdleThreshold int                `yaml:"idle_threshold" json:"idle_threshold"`
}

// WorldRules drives world generation.
type WorldRules struct {
	SystemName       string           `yaml:"system_name"`
	Bodies           []world.BodySpec `yaml:"bodies"`
	MinResources     int              `yaml:"min_resources"`
	MaxResources     int              `yaml:"max_resources"`
	BodyGap          int              `yaml:"body_gap"`
	Richness         float64          `yaml:"richness"`
	SystemPortRecipe string           `yaml:"system_port_recipe"` // Empty = no system ports
}

// DefaultRules returns the embedded stock rules.
func DefaultRules() (*Rules, error) {
	r := &Rules{}
	if err := yaml.Unmarshal(defaultRules, r); err != nil {
		return nil, fmt.Errorf("parse default rules: %w", err)
	}
	return r, nil
}

// LoadRules returns the stock rules with the file at path merged over them.
// An empty path yields the stock rules.
func LoadRules(path string) (*Rules, error) {
	r, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	if path == "" {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("default rules: %w", err)
		}
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

// Validate checks internal consistency. Every resource named in a cost table
// must be a declared resource (or fuel), and no quantity may be negative.
func (r *Rules) Validate() error {
	reg := r.Registry()
	var errs []error

	checkCost := func(where string, cost resource.Inventory) {
		for _, id := range sortedIDs(cost) {
			if !reg.Known(id) {
				errs = append(errs, fmt.Errorf("%s: unknown resource %q", where, id))
			}
			if cost[id] < 0 {
				errs = append(errs, fmt.Errorf("%s: negative amount for %s", where, id))
			}
		}
	}

	if len(r.Resources) == 0 {
		errs = append(errs, errors.New("no resources declared"))
	}
	if r.Movement.LocalCost < 0 || r.Movement.InterBodyCost < 0 {
		errs = append(errs, errors.New("movement costs must be non-negative"))
	}
	if r.Production.FuelPumpRate < 0 || r.Production.CollectorRate < 0 || r.Production.PlayerFuelRegen < 0 {
		errs = append(errs, errors.New("production rates must be non-negative"))
	}
	if r.ScannerRadius < 0 || r.FactoryCooldown < 0 {
		errs = append(errs, errors.New("scanner radius and factory cooldown must be non-negative"))
	}

	for _, key := range r.RecipeKeys() {
		rec := r.Structures[key]
		if _, ok := structures.ParseKind(rec.Kind.String()); !ok {
			errs = append(errs, fmt.Errorf("structure %s: unknown kind", key))
		}
		checkCost("structure "+key, rec.Cost)
		if rec.Kind == structures.KindSpacePort {
			if rec.Network == "" {
				errs = append(errs, fmt.Errorf("structure %s: space port needs a network", key))
			}
			if rec.TravelCost < 0 {
				errs = append(errs, fmt.Errorf("structure %s: negative travel cost", key))
			}
		}
	}

	drone, ok := r.Units[MiningDrone]
	if !ok {
		errs = append(errs, fmt.Errorf("units: %s not defined", MiningDrone))
	} else {
		checkCost("unit "+MiningDrone, drone.Cost)
		if drone.Lifespan <= 0 || drone.CargoCapacity <= 0 || drone.HarvestRate <= 0 {
			errs = append(errs, fmt.Errorf("unit %s: lifespan, cargo capacity and harvest rate must be positive", MiningDrone))
		}
		if drone.StartingFuel < 0 || drone.IdleThreshold < 0 {
			errs = append(errs, fmt.Errorf("unit %s: negative starting fuel or idle threshold", MiningDrone))
		}
	}

	checkCost("starting inventory", r.StartingInventory)

	if len(r.World.Bodies) == 0 {
		errs = append(errs, errors.New("world: no bodies"))
	}
	for _, b := range r.World.Bodies {
		if b.Spaces <= 0 {
			errs = append(errs, fmt.Errorf("world: body %q has no spaces", b.Name))
		}
	}
	if r.World.MinResources < 0 || r.World.MaxResources < r.World.MinResources {
		errs = append(errs, errors.New("world: bad resources-per-space range"))
	}
	if key := r.World.SystemPortRecipe; key != "" {
		if rec, ok := r.Structures[key]; !ok || rec.Kind != structures.KindSpacePort {
			errs = append(errs, fmt.Errorf("world: system port recipe %q is not a space port", key))
		}
	}

	return errors.Join(errs...)
}

// Registry returns the resource registry declared by the rules.
func (r *Rules) Registry() *resource.Registry {
	return resource.NewRegistry(r.Resources)
}

// Recipe looks up a structure recipe by key.
func (r *Rules) Recipe(key string) (StructureRecipe, bool) {
	rec, ok := r.Structures[key]
	return rec, ok
}

// RecipeKeys returns the structure recipe keys in sorted order.
func (r *Rules) RecipeKeys() []string {
	keys := make([]string, 0, len(r.Structures))
	for k := range r.Structures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Params converts a recipe to structure parameters.
func (rec StructureRecipe) Params(key string) structures.Params {
	return structures.Params{Recipe: key, Network: rec.Network, TravelCost: rec.TravelCost}
}

// DroneSpec returns the mining-drone behavior parameters.
func (r *Rules) DroneSpec() agents.DroneSpec {
	u := r.Units[MiningDrone]
	return agents.DroneSpec{
		Lifespan:      u.Lifespan,
		CargoCapacity: u.CargoCapacity,
		HarvestRate:   u.HarvestRate,
		IdleThreshold: u.IdleThreshold,
		StartingFuel:  u.StartingFuel,
	}
}

// Rates returns producer yields.
func (r *Rules) Rates() structures.Rates {
	return structures.Rates{FuelPump: r.Production.FuelPumpRate, Collector: r.Production.CollectorRate}
}

// GenConfig builds world generation parameters. Fuel never appears on spaces.
func (r *Rules) GenConfig(systemID string, seed int64) world.GenConfig {
	pool := make([]resource.ID, 0, len(r.Resources))
	for _, name := range r.Resources {
		if resource.ID(name) != resource.Fuel {
			pool = append(pool, resource.ID(name))
		}
	}
	return world.GenConfig{
		SystemID:     systemID,
		SystemName:   r.World.SystemName,
		Seed:         seed,
		Bodies:       r.World.Bodies,
		Pool:         pool,
		MinResources: r.World.MinResources,
		MaxResources: r.World.MaxResources,
		BodyGap:      r.World.BodyGap,
		Richness:     r.World.Richness,
	}
}

func sortedIDs(inv resource.Inventory) []resource.ID {
	ids := make([]resource.ID, 0, len(inv))
	for id := range inv {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
