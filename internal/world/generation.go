// World generation: body placement, spiral space layout, and resource
// scattering. Resource richness comes from simplex noise over system-space
// coordinates so neighboring spaces share deposits.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/eos/internal/resource"
)

// BodySpec names a body and how many spaces it holds.
type BodySpec struct {
	Name   string `yaml:"name" json:"name"`
	Spaces int    `yaml:"spaces" json:"spaces"`
}

// GenConfig holds world generation parameters.
type GenConfig struct {
	SystemID     string
	SystemName   string
	Seed         int64 // 0 = random
	Bodies       []BodySpec
	Pool         []resource.ID // Resources that can appear on spaces
	MinResources int           // Distinct resources per space, inclusive
	MaxResources int
	BodyGap      int     // Empty hexes kept between bodies
	Richness     float64 // Max extra units per resource from noise
}

// DefaultBodies mirrors the stock Eos layout.
func DefaultBodies() []BodySpec {
	return []BodySpec{
		{Name: "Planet 1", Spaces: 20},
		{Name: "Planet 2", Spaces: 35},
		{Name: "Planet 3", Spaces: 30},
		{Name: "Asteroid Clump", Spaces: 10},
		{Name: "Moon 1", Spaces: 15},
		{Name: "Comet", Spaces: 10},
		{Name: "Planet 4", Spaces: 50},
	}
}

// Generate builds a complete system. The same config and seed always yield
// the same system.
func Generate(cfg GenConfig) *System {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))
	richNoise := opensimplex.NewNormalized(seed + 1)

	sys := NewSystem(cfg.SystemID, cfg.SystemName)
	used := make(map[HexCoord]bool)

	for _, spec := range cfg.Bodies {
		if spec.Spaces <= 0 {
			continue
		}
		radius := RadiusForCount(spec.Spaces)
		anchor := placeBody(used, radius, cfg.BodyGap)
		body := sys.AddBody(spec.Name, anchor, spec.Spaces)
		for _, id := range body.Spaces {
			scatterResources(sys, id, cfg, rng, richNoise)
		}
	}

	return sys
}

// placeBody walks candidate anchors outward from the origin and claims the
// first whose padded footprint is free.
func placeBody(used map[HexCoord]bool, radius, gap int) HexCoord {
	padded := radius + gap
	for ring := 0; ; ring++ {
		for _, c := range Ring(HexCoord{}, ring) {
			if areaFree(used, c, padded) {
				for _, h := range Spiral(c, cellsInRadius(radius)) {
					used[h] = true
				}
				return c
			}
		}
	}
}

func areaFree(used map[HexCoord]bool, center HexCoord, radius int) bool {
	for _, h := range Spiral(center, cellsInRadius(radius)) {
		if used[h] {
			return false
		}
	}
	return true
}

func cellsInRadius(radius int) int {
	return 3*radius*(radius+1) + 1
}

// scatterResources places between MinResources and MaxResources distinct
// resources on a space. Each gets one unit plus a noise-driven bonus.
func scatterResources(sys *System, id SpaceID, cfg GenConfig, rng *rand.Rand, noise opensimplex.Noise) {
	if len(cfg.Pool) == 0 {
		return
	}
	lo, hi := cfg.MinResources, cfg.MaxResources
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	n := lo + rng.Intn(hi-lo+1)
	if n > len(cfg.Pool) {
		n = len(cfg.Pool)
	}

	g := sys.GlobalCoord(id)
	// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
	x := float64(g.Q) + float64(g.R)*0.5
	y := float64(g.R) * math.Sqrt(3.0) / 2.0
	bonus := int(noise.Eval2(x*0.15, y*0.15) * cfg.Richness)
	if bonus < 0 {
		bonus = 0
	}

	inv := sys.Spaces[id].Inventory
	for _, i := range rng.Perm(len(cfg.Pool))[:n] {
		inv.Add(cfg.Pool[i], 1+bonus)
	}
}
