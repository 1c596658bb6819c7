package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
)

func TestBuildCollectorExactCost(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	u.Inventory = resource.Inventory{"Silver": 2, "Ore": 1}

	uv, sv, err := g.BuildStructure("p1", u.ID, "Collector")
	require.NoError(t, err)
	assert.Zero(t, uv.Inventory.Get("Silver"))
	assert.Zero(t, uv.Inventory.Get("Ore"))
	assert.Empty(t, uv.Inventory)

	require.Len(t, sv.Structures, 1)
	s := sv.Structures[0]
	assert.Equal(t, structures.KindCollector, s.Kind)
	assert.Equal(t, alphaEntry, s.Space)
	assert.Equal(t, "p1", s.Owner)
	assert.True(t, s.Capabilities.Producer)
}

func TestBuildInsufficientResourcesIsAtomic(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	u.Inventory = resource.Inventory{"Silver": 2}

	_, _, err := g.BuildStructure("p1", u.ID, "Collector")
	assertKind(t, err, KindInsufficientResources)
	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, resource.Inventory{"Ore": 1}, engErr.Shortfall)

	assert.Equal(t, resource.Inventory{"Silver": 2}, u.Inventory)
	assert.Empty(t, g.structuresAt(alphaEntry))
}

func TestBuildRejections(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")

	_, _, err := g.BuildStructure("p1", u.ID, "Castle")
	assertKind(t, err, KindInvalidStructureType)

	_, _, err = g.BuildStructure("p2", u.ID, "Collector")
	assertKind(t, err, KindPermissionDenied)

	_, _, err = g.BuildStructure("p1", 77, "Collector")
	assertKind(t, err, KindEntityNotFound)

	assert.Equal(t, 2, u.Inventory.Get("Silver"))
}

func TestBuildSpacePortCarriesRecipeParams(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	u.Inventory.Add("Iron", 4)
	u.Inventory.Add("Crystal", 3)
	u.Inventory.Add("Plasma", 1)

	_, sv, err := g.BuildStructure("p1", u.ID, "AdvancedSpacePort")
	require.NoError(t, err)
	require.Len(t, sv.Structures, 1)
	port := sv.Structures[0]
	assert.Equal(t, structures.KindSpacePort, port.Kind)
	assert.Equal(t, "AdvancedSpacePort", port.Recipe)
	assert.Equal(t, "advanced", port.Network)
	assert.Equal(t, 1, port.TravelCost)
	assert.True(t, port.Operational)
}

func TestScannerRevealsRadius(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	g.sys.Space(alphaEast).Inventory.Add("Ice", 1)

	before := g.GetSystem("p1").Bodies[0].Spaces[alphaEast]
	assert.False(t, before.Visible)

	_, _, err := g.BuildStructure("p1", u.ID, "Scanner")
	require.NoError(t, err)

	after := g.GetSystem("p1").Bodies[0].Spaces[alphaEast]
	assert.True(t, after.Visible)
	assert.Equal(t, resource.Inventory{"Ice": 1}, after.Resources)
	assert.Len(t, g.players["p1"].ScannedSpaces(), 7)

	// Scanned spaces are accessible for travel, but not explored by the unit.
	assert.True(t, g.accessible(u, alphaEast))
	assert.False(t, u.HasExplored(alphaEast))
	assert.False(t, g.visibleTo("p2", alphaEast))
}

func TestBuildingRequirementsAndAffordability(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")

	rec, err := g.BuildingRequirements("Factory")
	require.NoError(t, err)
	assert.Equal(t, resource.Inventory{"Algae": 2, "SpaceDust": 3}, rec.Cost)
	_, err = g.BuildingRequirements("Castle")
	assertKind(t, err, KindInvalidStructureType)
	assert.Len(t, g.AllBuildingRequirements(), 7)

	a, err := g.CanAfford("p1", u.ID, "Settlement")
	require.NoError(t, err)
	assert.True(t, a.Affordable)

	a, err = g.CanAfford("p1", u.ID, "SpacePort")
	require.NoError(t, err)
	assert.False(t, a.Affordable)
	assert.Equal(t, resource.Inventory{"Iron": 3, "Crystal": 1}, a.Missing)

	opts, err := g.BuildOptions("p1", u.ID)
	require.NoError(t, err)
	require.Len(t, opts, 7)
	assert.Equal(t, "AdvancedSpacePort", opts[0].Recipe)
}

func TestBuildOnUnexploredGroundRejected(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	// Drop a unit onto a space it never explored (not reachable through play).
	u.Space = betaInner

	_, _, err := g.BuildStructure("p1", u.ID, "Settlement")
	assertKind(t, err, KindInvalidLocation)
	assert.Equal(t, 4, u.Inventory.Get("Fungus"))
}
