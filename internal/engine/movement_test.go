package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

func setFuel(u *agents.Unit, n int) {
	delete(u.Inventory, resource.Fuel)
	u.Inventory.Add(resource.Fuel, n)
}

func TestLocalMoveExplores(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	setFuel(u, 3)
	require.False(t, u.HasExplored(alphaEast))

	v, err := g.MoveUnit("p1", u.ID, Toward(world.DirEast))
	require.NoError(t, err)
	assert.Equal(t, alphaEast, v.Space)
	assert.Equal(t, 2, v.Inventory.Get(resource.Fuel))
	assert.Contains(t, v.Explored, alphaEast)
	assert.Equal(t, world.DirEast, v.Facing)
}

func TestLocalMoveOffEdgeRejected(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	_, err := g.MoveUnit("p1", u.ID, Toward(world.DirEast))
	require.NoError(t, err)

	_, err = g.MoveUnit("p1", u.ID, Toward(world.DirEast))
	assertKind(t, err, KindInvalidLocation)
	assert.Equal(t, 9, u.Fuel())

	_, err = g.MoveUnit("p1", u.ID, Toward(world.Direction(9)))
	assertKind(t, err, KindInvalidLocation)
}

func TestDirectMoveToAdjacentIsLocal(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")

	v, err := g.MoveUnit("p1", u.ID, To(alphaEast))
	require.NoError(t, err)
	assert.Equal(t, 9, v.Inventory.Get(resource.Fuel))
	assert.Equal(t, world.DirEast, v.Facing)
}

func TestInterBodyMoveInsufficientFuel(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	setFuel(u, 4)
	u.Explore(betaInner)

	before, err := g.GetUnit("p1", u.ID)
	require.NoError(t, err)

	_, err = g.MoveUnit("p1", u.ID, To(betaInner))
	assertKind(t, err, KindInsufficientFuel)
	first, _ := g.GetUnit("p1", u.ID)

	_, err = g.MoveUnit("p1", u.ID, To(betaInner))
	assertKind(t, err, KindInsufficientFuel)
	second, _ := g.GetUnit("p1", u.ID)

	assert.Equal(t, before, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 4, u.Fuel())
}

func TestInterBodyMove(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")

	v, err := g.MoveUnit("p1", u.ID, To(betaEntry))
	require.NoError(t, err)
	assert.Equal(t, betaEntry, v.Space)
	assert.Equal(t, 5, v.Inventory.Get(resource.Fuel))
	assert.Equal(t, "Beta", v.BodyName)
}

func TestInterBodyMoveRequiresAccess(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")

	_, err := g.MoveUnit("p1", u.ID, To(betaInner))
	assertKind(t, err, KindInvalidLocation)
	assert.Equal(t, 10, u.Fuel())

	g.players["p1"].Reveal([]world.SpaceID{betaInner})
	_, err = g.MoveUnit("p1", u.ID, To(betaInner))
	require.NoError(t, err)
}

func TestNonAdjacentSameBodyRejected(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	_, err := g.MoveUnit("p1", u.ID, To(alphaEast))
	require.NoError(t, err)

	// Space 6 (-1,0) is two steps west of space 3 (1,0).
	_, err = g.MoveUnit("p1", u.ID, To(6))
	assertKind(t, err, KindInvalidLocation)

	_, err = g.MoveUnit("p1", u.ID, To(alphaEast))
	assertKind(t, err, KindInvalidLocation)

	_, err = g.MoveUnit("p1", u.ID, To(999))
	assertKind(t, err, KindInvalidLocation)
}

func TestSpacePortTravelUsesOriginCost(t *testing.T) {
	g := testGame(t, true)
	u := spawn(t, g, "p1")

	v, err := g.MoveUnit("p1", u.ID, To(betaEntry))
	require.NoError(t, err)
	assert.Equal(t, 8, v.Inventory.Get(resource.Fuel), "system port costs 2, not the inter-body 5")

	// A cheaper port at the origin on the same network wins.
	g.addStructure(structures.KindSpacePort, betaEntry, "p1", structures.Params{Network: "default", TravelCost: 1})
	v, err = g.MoveUnit("p1", u.ID, To(alphaEntry))
	require.NoError(t, err)
	assert.Equal(t, 7, v.Inventory.Get(resource.Fuel))
}

func TestSpacePortBetweenSameBodySpaces(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	_, err := g.MoveUnit("p1", u.ID, Toward(world.DirWest))
	require.NoError(t, err)

	// Space 6 (-1,0) and space 3 (1,0) are two steps apart.
	g.addStructure(structures.KindSpacePort, 6, "p1", structures.Params{Network: "default", TravelCost: 4})
	g.addStructure(structures.KindSpacePort, alphaEast, "p1", structures.Params{Network: "default", TravelCost: 3})
	u.Explore(alphaEast)

	v, err := g.MoveUnit("p1", u.ID, To(alphaEast))
	require.NoError(t, err)
	assert.Equal(t, alphaEast, v.Space)
	assert.Equal(t, 5, v.Inventory.Get(resource.Fuel), "one local step, then the origin port's cost of 4")
}

func TestNonOperationalPortIsAbsent(t *testing.T) {
	g := testGame(t, true)
	u := spawn(t, g, "p1")
	g.structs[0].Operational = false

	v, err := g.MoveUnit("p1", u.ID, To(betaEntry))
	require.NoError(t, err)
	assert.Equal(t, 5, v.Inventory.Get(resource.Fuel), "falls back to the inter-body cost")
}

func TestValidateSpacePortTravelNetworkMismatch(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	g.addStructure(structures.KindSpacePort, alphaEntry, "p1", structures.Params{Network: "default", TravelCost: 2})
	g.addStructure(structures.KindSpacePort, betaEntry, "p1", structures.Params{Network: "advanced", TravelCost: 1})

	_, err := g.ValidateSpacePortTravel("p1", u.ID, alphaEntry, betaEntry)
	assertKind(t, err, KindNetworkMismatch)

	// Moving still works, at the inter-body rate.
	v, err := g.MoveUnit("p1", u.ID, To(betaEntry))
	require.NoError(t, err)
	assert.Equal(t, 5, v.Inventory.Get(resource.Fuel))
}

func TestValidateSpacePortTravel(t *testing.T) {
	g := testGame(t, true)
	u := spawn(t, g, "p1")

	cost, err := g.ValidateSpacePortTravel("p1", u.ID, alphaEntry, betaEntry)
	require.NoError(t, err)
	assert.Equal(t, 2, cost)

	_, err = g.ValidateSpacePortTravel("p1", u.ID, alphaEast, betaEntry)
	assertKind(t, err, KindInvalidLocation)

	setFuel(u, 1)
	_, err = g.ValidateSpacePortTravel("p1", u.ID, alphaEntry, betaEntry)
	assertKind(t, err, KindInsufficientFuel)
}

func TestMovePermission(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	_, err := g.MoveUnit("p2", u.ID, Toward(world.DirEast))
	assertKind(t, err, KindPermissionDenied)
	_, err = g.MoveUnit("p1", 42, Toward(world.DirEast))
	assertKind(t, err, KindEntityNotFound)
}

func TestFuelNeverNegativeAndExploredGrows(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")

	prev := len(u.ExploredSpaces())
	for i := 0; i < 40; i++ {
		d := world.Direction(i % world.NumDirections)
		_, _ = g.MoveUnit("p1", u.ID, Toward(d))
		_, _ = g.MoveUnit("p1", u.ID, To(betaEntry))
		assert.GreaterOrEqual(t, u.Fuel(), 0)
		now := len(u.ExploredSpaces())
		assert.GreaterOrEqual(t, now, prev)
		prev = now
	}
	assert.Zero(t, u.Fuel())
}

func TestGetMovementOptions(t *testing.T) {
	g := testGame(t, true)
	u := spawn(t, g, "p1")

	opts, err := g.GetMovementOptions("p1", u.ID)
	require.NoError(t, err)

	local := 0
	var port *MoveOption
	for i, o := range opts {
		switch o.Mode {
		case TravelLocal:
			local++
			require.NotNil(t, o.Direction)
			assert.Equal(t, 1, o.Cost)
		case TravelSpacePort:
			port = &opts[i]
		}
	}
	assert.Equal(t, 6, local)
	require.NotNil(t, port)
	assert.Equal(t, betaEntry, port.Target)
	assert.Equal(t, 2, port.Cost)
	assert.True(t, port.Affordable)

	routes, err := g.GetSpacePortRoutes("p1", u.ID)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Beta", routes[0].BodyName)
	assert.Equal(t, "default", routes[0].Network)
}

func TestGetMovementOptionsInterBody(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	setFuel(u, 3)

	opts, err := g.GetMovementOptions("p1", u.ID)
	require.NoError(t, err)
	last := opts[len(opts)-1]
	assert.Equal(t, TravelInterBody, last.Mode)
	assert.Equal(t, 5, last.Cost)
	assert.False(t, last.Affordable)

	routes, err := g.GetSpacePortRoutes("p1", u.ID)
	require.NoError(t, err)
	assert.Empty(t, routes)
}
