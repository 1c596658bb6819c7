package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/config"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/world"
)

func TestDroneExpiresAndIsRemoved(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	f := stockedFactory(t, g, u, 1)
	res, err := g.BuildUnit("p1", f.ID, config.MiningDrone, "Iron")
	require.NoError(t, err)
	drone := g.units[res.Unit.ID]
	drone.Drone.Lifespan = 1

	report := g.AdvanceTime()
	assert.Equal(t, []agents.UnitID{drone.ID}, report.Autonomous.Expired)
	assert.Equal(t, 1, report.Autonomous.Processed)
	assert.Zero(t, report.Autonomous.Active)
	require.Len(t, report.Autonomous.StateChanges, 1)
	assert.Equal(t, agents.StateExpired, report.Autonomous.StateChanges[0].To)

	assert.Empty(t, g.ActiveDrones())
	_, err = g.GetUnit("p1", drone.ID)
	assertKind(t, err, KindEntityNotFound)
	assert.Len(t, g.Units("p1"), 1)
}

func TestDroneMinesAndDelivers(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	f := stockedFactory(t, g, u, 1)
	g.sys.Space(alphaEast).Inventory.Add("Iron", 2)

	res, err := g.BuildUnit("p1", f.ID, config.MiningDrone, "Iron")
	require.NoError(t, err)
	drone := g.units[res.Unit.ID]

	// search -> step to 3, collect 1, collect 1, return to 0, deposit.
	want := []agents.DroneState{
		agents.StateCollect,
		agents.StateCollect,
		agents.StateReturning,
		agents.StateDeposit,
		agents.StateSearch,
	}
	for i, state := range want {
		g.AdvanceTime()
		assert.Equal(t, state, drone.Drone.State, "turn %d", i+1)
	}

	assert.Equal(t, 2, f.Inventory.Get("Iron"))
	assert.Zero(t, drone.Cargo())
	assert.Equal(t, alphaEntry, drone.Space)
	assert.Equal(t, 8, drone.Fuel())
	assert.Equal(t, 25, drone.Drone.Lifespan)
	assert.Zero(t, g.sys.Space(alphaEast).Inventory.Get("Iron"))

	var delivered bool
	for _, e := range g.Events(0) {
		if e.Category == "drone" {
			delivered = true
		}
	}
	assert.True(t, delivered)
}

func TestDronesIgnoreForeignCollectionPoints(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	f := stockedFactory(t, g, u, 1)
	res, err := g.BuildUnit("p1", f.ID, config.MiningDrone, "Iron")
	require.NoError(t, err)
	drone := g.units[res.Unit.ID]

	env := droneEnv{g: g}
	id, at, ok := env.NearestCollectionPoint(drone)
	require.True(t, ok)
	assert.Equal(t, f.ID, id)
	assert.Equal(t, alphaEntry, at)

	drone.Owner = "p2"
	_, _, ok = env.NearestCollectionPoint(drone)
	assert.False(t, ok)
}

func TestProducersYieldEachTurn(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	space := g.sys.Space(alphaEntry).Inventory
	space.Add("Ice", 2)
	space.Add("Gas", 1)

	_, _, err := g.BuildStructure("p1", u.ID, "Collector")
	require.NoError(t, err)
	_, _, err = g.BuildStructure("p1", u.ID, "FuelPump")
	require.NoError(t, err)
	collector, pump := g.structs[0], g.structs[1]

	r1 := g.AdvanceTime()
	assert.Equal(t, uint64(1), r1.Turn)
	assert.Equal(t, resource.Inventory{"Ice": 1, "Gas": 1}, r1.Produced[collector.ID])
	assert.Equal(t, resource.Inventory{resource.Fuel: 1}, r1.Produced[pump.ID])

	r2 := g.AdvanceTime()
	assert.Equal(t, resource.Inventory{"Ice": 1}, r2.Produced[collector.ID])

	r3 := g.AdvanceTime()
	assert.NotContains(t, r3.Produced, collector.ID)
	assert.Contains(t, r3.Produced, pump.ID)

	assert.Equal(t, resource.Inventory{"Ice": 2, "Gas": 1}, collector.Inventory)
	assert.Equal(t, 3, pump.Inventory.Get(resource.Fuel))
	assert.Empty(t, space)
	assert.Equal(t, uint64(3), g.Turn())
}

func TestScannerRefreshesEachTurn(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	_, _, err := g.BuildStructure("p1", u.ID, "Scanner")
	require.NoError(t, err)

	p := g.players["p1"]
	p.Scanned = make(map[world.SpaceID]bool)
	require.False(t, g.visibleTo("p1", alphaEast))

	g.AdvanceTime()
	assert.True(t, g.visibleTo("p1", alphaEast))
	assert.Len(t, p.ScannedSpaces(), 7)
}

func TestTurnObserversAndSummary(t *testing.T) {
	g := testGame(t, true)
	u := spawn(t, g, "p1")
	f := stockedFactory(t, g, u, 1)
	_, err := g.BuildUnit("p1", f.ID, config.MiningDrone, "Iron")
	require.NoError(t, err)

	var seen []TurnReport
	g.OnTurn(func(r TurnReport) {
		// Observers run outside the lock, so reading back is safe.
		assert.Equal(t, r.Turn, g.Turn())
		seen = append(seen, r)
	})

	report := g.AdvanceTime()
	require.Len(t, seen, 1)
	assert.Equal(t, report.Digest, seen[0].Digest)
	assert.Equal(t, g.Digest(), report.Digest)

	assert.Equal(t, 1, report.Autonomous.Active)
	assert.Equal(t, 29.0, report.Autonomous.AverageLifespan)
	assert.Equal(t, 1, report.Autonomous.ByState["search"])
	assert.Empty(t, report.Autonomous.LowFuel)
	assert.Len(t, report.Units, 2)

	assert.Equal(t, SystemStats{Bodies: 2, Spaces: 14, Structures: 3, Players: 2, Units: 2}, report.System)

	status := g.AutonomousStatus()
	assert.Equal(t, report.Autonomous.Active, status.Active)
	assert.Zero(t, status.Processed)
}

func TestDroneWalksAroundBodyGaps(t *testing.T) {
	rules, err := config.DefaultRules()
	require.NoError(t, err)
	rules.World.SystemPortRecipe = ""
	sys := world.NewSystem("sys", "Test")
	body := sys.AddBody("Planet 2", world.HexCoord{}, 35)
	g := New(rules, sys)
	g.AddPlayer("p1", "Ada")
	u := spawn(t, g, "p1")

	// The cell between these two is missing from the partial outer ring.
	home, ok := body.At(world.HexCoord{Q: -3, R: 0})
	require.True(t, ok)
	field, ok := body.At(world.HexCoord{Q: -3, R: 3})
	require.True(t, ok)
	u.Space = home
	u.Explore(home)
	f := stockedFactory(t, g, u, 1)
	sys.Space(field).Inventory.Add("Iron", 2)

	res, err := g.BuildUnit("p1", f.ID, config.MiningDrone, "Iron")
	require.NoError(t, err)
	drone := g.units[res.Unit.ID]

	for i := 0; i < 20 && f.Inventory.Get("Iron") < 2; i++ {
		g.AdvanceTime()
	}
	assert.Equal(t, 2, f.Inventory.Get("Iron"))
	assert.Equal(t, home, drone.Space)
	assert.Zero(t, sys.Space(field).Inventory.Get("Iron"))
}

func TestDroneStepsReachEveryTarget(t *testing.T) {
	for _, n := range []int{18, 35} {
		rules, err := config.DefaultRules()
		require.NoError(t, err)
		sys := world.NewSystem("sys", "Test")
		body := sys.AddBody("A", world.HexCoord{}, n)
		g := New(rules, sys)
		g.AddPlayer("p1", "Ada")
		u := spawn(t, g, "p1")
		env := droneEnv{g: g}

		for _, from := range body.Spaces {
			for _, to := range body.Spaces {
				u.Space = from
				u.Inventory[resource.Fuel] = 1000
				for steps := 0; u.Space != to; steps++ {
					require.Less(t, steps, n, "n=%d no progress from %d to %d", n, from, to)
					require.True(t, env.StepToward(u, to), "n=%d stuck from %d to %d at %d", n, from, to, u.Space)
				}
			}
		}
	}
}

func TestPlayerUnitsRegainFuel(t *testing.T) {
	g := testGame(t, false)
	u := spawn(t, g, "p1")
	f := stockedFactory(t, g, u, 1)
	res, err := g.BuildUnit("p1", f.ID, config.MiningDrone, "Iron")
	require.NoError(t, err)
	drone := g.units[res.Unit.ID]
	delete(u.Inventory, resource.Fuel)

	g.AdvanceTime()
	g.AdvanceTime()
	assert.Equal(t, 2, u.Fuel())
	assert.LessOrEqual(t, drone.Fuel(), 10, "drones only burn fuel")

	g.rules.Production.PlayerFuelRegen = 0
	g.AdvanceTime()
	assert.Equal(t, 2, u.Fuel())
}
