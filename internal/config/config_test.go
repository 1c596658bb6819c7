package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
)

func TestDefaultRules(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	assert.Len(t, r.Resources, 23)
	assert.Equal(t, 1, r.Movement.LocalCost)
	assert.Equal(t, 5, r.Movement.InterBodyCost)

	collector, ok := r.Recipe("Collector")
	require.True(t, ok)
	assert.Equal(t, structures.KindCollector, collector.Kind)
	assert.Equal(t, resource.Inventory{"Silver": 2, "Ore": 1}, collector.Cost)

	adv, ok := r.Recipe("AdvancedSpacePort")
	require.True(t, ok)
	assert.Equal(t, structures.KindSpacePort, adv.Kind)
	assert.Equal(t, "advanced", adv.Network)
	assert.Equal(t, 1, adv.TravelCost)

	drone := r.DroneSpec()
	assert.Equal(t, 30, drone.Lifespan)
	assert.Equal(t, 10, drone.CargoCapacity)
	assert.Equal(t, resource.Inventory{"Iron": 10, resource.Fuel: 5}, r.Units[MiningDrone].Cost)

	assert.Equal(t, 10, r.StartingInventory.Get(resource.Fuel))
	assert.Equal(t, 1, r.Production.PlayerFuelRegen)
	assert.Len(t, r.World.Bodies, 7)
}

func TestStartingInventoryAffordsEachStockStructure(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)
	for _, key := range []string{"Collector", "Factory", "Settlement", "FuelPump", "Scanner"} {
		rec, _ := r.Recipe(key)
		assert.True(t, r.StartingInventory.Covers(rec.Cost), key)
	}
}

func TestLoadRulesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	override := `
movement:
  local_cost: 2
  inter_body_cost: 7
structures:
  Beacon:
    kind: Scanner
    cost: {Quartz: 2}
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Movement.LocalCost)
	assert.Equal(t, 7, r.Movement.InterBodyCost)
	_, ok := r.Recipe("Beacon")
	assert.True(t, ok)
	_, ok = r.Recipe("Collector")
	assert.True(t, ok, "stock recipes survive the overlay")
}

func TestValidateRejectsUnknownResource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	override := `
structures:
  Collector:
    kind: Collector
    cost: {Mithril: 1}
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mithril")
}

func TestValidateRejectsBadKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("structures:\n  Castle:\n    kind: Castle\n"), 0o644))
	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestValidateSpacePortNeedsNetwork(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)
	rec := r.Structures["SpacePort"]
	rec.Network = ""
	r.Structures["SpacePort"] = rec
	assert.Error(t, r.Validate())
}

func TestLoadRulesWithoutPath(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Movement.InterBodyCost)
}

func TestValidateRejectsNegativeFuelRegen(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)
	r.Production.PlayerFuelRegen = -1
	assert.Error(t, r.Validate())
}

func TestGenConfig(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)
	cfg := r.GenConfig("sys", 9)
	assert.Equal(t, "Eos", cfg.SystemName)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Len(t, cfg.Pool, 23)
	assert.NotContains(t, cfg.Pool, resource.Fuel)
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, time.Duration(0), s.TurnInterval)
	assert.Equal(t, []string{"player1"}, s.PlayerIDs())
}

func TestLoadSettingsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	env := "EOS_PORT=9090\nEOS_PLAYERS=alice, bob\nEOS_TURN_INTERVAL=5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Setenv("EOS_PORT", "9191")
	t.Setenv("EOS_LOG_LEVEL", "debug")

	s, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 9191, s.Port, "environment wins")
	assert.Equal(t, 5*time.Second, s.TurnInterval)
	assert.Equal(t, []string{"alice", "bob"}, s.PlayerIDs())
	assert.Equal(t, "DEBUG", s.Level().String())
}
