package agents

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/world"
)

func TestSpawnPlayerUnit(t *testing.T) {
	s := NewSpawner()
	p := NewPlayer("p1", "Ada")
	kit := resource.Inventory{"Silver": 2, resource.Fuel: 10}

	u := s.SpawnPlayerUnit(p, 4, kit, 0)
	assert.Equal(t, UnitID(1), u.ID)
	assert.Equal(t, "Ada Unit 1", u.Name)
	assert.Equal(t, 10, u.Fuel())
	assert.True(t, u.HasExplored(4))
	assert.Equal(t, []UnitID{1}, p.Units)

	u.Inventory.Add("Silver", 1)
	assert.Equal(t, 2, kit.Get("Silver"), "kit is copied")

	second := s.SpawnPlayerUnit(p, 4, kit, 0)
	assert.Equal(t, UnitID(2), second.ID)
}

func TestExploreOnlyGrows(t *testing.T) {
	u := &Unit{Kind: UnitPlayer}
	assert.True(t, u.Explore(3))
	assert.True(t, u.Explore(1))
	assert.False(t, u.Explore(3))
	assert.Equal(t, []world.SpaceID{1, 3}, u.ExploredSpaces())

	drone := &Unit{Kind: UnitAutonomous}
	assert.False(t, drone.Explore(3))
	assert.Empty(t, drone.ExploredSpaces())
}

func TestPlayerReveal(t *testing.T) {
	p := NewPlayer("p1", "")
	assert.Equal(t, "p1", p.Name)
	assert.Equal(t, 2, p.Reveal([]world.SpaceID{5, 2, 5}))
	assert.Equal(t, 0, p.Reveal([]world.SpaceID{2}))
	assert.Equal(t, []world.SpaceID{2, 5}, p.ScannedSpaces())
}

func TestCargoExcludesFuel(t *testing.T) {
	u := &Unit{Inventory: resource.Inventory{"Ice": 2, resource.Fuel: 7}}
	assert.Equal(t, 2, u.Cargo())
	assert.Equal(t, 7, u.Fuel())
	assert.Equal(t, "autonomous", UnitAutonomous.String())
	assert.Equal(t, "returning", StateReturning.String())
}

func TestKindsDecodeByName(t *testing.T) {
	data, err := json.Marshal(struct {
		Kind  UnitKind   `json:"kind"`
		State DroneState `json:"state"`
	}{UnitAutonomous, StateReturning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"autonomous","state":"returning"}`, string(data))

	var back struct {
		Kind  UnitKind   `json:"kind"`
		State DroneState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, UnitAutonomous, back.Kind)
	assert.Equal(t, StateReturning, back.State)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"robot"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"state":"asleep"}`), &back))
}
