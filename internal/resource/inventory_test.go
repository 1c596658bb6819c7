package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry([]string{"Iron", "SpaceDust"})
	id, ok := r.Lookup("spacedust")
	require.True(t, ok)
	assert.Equal(t, ID("SpaceDust"), id)

	assert.True(t, r.Known(Fuel))
	_, ok = r.Lookup("Mithril")
	assert.False(t, ok)
	assert.Equal(t, []ID{"Iron", "SpaceDust", Fuel}, r.IDs())
}

func TestPayIsAllOrNothing(t *testing.T) {
	inv := Inventory{"Silver": 2, "Ore": 1}

	missing, ok := inv.Pay(Inventory{"Silver": 2, "Ore": 2})
	assert.False(t, ok)
	assert.Equal(t, Inventory{"Ore": 1}, missing)
	assert.Equal(t, Inventory{"Silver": 2, "Ore": 1}, inv)

	_, ok = inv.Pay(Inventory{"Silver": 2, "Ore": 1})
	require.True(t, ok)
	assert.Empty(t, inv)
}

func TestTakeAndTransfer(t *testing.T) {
	src := Inventory{"Ice": 3}
	dst := Inventory{}

	assert.Error(t, Transfer(src, dst, "Ice", 4))
	assert.Equal(t, 3, src.Get("Ice"))
	assert.Empty(t, dst)

	require.NoError(t, Transfer(src, dst, "Ice", 3))
	assert.Zero(t, src.Get("Ice"))
	assert.NotContains(t, src, ID("Ice"))
	assert.Equal(t, 3, dst.Get("Ice"))

	assert.Error(t, src.Take("Ice", -1))
	assert.NoError(t, Inventory(nil).Take("Ice", 0))
}

func TestTotalIgnoresFuel(t *testing.T) {
	inv := Inventory{"Ice": 3, "Gas": 2, Fuel: 9}
	assert.Equal(t, 5, inv.Total())
	assert.Equal(t, []ID{"Gas", "Ice", Fuel}, inv.Keys())
	assert.Equal(t, "{Gas:2, Ice:3, fuel:9}", inv.String())

	c := inv.Clone()
	c.Add("Gas", 1)
	assert.Equal(t, 2, inv.Get("Gas"))
}

func TestAddNegativePanics(t *testing.T) {
	assert.Panics(t, func() { Inventory{}.Add("Ice", -1) })
}
