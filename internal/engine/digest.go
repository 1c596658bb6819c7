package engine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// snapshot is the canonical form hashed into the state digest. Slices are in
// ID order and maps marshal with sorted keys, so equal states hash equally.
type snapshot struct {
	Turn       uint64                 `json:"turn"`
	Spaces     []resource.Inventory   `json:"spaces"`
	Structures []structures.Structure `json:"structures"`
	Units      []unitSnapshot         `json:"units"`
	Players    []playerSnapshot       `json:"players"`
}

type unitSnapshot struct {
	Unit     agents.Unit     `json:"unit"`
	Explored []world.SpaceID `json:"explored,omitempty"`
}

type playerSnapshot struct {
	ID      agents.PlayerID `json:"id"`
	Scanned []world.SpaceID `json:"scanned,omitempty"`
}

func (g *Game) digest() string {
	snap := snapshot{Turn: g.turn}
	for _, sp := range g.sys.Spaces {
		snap.Spaces = append(snap.Spaces, sp.Inventory)
	}
	for _, s := range g.structs {
		snap.Structures = append(snap.Structures, *s)
	}
	for _, id := range g.unitOrder {
		u := g.units[id]
		snap.Units = append(snap.Units, unitSnapshot{Unit: *u, Explored: u.ExploredSpaces()})
	}
	for _, id := range g.playerOrder {
		p := g.players[id]
		snap.Players = append(snap.Players, playerSnapshot{ID: p.ID, Scanned: p.ScannedSpaces()})
	}

	// Every snapshot field marshals infallibly; an error is a programming bug.
	data, err := json.Marshal(snap)
	if err != nil {
		panic(fmt.Sprintf("engine: marshal state snapshot: %v", err))
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digest returns the BLAKE3 hash of the current game state.
func (g *Game) Digest() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.digest()
}
