// Package engine holds the game state arena and every operation that mutates
// it. All mutations are serialized through Game: each call validates fully,
// then commits fully, or returns an *Error with no side effects.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/config"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

const maxEvents = 1000

// Event is a notable occurrence in the game.
type Event struct {
	Seq         uint64 `json:"seq"` // Increases by one per event
	Turn        uint64 `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "build", "drone", "move", "turn", ...
}

// Game is the root registry of all game state.
type Game struct {
	mu sync.Mutex

	rules    *config.Rules
	registry *resource.Registry
	sys      *world.System

	players     map[agents.PlayerID]*agents.Player
	playerOrder []agents.PlayerID

	units     map[agents.UnitID]*agents.Unit
	unitOrder []agents.UnitID // Creation order
	spawner   *agents.Spawner

	structs []*structures.Structure // Index = ID-1
	bySpace map[world.SpaceID][]structures.ID

	systemAccessible map[world.SpaceID]bool

	turn     uint64
	events   []Event
	eventSeq uint64

	observers []func(TurnReport)
}

// New creates a game over a generated system. Each body's first space becomes
// system-accessible; when the rules name a system port recipe, an operational
// system-owned space port is placed there too.
func New(rules *config.Rules, sys *world.System) *Game {
	g := &Game{
		rules:            rules,
		registry:         rules.Registry(),
		sys:              sys,
		players:          make(map[agents.PlayerID]*agents.Player),
		units:            make(map[agents.UnitID]*agents.Unit),
		spawner:          agents.NewSpawner(),
		bySpace:          make(map[world.SpaceID][]structures.ID),
		systemAccessible: make(map[world.SpaceID]bool),
	}

	for _, id := range sys.EntrySpaces() {
		g.systemAccessible[id] = true
	}

	if key := rules.World.SystemPortRecipe; key != "" {
		if rec, ok := rules.Recipe(key); ok {
			for _, id := range sys.EntrySpaces() {
				g.addStructure(rec.Kind, id, "", rec.Params(key))
			}
		}
	}

	slog.Info("game created",
		"system", sys.Name,
		"bodies", len(sys.Bodies),
		"spaces", len(sys.Spaces),
		"system_ports", len(g.structs),
	)
	return g
}

// OnTurn registers a callback run after every turn, outside the game lock.
func (g *Game) OnTurn(fn func(TurnReport)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

// Rules returns the rules the game runs under. They must not be mutated.
func (g *Game) Rules() *config.Rules {
	return g.rules
}

// Registry returns the resource registry.
func (g *Game) Registry() *resource.Registry {
	return g.registry
}

// Turn returns the number of completed turns.
func (g *Game) Turn() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

// AddPlayer registers a player. Adding an existing player returns it unchanged.
func (g *Game) AddPlayer(id agents.PlayerID, name string) *agents.Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		return p
	}
	p := agents.NewPlayer(id, name)
	g.players[id] = p
	g.playerOrder = append(g.playerOrder, id)
	g.addEvent("player", "%s joined", p.Name)
	return p
}

// SpawnPlayerUnit places a new unit for player on the first body's entry
// space with the starting inventory.
func (g *Game) SpawnPlayerUnit(player agents.PlayerID) (UnitView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[player]
	if !ok {
		return UnitView{}, newError(KindEntityNotFound, "player %s not found", player)
	}
	if len(g.sys.Bodies) == 0 {
		return UnitView{}, newError(KindInvalidLocation, "system has no bodies")
	}
	spawn := g.sys.Bodies[0].Entry()
	u := g.spawner.SpawnPlayerUnit(p, spawn, g.rules.StartingInventory, g.turn)
	g.addUnit(u)
	g.addEvent("spawn", "%s arrived at %s", u.Name, g.sys.Space(spawn).Name)
	return g.unitView(u), nil
}

func (g *Game) addUnit(u *agents.Unit) {
	g.units[u.ID] = u
	g.unitOrder = append(g.unitOrder, u.ID)
}

func (g *Game) removeUnit(id agents.UnitID) {
	delete(g.units, id)
	for i, uid := range g.unitOrder {
		if uid == id {
			g.unitOrder = append(g.unitOrder[:i], g.unitOrder[i+1:]...)
			break
		}
	}
}

func (g *Game) addStructure(k structures.Kind, space world.SpaceID, owner string, p structures.Params) *structures.Structure {
	s := structures.New(structures.ID(len(g.structs)+1), k, space, owner, p)
	s.BuiltTurn = g.turn
	g.structs = append(g.structs, s)
	g.bySpace[space] = append(g.bySpace[space], s.ID)
	return s
}

func (g *Game) structure(id structures.ID) *structures.Structure {
	if id == 0 || int(id) > len(g.structs) {
		return nil
	}
	return g.structs[id-1]
}

func (g *Game) structuresAt(space world.SpaceID) []*structures.Structure {
	ids := g.bySpace[space]
	out := make([]*structures.Structure, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.structs[id-1])
	}
	return out
}

// playerUnit resolves a unit the player may command.
func (g *Game) playerUnit(player agents.PlayerID, id agents.UnitID) (*agents.Unit, error) {
	u, ok := g.units[id]
	if !ok {
		return nil, newError(KindEntityNotFound, "unit %d not found", id)
	}
	if u.Owner != player || u.Kind != agents.UnitPlayer {
		return nil, newError(KindPermissionDenied, "player %s does not control unit %d", player, id)
	}
	return u, nil
}

func (g *Game) lookupResource(name resource.ID) (resource.ID, error) {
	id, ok := g.registry.Lookup(string(name))
	if !ok {
		return "", newError(KindEntityNotFound, "unknown resource %q", name)
	}
	return id, nil
}

func (g *Game) addEvent(category, format string, args ...any) {
	g.eventSeq++
	g.events = append(g.events, Event{
		Seq:         g.eventSeq,
		Turn:        g.turn,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if len(g.events) > maxEvents {
		g.events = g.events[len(g.events)-maxEvents:]
	}
}

// Events returns up to n of the most recent events, oldest first.
func (g *Game) Events(n int) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n <= 0 || n > len(g.events) {
		n = len(g.events)
	}
	out := make([]Event, n)
	copy(out, g.events[len(g.events)-n:])
	return out
}

// EventsSince returns the retained events with a sequence number above seq,
// oldest first.
func (g *Game) EventsSince(seq uint64) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := sort.Search(len(g.events), func(i int) bool { return g.events[i].Seq > seq })
	out := make([]Event, len(g.events)-i)
	copy(out, g.events[i:])
	return out
}
