// Exploration: per-unit explored sets, per-player scanned sets, and the
// always-visible body entry spaces. Both sets only ever grow.
package engine

import (
	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

// accessible is the travel predicate for non-local moves and construction:
// explored by the unit, scanned by its owner, or system-accessible.
func (g *Game) accessible(u *agents.Unit, space world.SpaceID) bool {
	if g.systemAccessible[space] || u.HasExplored(space) {
		return true
	}
	if p, ok := g.players[u.Owner]; ok && p.Scanned[space] {
		return true
	}
	return false
}

// visibleTo reports whether a player may see a space's contents: some unit
// of theirs explored it, one of their scanners covers it, or it is
// system-accessible.
func (g *Game) visibleTo(player agents.PlayerID, space world.SpaceID) bool {
	if g.systemAccessible[space] {
		return true
	}
	p, ok := g.players[player]
	if !ok {
		return false
	}
	if p.Scanned[space] {
		return true
	}
	for _, id := range p.Units {
		if u, ok := g.units[id]; ok && u.HasExplored(space) {
			return true
		}
	}
	return false
}

// scan reveals the spaces around a scanner to its owner. System-owned
// scanners reveal nothing.
func (g *Game) scan(s *structures.Structure) int {
	if !s.Capabilities.Scanner || s.Owner == "" {
		return 0
	}
	p, ok := g.players[agents.PlayerID(s.Owner)]
	if !ok {
		return 0
	}
	return p.Reveal(g.sys.WithinRadius(s.Space, g.rules.ScannerRadius))
}

// SystemAccessible returns the always-visible spaces in ascending order.
func (g *Game) SystemAccessible() []world.SpaceID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sys.EntrySpaces()
}
