// Turn orchestration. One turn runs, in fixed order:
//  1. producers yield, scanners refresh, player units refuel
//  2. autonomous units tick in creation order
//  3. factory cooldowns decay
//  4. expired units are removed
package engine

import (
	"log/slog"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
)

// Near-expiry and low-fuel thresholds for the drone summary.
const (
	nearExpiryTurns = 5
	lowFuelLevel    = 2
)

// TurnReport is the outcome of one turn.
type TurnReport struct {
	Turn       uint64                               `json:"turn"`
	Produced   map[structures.ID]resource.Inventory `json:"produced"`
	Autonomous AutonomousSummary                    `json:"autonomous"`
	Units      []UnitView                           `json:"units"`
	System     SystemStats                          `json:"system"`
	Digest     string                               `json:"digest"`
}

// AutonomousSummary describes the drone population after a turn.
type AutonomousSummary struct {
	Processed       int                 `json:"processed"`
	Active          int                 `json:"active"`
	ByState         map[string]int      `json:"by_state"`
	AverageLifespan float64             `json:"average_lifespan"`
	LowFuel         []agents.UnitID     `json:"low_fuel"`
	NearExpiry      []agents.UnitID     `json:"near_expiry"`
	Expired         []agents.UnitID     `json:"expired"`
	StateChanges    []agents.Transition `json:"state_changes"`
}

// SystemStats counts entities after a turn.
type SystemStats struct {
	Bodies     int `json:"bodies"`
	Spaces     int `json:"spaces"`
	Structures int `json:"structures"`
	Players    int `json:"players"`
	Units      int `json:"units"`
}

// AdvanceTime runs one turn. Observers registered with OnTurn see the report
// after the game lock is released.
func (g *Game) AdvanceTime() TurnReport {
	g.mu.Lock()
	report := g.advance()
	observers := append([]func(TurnReport){}, g.observers...)
	g.mu.Unlock()

	for _, fn := range observers {
		fn(report)
	}
	return report
}

func (g *Game) advance() TurnReport {
	g.turn++

	produced := g.runProduction()
	g.refuelPlayerUnits()

	env := droneEnv{g: g}
	summary := AutonomousSummary{ByState: make(map[string]int)}
	var expired []agents.UnitID
	for _, id := range g.unitOrder {
		u := g.units[id]
		if !u.IsAutonomous() {
			continue
		}
		tr := agents.TickDrone(u, env)
		summary.Processed++
		if tr.Changed() {
			summary.StateChanges = append(summary.StateChanges, tr)
		}
		if len(tr.Deposited) > 0 {
			g.addEvent("drone", "%s delivered %s", u.Name, tr.Deposited)
		}
		if u.Drone.State == agents.StateExpired {
			expired = append(expired, id)
		}
	}

	g.decayCooldowns()

	for _, id := range expired {
		g.addEvent("drone", "%s expired", g.units[id].Name)
		g.removeUnit(id)
	}
	summary.Expired = expired
	g.summarizeDrones(&summary)

	report := TurnReport{
		Turn:       g.turn,
		Produced:   produced,
		Autonomous: summary,
		Units:      g.allUnitViews(),
		System:     g.stats(),
		Digest:     g.digest(),
	}

	slog.Info("turn advanced",
		"turn", g.turn,
		"producers", len(produced),
		"drones", summary.Active,
		"expired", len(expired),
		"digest", report.Digest,
	)
	return report
}

func (g *Game) summarizeDrones(s *AutonomousSummary) {
	total := 0
	for _, id := range g.unitOrder {
		u := g.units[id]
		if !u.IsAutonomous() {
			continue
		}
		s.Active++
		s.ByState[u.Drone.State.String()]++
		total += u.Drone.Lifespan
		if u.Fuel() <= lowFuelLevel {
			s.LowFuel = append(s.LowFuel, id)
		}
		if u.Drone.Lifespan <= nearExpiryTurns {
			s.NearExpiry = append(s.NearExpiry, id)
		}
	}
	if s.Active > 0 {
		s.AverageLifespan = float64(total) / float64(s.Active)
	}
}

func (g *Game) stats() SystemStats {
	return SystemStats{
		Bodies:     len(g.sys.Bodies),
		Spaces:     len(g.sys.Spaces),
		Structures: len(g.structs),
		Players:    len(g.players),
		Units:      len(g.units),
	}
}

// AutonomousStatus summarizes the current drone population without
// advancing time.
func (g *Game) AutonomousStatus() AutonomousSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := AutonomousSummary{ByState: make(map[string]int)}
	g.summarizeDrones(&s)
	return s
}
