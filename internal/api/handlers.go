package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/engine"
	"github.com/talgya/eos/internal/journal"
	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/structures"
	"github.com/talgya/eos/internal/world"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func uintParam(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+" id")
		return 0, false
	}
	return n, true
}

func unitParam(w http.ResponseWriter, r *http.Request) (agents.UnitID, bool) {
	n, ok := uintParam(w, r, "unit")
	return agents.UnitID(n), ok
}

func structureParam(w http.ResponseWriter, r *http.Request) (structures.ID, bool) {
	n, ok := uintParam(w, r, "structure")
	return structures.ID(n), ok
}

// ── Public ─────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	drones := s.Game.AutonomousStatus()
	writeJSON(w, map[string]any{
		"turn":              s.Game.Turn(),
		"digest":            s.Game.Digest(),
		"players":           len(s.Game.Players()),
		"drones":            drones.Active,
		"clients":           s.hub.Clients(),
		"system_accessible": s.Game.SystemAccessible(),
		"time":              time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules := s.Game.Rules()
	writeJSON(w, map[string]any{
		"resources":        s.Game.Registry().IDs(),
		"movement":         rules.Movement,
		"structures":       s.Game.AllBuildingRequirements(),
		"units":            rules.Units,
		"production":       rules.Production,
		"scanner_radius":   rules.ScannerRadius,
		"factory_cooldown": rules.FactoryCooldown,
	})
}

func (s *Server) handleStructureRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Game.BuildingRequirements(chi.URLParam(r, "recipe"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleSpacePorts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.SpacePorts())
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Players())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Events(limitParam(r)))
}

func (s *Server) handleJournalTurns(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	turns, err := s.Journal.Turns(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, turns)
}

func (s *Server) handleJournalTurn(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	turn, ok := uintParam(w, r, "turn")
	if !ok {
		return
	}
	report, err := s.Journal.Report(r.Context(), turn)
	switch {
	case errors.Is(err, journal.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, report)
	}
}

func (s *Server) handleJournalEvents(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	events, err := s.Journal.RecentEvents(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, events)
}

// ── Player reads ───────────────────────────────────────────────────────

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.serveWS(w, r, string(playerFrom(r)))
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.GetSystem(playerFrom(r)))
}

func (s *Server) handleSpace(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "space"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid space id")
		return
	}
	v, err := s.Game.GetSpace(playerFrom(r), world.SpaceID(n))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v)
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	id, ok := structureParam(w, r)
	if !ok {
		return
	}
	v, err := s.Game.GetStructure(playerFrom(r), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	units := s.Game.Units(playerFrom(r))
	if units == nil {
		units = []engine.UnitView{}
	}
	writeJSON(w, units)
}

func (s *Server) handleDrones(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r)
	out := []engine.UnitView{}
	for _, d := range s.Game.ActiveDrones() {
		if d.Owner == player {
			out = append(out, d)
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	v, err := s.Game.GetUnit(playerFrom(r), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v)
}

func (s *Server) handleMoveOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	opts, err := s.Game.GetMovementOptions(playerFrom(r), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, opts)
}

func (s *Server) handlePortRoutes(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	routes, err := s.Game.GetSpacePortRoutes(playerFrom(r), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if routes == nil {
		routes = []engine.PortRoute{}
	}
	writeJSON(w, routes)
}

func (s *Server) handlePortTravel(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	from, errFrom := strconv.Atoi(q.Get("from"))
	to, errTo := strconv.Atoi(q.Get("to"))
	if errFrom != nil || errTo != nil {
		writeError(w, http.StatusBadRequest, "from and to space ids required")
		return
	}
	cost, err := s.Game.ValidateSpacePortTravel(playerFrom(r), id, world.SpaceID(from), world.SpaceID(to))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"valid": true, "fuel_cost": cost})
}

func (s *Server) handleBuildOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	opts, err := s.Game.BuildOptions(playerFrom(r), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, opts)
}

func (s *Server) handleCanAfford(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	a, err := s.Game.CanAfford(playerFrom(r), id, chi.URLParam(r, "recipe"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, a)
}

func (s *Server) handleFactoryStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := structureParam(w, r)
	if !ok {
		return
	}
	st, err := s.Game.GetFactoryStatus(playerFrom(r), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, st)
}

// ── Player commands ────────────────────────────────────────────────────

type moveRequest struct {
	Direction string `json:"direction,omitempty"`
	Target    *int   `json:"target_space_id,omitempty"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var intent engine.MoveIntent
	switch {
	case req.Target != nil && req.Direction != "":
		writeError(w, http.StatusBadRequest, "give direction or target_space_id, not both")
		return
	case req.Target != nil:
		intent = engine.To(world.SpaceID(*req.Target))
	case req.Direction != "":
		d, ok := world.ParseDirection(req.Direction)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown direction "+strconv.Quote(req.Direction))
			return
		}
		intent = engine.Toward(d)
	default:
		writeError(w, http.StatusBadRequest, "direction or target_space_id required")
		return
	}

	v, err := s.Game.MoveUnit(playerFrom(r), id, intent)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v)
}

type buildRequest struct {
	Recipe string `json:"recipe"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	var req buildRequest
	if !decodeBody(w, r, &req) {
		return
	}
	unit, space, err := s.Game.BuildStructure(playerFrom(r), id, req.Recipe)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"unit": unit, "space": space})
}

type collectRequest struct {
	Resource  string `json:"resource"`
	Quantity  int    `json:"quantity"`               // 0 = all
	Space     *int   `json:"space_id,omitempty"`     // Default: the unit's space
	Structure uint64 `json:"structure_id,omitempty"` // Collect from a structure instead
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	var req collectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player := playerFrom(r)

	var src engine.Source
	switch {
	case req.Structure != 0:
		src = engine.FromStructure(structures.ID(req.Structure))
	case req.Space != nil:
		src = engine.FromSpace(world.SpaceID(*req.Space))
	default:
		u, err := s.Game.GetUnit(player, id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		src = engine.FromSpace(u.Space)
	}

	v, err := s.Game.CollectResource(player, id, resource.ID(req.Resource), req.Quantity, src)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v)
}

type depositRequest struct {
	Structure uint64 `json:"structure_id"`
	Resource  string `json:"resource"`
	Quantity  int    `json:"quantity"` // 0 = all held
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := unitParam(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st, err := s.Game.DepositResource(playerFrom(r), id, structures.ID(req.Structure), resource.ID(req.Resource), req.Quantity)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, st)
}

type buildUnitRequest struct {
	UnitType string `json:"unit_type"`
	Target   string `json:"target_resource,omitempty"`
}

func (s *Server) handleBuildUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := structureParam(w, r)
	if !ok {
		return
	}
	var req buildUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.Game.BuildUnit(playerFrom(r), id, req.UnitType, resource.ID(req.Target))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeStatus(w, http.StatusCreated, res)
}

// ── Admin ──────────────────────────────────────────────────────────────

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.AdvanceTime())
}

type addPlayerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// handleAddPlayer registers a player and gives a new player its first unit.
func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	id := agents.PlayerID(req.ID)
	s.Game.AddPlayer(id, req.Name)
	units := s.Game.Units(id)
	if len(units) == 0 {
		u, err := s.Game.SpawnPlayerUnit(id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		units = append(units, u)
	}
	writeJSON(w, map[string]any{"player": id, "units": units})
}

func (s *Server) handleAutonomous(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.AutonomousStatus())
}
