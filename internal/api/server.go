// Package api serves the game over HTTP.
// Player endpoints identify the caller by the X-Player-ID header; the engine
// enforces ownership. Admin endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/engine"
	"github.com/talgya/eos/internal/journal"
)

// PlayerHeader carries the caller's player ID.
const PlayerHeader = "X-Player-ID"

// TurnLog is the read side of the turn journal.
type TurnLog interface {
	Turns(ctx context.Context, limit int) ([]journal.TurnRecord, error)
	Report(ctx context.Context, turn uint64) (engine.TurnReport, error)
	RecentEvents(ctx context.Context, limit int) ([]engine.Event, error)
}

// Server serves one game.
type Server struct {
	Game     *engine.Game
	Journal  TurnLog // Nil disables the journal endpoints
	Port     int
	AdminKey string // Bearer token for admin endpoints. Empty = admin disabled.

	hub     *Hub
	limiter *RateLimiter
}

// NewServer creates a server and subscribes its socket hub to turn reports.
func NewServer(g *engine.Game, port int, adminKey string) *Server {
	s := &Server{
		Game:     g,
		Port:     port,
		AdminKey: adminKey,
		hub:      NewHub(),
		limiter:  NewRateLimiter(10, 20),
	}
	g.OnTurn(s.hub.PublishTurn)
	return s
}

// Hub returns the server's socket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public.
		r.Get("/status", s.handleStatus)
		r.Get("/rules", s.handleRules)
		r.Get("/rules/structures/{recipe}", s.handleStructureRecipe)
		r.Get("/players", s.handlePlayers)
		r.Get("/events", s.handleEvents)
		r.Route("/journal", func(r chi.Router) {
			r.Get("/turns", s.handleJournalTurns)
			r.Get("/turns/{turn}", s.handleJournalTurn)
			r.Get("/events", s.handleJournalEvents)
		})

		// Player.
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware)
			r.Use(playerOnly)

			r.Get("/ws", s.handleWS)
			r.Get("/system", s.handleSystem)
			r.Get("/spaces/{space}", s.handleSpace)
			r.Get("/structures/{structure}", s.handleStructure)
			r.Get("/drones", s.handleDrones)
			r.Get("/spaceports", s.handleSpacePorts)

			r.Get("/units", s.handleUnits)
			r.Route("/units/{unit}", func(r chi.Router) {
				r.Get("/", s.handleUnit)
				r.Get("/moves", s.handleMoveOptions)
				r.Get("/routes", s.handlePortRoutes)
				r.Get("/port-travel", s.handlePortTravel)
				r.Get("/build-options", s.handleBuildOptions)
				r.Get("/can-afford/{recipe}", s.handleCanAfford)
				r.Post("/move", s.handleMove)
				r.Post("/build", s.handleBuild)
				r.Post("/collect", s.handleCollect)
				r.Post("/deposit", s.handleDeposit)
			})

			r.Get("/factories/{structure}", s.handleFactoryStatus)
			r.Post("/factories/{structure}/build", s.handleBuildUnit)
		})

		// Admin.
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/admin/advance", s.handleAdvance)
			r.Post("/admin/players", s.handleAddPlayer)
			r.Get("/admin/autonomous", s.handleAutonomous)
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	go s.sweepLimiter(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "journal", s.Journal != nil)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Cleanup(time.Hour); n > 0 {
				slog.Debug("rate limiter swept", "removed", n)
			}
		}
	}
}

// ── Middleware ─────────────────────────────────────────────────────────

type ctxKey int

const playerKey ctxKey = iota

func playerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(PlayerHeader))
		if id == "" {
			id = r.URL.Query().Get("player") // Browsers cannot set headers on a socket upgrade.
		}
		if id == "" {
			writeError(w, http.StatusUnauthorized, "missing "+PlayerHeader)
			return
		}
		ctx := context.WithValue(r.Context(), playerKey, agents.PlayerID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFrom(r *http.Request) agents.PlayerID {
	id, _ := r.Context().Value(playerKey).(agents.PlayerID)
	return id
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled (no admin key)")
			return
		}
		if !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows the origins listed in CORS_ORIGINS plus local dev
// servers.
func corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+PlayerHeader)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ── Responses ──────────────────────────────────────────────────────────

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Missing any    `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, data any) {
	writeStatus(w, http.StatusOK, data)
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeStatus(w, status, errorBody{Error: http.StatusText(status), Message: msg})
}

// writeEngineError maps an engine rejection to a status code.
func writeEngineError(w http.ResponseWriter, err error) {
	var e *engine.Error
	if !errors.As(err, &e) {
		slog.Error("unexpected error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	body := errorBody{Error: e.Kind.String(), Message: e.Msg}
	if len(e.Shortfall) > 0 {
		body.Missing = e.Shortfall
	}
	writeStatus(w, statusFor(e.Kind), body)
}

func statusFor(k engine.ErrorKind) int {
	switch k {
	case engine.KindEntityNotFound:
		return http.StatusNotFound
	case engine.KindPermissionDenied:
		return http.StatusForbidden
	case engine.KindInvalidStructureType:
		return http.StatusBadRequest
	case engine.KindBuildCooldownActive:
		return http.StatusConflict
	case engine.KindInvalidLocation, engine.KindInsufficientFuel,
		engine.KindInsufficientResources, engine.KindNetworkMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
