// Command eosd runs an Eos game server: it generates a star system, admits
// the configured players, and serves the game over HTTP while an optional
// clock advances turns.
package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/eos/internal/agents"
	"github.com/talgya/eos/internal/api"
	"github.com/talgya/eos/internal/config"
	"github.com/talgya/eos/internal/engine"
	"github.com/talgya/eos/internal/journal"
	"github.com/talgya/eos/internal/world"
)

func main() {
	settings, err := config.LoadSettings(".")
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.Level(),
	}))
	slog.SetDefault(logger)

	// ── Rules ─────────────────────────────────────────────────────────
	rules, err := config.LoadRules(settings.RulesPath)
	if err != nil {
		slog.Error("failed to load rules", "path", settings.RulesPath, "error", err)
		os.Exit(1)
	}

	// ── World ─────────────────────────────────────────────────────────
	seed := settings.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	systemID := uuid.NewString()
	sys := world.Generate(rules.GenConfig(systemID, seed))
	units := 0
	for _, sp := range sys.Spaces {
		units += sp.Inventory.Total()
	}
	slog.Info("system generated",
		"id", systemID,
		"name", sys.Name,
		"seed", seed,
		"bodies", len(sys.Bodies),
		"spaces", len(sys.Spaces),
		"resource_units", humanize.Comma(int64(units)),
	)

	g := engine.New(rules, sys)
	for _, id := range settings.PlayerIDs() {
		g.AddPlayer(agents.PlayerID(id), id)
		u, err := g.SpawnPlayerUnit(agents.PlayerID(id))
		if err != nil {
			slog.Error("failed to spawn unit", "player", id, "error", err)
			os.Exit(1)
		}
		slog.Info("player admitted", "player", id, "unit", u.ID, "space", u.SpaceName)
	}

	// ── Journal ───────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := api.NewServer(g, settings.Port, settings.AdminKey)
	if settings.JournalPath != "" {
		if err := os.MkdirAll(filepath.Dir(settings.JournalPath), 0o755); err != nil {
			slog.Error("failed to create journal dir", "error", err)
			os.Exit(1)
		}
		j, err := journal.Open(settings.JournalPath)
		if err != nil {
			slog.Error("failed to open journal", "path", settings.JournalPath, "error", err)
			os.Exit(1)
		}
		defer j.Close()
		if _, err := j.StartSession(ctx, systemID, sys.Name, seed); err != nil {
			slog.Error("failed to start journal session", "error", err)
			os.Exit(1)
		}
		g.OnTurn(j.Observer(g))
		srv.Journal = j
	}

	// ── Clock + API ───────────────────────────────────────────────────
	go engine.NewClock(g, settings.TurnInterval).Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
		if err := <-errc; err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	case err := <-errc:
		slog.Error("HTTP server error", "error", err)
		cancel()
	}

	slog.Info("eos stopped", "turn", g.Turn(), "digest", g.Digest())
}
