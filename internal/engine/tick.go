package engine

import (
	"context"
	"log/slog"
	"time"
)

// Clock advances the game on a fixed interval. An interval of zero leaves
// turn advancement to explicit AdvanceTime calls.
type Clock struct {
	Game     *Game
	Interval time.Duration
}

// NewClock creates a clock for a game.
func NewClock(g *Game, interval time.Duration) *Clock {
	return &Clock{Game: g, Interval: interval}
}

// Run advances one turn per interval until ctx is done.
func (c *Clock) Run(ctx context.Context) {
	if c.Interval <= 0 {
		slog.Info("turn clock disabled; turns advance on request")
		return
	}
	slog.Info("turn clock started", "interval", c.Interval, "turn", c.Game.Turn())

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("turn clock stopped", "turn", c.Game.Turn())
			return
		case <-ticker.C:
			c.Game.AdvanceTime()
		}
	}
}
