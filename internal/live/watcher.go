package live

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quizterra/quizterra/internal/game"
)

// Transitioner issues the idempotent time-based transitions. Implemented by
// the service layer.
type Transitioner interface {
	PromoteStarting(ctx context.Context, pin string) (game.Game, error)
	EndGame(ctx context.Context, pin, identity string) (game.Game, error)
}

// Watcher enforces the transitions that only local clocks can trigger:
// starting → playing once the shared anchor passes, and playing → finished
// once the deadline passes. Any eligible client runs one; the transitions
// are first-writer-wins and the losers' transactions no-op, so racing
// watchers on other clients are expected and harmless.
type Watcher struct {
	svc      Transitioner
	pin      string
	identity string
	logger   *slog.Logger

	Interval time.Duration
	now      func() time.Time
}

func NewWatcher(svc Transitioner, pin, identity string, logger *slog.Logger) *Watcher {
	return &Watcher{
		svc:      svc,
		pin:      game.NormalizePIN(pin),
		identity: identity,
		logger:   logger,
		Interval: time.Second,
		now:      time.Now,
	}
}

// Run consumes snapshots and checks the latest one against the local clock
// on every tick. Returns nil once the game is finished or the snapshot
// channel closes.
func (w *Watcher) Run(ctx context.Context, snaps <-chan game.Game) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	var latest *game.Game
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case g, ok := <-snaps:
			if !ok {
				return nil
			}
			latest = &g
			if g.Status == game.StatusFinished {
				return nil
			}
		case <-ticker.C:
			if latest == nil {
				continue
			}
			if done := w.check(ctx, latest); done {
				return nil
			}
		}
	}
}

func (w *Watcher) check(ctx context.Context, g *game.Game) bool {
	now := w.now()
	switch g.Status {
	case game.StatusStarting:
		if g.GameStartedAt != nil && !now.Before(*g.GameStartedAt) {
			if _, err := w.svc.PromoteStarting(ctx, w.pin); err != nil {
				w.logger.Warn("promote failed", "pin", w.pin, "error", err)
			}
		}
	case game.StatusPlaying:
		deadline, ok := g.Deadline()
		if !ok || now.Before(deadline) {
			return false
		}
		_, err := w.svc.EndGame(ctx, w.pin, w.identity)
		switch {
		case err == nil:
			return true
		case errors.Is(err, game.ErrStatusConflict):
			// Another client ended it between our read and write.
			return true
		default:
			w.logger.Warn("timeout enforcement failed", "pin", w.pin, "error", err)
		}
	case game.StatusFinished:
		return true
	}
	return false
}
