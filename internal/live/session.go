// Package live is the client-side synchronization layer: it turns the
// store's snapshot subscription into derived view updates, enforces the
// bounded not-found wait, and drives the time-based transitions that no
// server tick pushes.
package live

import (
	"context"
	"time"

	"github.com/quizterra/quizterra/internal/game"
)

// Subscriber is the slice of the document store this layer needs.
type Subscriber interface {
	Subscribe(ctx context.Context, pin string) (<-chan game.Game, func())
}

// DefaultNotFoundAfter bounds how long a session waits for a first snapshot
// before concluding the game does not exist.
const DefaultNotFoundAfter = 3 * time.Second

// Event is one update delivered to the session's consumer. NotFound is
// terminal: no snapshot ever arrived and none will be delivered after it.
type Event struct {
	NotFound bool
	Game     game.Game
	View     game.View
}

// Session is one client's subscription to one game document. Every incoming
// snapshot is reprocessed as a complete fresh state — the derived view never
// depends on what the previous snapshot looked like.
type Session struct {
	store    Subscriber
	pin      string
	identity string

	NotFoundAfter time.Duration
	now           func() time.Time
}

func NewSession(store Subscriber, pin, identity string) *Session {
	return &Session{
		store:         store,
		pin:           game.NormalizePIN(pin),
		identity:      identity,
		NotFoundAfter: DefaultNotFoundAfter,
		now:           time.Now,
	}
}

// Run subscribes and streams events until ctx is cancelled. The returned
// channel closes on cancellation or after a terminal not-found event, and
// the underlying subscription is always torn down with it.
func (s *Session) Run(ctx context.Context) <-chan Event {
	out := make(chan Event, 1)
	go func() {
		defer close(out)

		snaps, cancel := s.store.Subscribe(ctx, s.pin)
		defer cancel()

		deadline := time.NewTimer(s.NotFoundAfter)
		defer deadline.Stop()

		seen := false
		deliver := func(g game.Game) bool {
			seen = true
			ev := Event{Game: g, View: game.DeriveView(&g, s.identity, s.now())}
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-deadline.C:
				if seen {
					continue
				}
				// A snapshot queued behind the timer fire still counts as
				// arriving within the bound.
				select {
				case g := <-snaps:
					if !deliver(g) {
						return
					}
				default:
					out <- Event{NotFound: true}
					return
				}
			case g := <-snaps:
				if !deliver(g) {
					return
				}
			}
		}
	}()
	return out
}
