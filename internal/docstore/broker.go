package docstore

import (
	"sync"

	"github.com/quizterra/quizterra/internal/game"
)

// snapshot pairs a committed document with the version that produced it.
// Subscribers use the version to discard out-of-order deliveries.
type snapshot struct {
	version int64
	game    game.Game
}

// broker is an in-process fan-out of committed snapshots, keyed by game PIN.
type broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan snapshot]struct{}
}

func newBroker() *broker {
	return &broker{
		subs: make(map[string]map[chan snapshot]struct{}),
	}
}

func (b *broker) subscribe(pin string) (chan snapshot, func()) {
	ch := make(chan snapshot, 16)
	b.mu.Lock()
	if b.subs[pin] == nil {
		b.subs[pin] = make(map[chan snapshot]struct{})
	}
	b.subs[pin][ch] = struct{}{}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs[pin], ch)
		if len(b.subs[pin]) == 0 {
			delete(b.subs, pin)
		}
		b.mu.Unlock()
	}
}

func (b *broker) publish(pin string, snap snapshot) {
	b.mu.RLock()
	for ch := range b.subs[pin] {
		select {
		case ch <- snap:
		default:
			// Drop if subscriber is slow; the next snapshot supersedes
			// this one anyway.
		}
	}
	b.mu.RUnlock()
}
