// Package docstore is the adapter over the document database holding game
// state. Each game is one JSONB document keyed by PIN with a version column;
// Transact gives callers optimistic read-modify-write with automatic retry,
// and committed writes fan out to subscribers as full snapshots.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/quizterra/quizterra/internal/game"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

const defaultMaxRetries = 8

type Store struct {
	db         *sql.DB
	broker     *broker
	maxRetries int
}

// New creates the backing table if needed and returns a ready store.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id      TEXT PRIMARY KEY,
			status  TEXT NOT NULL,
			version INTEGER NOT NULL,
			data    JSONB NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating games table: %w", err)
	}
	return &Store{
		db:         db,
		broker:     newBroker(),
		maxRetries: defaultMaxRetries,
	}, nil
}

// Get returns the current snapshot of one game document.
func (s *Store) Get(ctx context.Context, pin string) (game.Game, error) {
	g, _, err := s.get(ctx, pin)
	return g, err
}

func (s *Store) get(ctx context.Context, pin string) (game.Game, int64, error) {
	var data string
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data), version FROM games WHERE id = ?`, game.NormalizePIN(pin),
	).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, 0, ErrNotFound
	}
	if err != nil {
		return game.Game{}, 0, err
	}
	g, err := decode(data)
	return g, version, err
}

// Create inserts a new game document at version 1. A pin collision returns
// ErrExists so the caller can regenerate and retry.
func (s *Store) Create(ctx context.Context, g game.Game) error {
	if err := game.Validate(&g); err != nil {
		return fmt.Errorf("document rejected: %w", err)
	}
	payload, err := json.Marshal(g)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, status, version, data) VALUES (?, ?, 1, jsonb(?))
		ON CONFLICT(id) DO NOTHING`,
		g.ID, string(g.Status), string(payload))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExists
	}
	s.broker.publish(g.ID, snapshot{version: 1, game: g})
	return nil
}

// Update merges partial fields into the document without a version guard;
// the patch is a single atomic statement. Reserved for admin metadata
// (title, description); game state always goes through Transact.
func (s *Store) Update(ctx context.Context, pin string, fields map[string]any) (game.Game, error) {
	pin = game.NormalizePIN(pin)
	patch, err := json.Marshal(fields)
	if err != nil {
		return game.Game{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET data = jsonb(json_patch(json(data), ?)), version = version + 1 WHERE id = ?`,
		string(patch), pin)
	if err != nil {
		return game.Game{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return game.Game{}, ErrNotFound
	}
	g, version, err := s.get(ctx, pin)
	if err != nil {
		return game.Game{}, err
	}
	s.broker.publish(pin, snapshot{version: version, game: g})
	return g, nil
}

// Transact runs fn against a fresh copy of the current document and writes
// the result back guarded by the version read. A concurrent commit between
// read and write triggers a retry with the new state; fn must therefore be a
// pure function of (state, input). An error from fn aborts with nothing
// written. Exhausting retries surfaces game.ErrTransactionAborted.
func (s *Store) Transact(ctx context.Context, pin string, fn func(*game.Game) error) (game.Game, error) {
	pin = game.NormalizePIN(pin)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return game.Game{}, err
			}
		}

		var data string
		var version int64
		err := s.db.QueryRowContext(ctx,
			`SELECT json(data), version FROM games WHERE id = ?`, pin,
		).Scan(&data, &version)
		if errors.Is(err, sql.ErrNoRows) {
			return game.Game{}, ErrNotFound
		}
		if err != nil {
			return game.Game{}, err
		}

		// Each attempt decodes its own copy, so a retried fn never sees
		// residue from a previous attempt.
		g, err := decode(data)
		if err != nil {
			return game.Game{}, err
		}
		if err := fn(&g); err != nil {
			return game.Game{}, err
		}
		if err := game.Validate(&g); err != nil {
			return game.Game{}, fmt.Errorf("document rejected: %w", err)
		}

		payload, err := json.Marshal(g)
		if err != nil {
			return game.Game{}, err
		}
		res, err := s.db.ExecContext(ctx, `
			UPDATE games SET status = ?, version = ?, data = jsonb(?)
			WHERE id = ? AND version = ?`,
			string(g.Status), version+1, string(payload), pin, version)
		if err != nil {
			return game.Game{}, err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			s.broker.publish(pin, snapshot{version: version + 1, game: g})
			return g, nil
		}
		// Version moved under us; loop re-reads and reapplies.
	}
	return game.Game{}, game.ErrTransactionAborted
}

// Delete removes a game document. Children referencing it via
// parentSessionId keep working; the reference is allowed to dangle.
func (s *Store) Delete(ctx context.Context, pin string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM games WHERE id = ?`, game.NormalizePIN(pin))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribe registers for snapshots of one game document. The current
// snapshot, when the document exists, is delivered immediately; every
// committed write after that delivers a fresh full snapshot. Delivery is in
// version order: a commit landing between the initial read and its delivery
// cannot shadow the fresher state. The returned cancel func must be called
// on scope exit.
func (s *Store) Subscribe(ctx context.Context, pin string) (<-chan game.Game, func()) {
	pin = game.NormalizePIN(pin)
	in, unsubscribe := s.broker.subscribe(pin)

	if g, version, err := s.get(ctx, pin); err == nil {
		select {
		case in <- snapshot{version: version, game: g}:
		default:
		}
	}

	out := make(chan game.Game, 1)
	done := make(chan struct{})
	go func() {
		defer close(out)
		var delivered int64
		for {
			select {
			case <-done:
				return
			case snap := <-in:
				if snap.version <= delivered {
					continue
				}
				delivered = snap.version
				select {
				case out <- snap.game:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}
	return out, cancel
}

func decode(data string) (game.Game, error) {
	var g game.Game
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return game.Game{}, fmt.Errorf("decoding document: %w", err)
	}
	return g, nil
}

func backoff(ctx context.Context, attempt int) error {
	d := time.Duration(attempt) * 5 * time.Millisecond
	d += time.Duration(rand.Int63n(int64(5 * time.Millisecond)))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
