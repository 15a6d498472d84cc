package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quizterra/quizterra/internal/database"
	"github.com/quizterra/quizterra/internal/game"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// In-memory SQLite gives every pooled connection its own database;
	// pin the pool to one connection so all queries share state.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := New(ctx, db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store
}

func seedGame(t *testing.T, store *Store) game.Game {
	t.Helper()
	g := game.New("TEST42", []game.Team{
		{Name: "Alpha", Capacity: 10},
		{Name: "Bravo", Capacity: 10},
	}, game.Config{
		TimerSeconds: 300,
		AdminID:      "admin-1",
		Questions: []game.Question{
			{Question: "Capital of France?", Options: []string{"Paris", "Lyon"}, Answer: "Paris"},
			{Question: "Capital of Peru?", Options: []string{"Cusco", "Lima"}, Answer: "Lima"},
		},
	}, time.Now())
	if err := store.Create(context.Background(), g); err != nil {
		t.Fatalf("create: %v", err)
	}
	return g
}

func TestGetNormalizesPin(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)

	g, err := store.Get(context.Background(), "test42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g.ID != "TEST42" {
		t.Errorf("expected TEST42, got %q", g.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.Get(context.Background(), "NOPE99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDuplicatePin(t *testing.T) {
	store := setupStore(t)
	g := seedGame(t, store)
	if err := store.Create(context.Background(), g); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestTransactAppliesAndBumpsVersion(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)
	ctx := context.Background()

	got, err := store.Transact(ctx, "TEST42", func(g *game.Game) error {
		return game.Join(g, "id-1", "", "Maria", "Alpha")
	})
	if err != nil {
		t.Fatalf("transact: %v", err)
	}
	if got.PlayerCount() != 1 {
		t.Fatalf("expected 1 player, got %d", got.PlayerCount())
	}

	g, err := store.Get(ctx, "TEST42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p, _ := g.FindPlayer("id-1"); p == nil {
		t.Error("join not persisted")
	}
}

func TestTransactAbortWritesNothing(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)
	ctx := context.Background()

	boom := errors.New("boom")
	if _, err := store.Transact(ctx, "TEST42", func(g *game.Game) error {
		g.Teams[0].Score = 99
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	g, _ := store.Get(ctx, "TEST42")
	if g.Teams[0].Score != 0 {
		t.Errorf("aborted transaction leaked a write: score=%d", g.Teams[0].Score)
	}
}

func TestTransactRejectsInvalidDocument(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)

	_, err := store.Transact(context.Background(), "TEST42", func(g *game.Game) error {
		g.Teams[0].Players = []game.Player{{ID: "id-1", TeamName: "Alpha", ColoringCredits: -5}}
		return nil
	})
	if err == nil {
		t.Fatal("expected validation rejection")
	}

	g, _ := store.Get(context.Background(), "TEST42")
	if len(g.Teams[0].Players) != 0 {
		t.Error("rejected document was persisted")
	}
}

// Two concurrent claims on the same square: exactly one write makes the
// square non-nil, the loser observes it set and no-ops without spending
// its credit.
func TestConcurrentClaimsConverge(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)
	ctx := context.Background()

	mustTransact(t, store, func(g *game.Game) error {
		if err := game.Join(g, "id-1", "", "Maria", "Alpha"); err != nil {
			return err
		}
		return game.Join(g, "id-2", "", "Luis", "Bravo")
	})
	mustTransact(t, store, func(g *game.Game) error {
		now := time.Now()
		return game.Start(g, "admin-1", now, now)
	})
	for _, id := range []string{"id-1", "id-2"} {
		mustTransact(t, store, func(g *game.Game) error {
			_, err := game.SubmitAnswer(g, id, "Paris")
			return err
		})
	}

	var eg errgroup.Group
	for _, id := range []string{"id-1", "id-2"} {
		id := id
		eg.Go(func() error {
			_, err := store.Transact(ctx, "TEST42", func(g *game.Game) error {
				_, err := game.ClaimSquare(g, id, 5)
				return err
			})
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("concurrent claims: %v", err)
	}

	g, _ := store.Get(ctx, "TEST42")
	if g.Grid[5].ColoredBy == nil {
		t.Fatal("square not colored")
	}
	spent := 0
	for _, id := range []string{"id-1", "id-2"} {
		p, _ := g.FindPlayer(id)
		if p.ColoringCredits == 0 {
			spent++
		}
	}
	if spent != 1 {
		t.Errorf("expected exactly one spent credit, got %d", spent)
	}
}

// Two concurrent end-game transactions both converge on finished; neither
// errors, because ending a finished game is a benign no-op.
func TestConcurrentEndGame(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)
	ctx := context.Background()

	mustTransact(t, store, func(g *game.Game) error {
		now := time.Now()
		return game.Start(g, "admin-1", now, now)
	})

	var eg errgroup.Group
	for i := 0; i < 2; i++ {
		eg.Go(func() error {
			_, err := store.Transact(ctx, "TEST42", game.End)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("concurrent end: %v", err)
	}

	g, _ := store.Get(ctx, "TEST42")
	if g.Status != game.StatusFinished {
		t.Errorf("expected finished, got %q", g.Status)
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)
	ctx := context.Background()

	ch, cancel := store.Subscribe(ctx, "test42")
	defer cancel()

	select {
	case g := <-ch:
		if g.Status != game.StatusLobby {
			t.Errorf("initial snapshot status %q", g.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	mustTransact(t, store, func(g *game.Game) error {
		return game.Join(g, "id-1", "", "Maria", "Alpha")
	})

	select {
	case g := <-ch:
		if p, _ := g.FindPlayer("id-1"); p == nil {
			t.Error("snapshot missing committed join")
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after commit")
	}
}

func TestSubscribeMissingGameStaysSilent(t *testing.T) {
	store := setupStore(t)

	ch, cancel := store.Subscribe(context.Background(), "NOPE99")
	defer cancel()

	select {
	case g := <-ch:
		t.Fatalf("unexpected snapshot for missing game: %+v", g)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdatePatchesMetadataOnly(t *testing.T) {
	store := setupStore(t)
	seedGame(t, store)

	g, err := store.Update(context.Background(), "TEST42", map[string]any{
		"title": "Friday night trivia",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if g.Title != "Friday night trivia" {
		t.Errorf("title not patched: %q", g.Title)
	}
	if g.Status != game.StatusLobby || len(g.Teams) != 2 {
		t.Errorf("patch disturbed state: %q / %d teams", g.Status, len(g.Teams))
	}
}

func TestDeleteToleratesDanglingParent(t *testing.T) {
	store := setupStore(t)
	parent := seedGame(t, store)
	ctx := context.Background()

	child := game.New("CHILD1", []game.Team{{Name: "Solo", Capacity: 1}}, game.Config{
		AdminID:     "id-1",
		SessionType: game.SessionIndividual,
		Questions:   parent.Questions,
	}, time.Now())
	child.ParentSessionID = parent.ID
	if err := store.Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}

	if err := store.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}
	got, err := store.Get(ctx, "CHILD1")
	if err != nil {
		t.Fatalf("child must survive parent deletion: %v", err)
	}
	if got.ParentSessionID != parent.ID {
		t.Errorf("dangling reference rewritten: %q", got.ParentSessionID)
	}
}

func mustTransact(t *testing.T, store *Store, fn func(*game.Game) error) {
	t.Helper()
	if _, err := store.Transact(context.Background(), "TEST42", fn); err != nil {
		t.Fatalf("transact: %v", err)
	}
}

func TestSubscribeKeepsVersionOrder(t *testing.T) {
	store := setupStore(t)
	stale := seedGame(t, store)
	ctx := context.Background()

	ch, cancel := store.Subscribe(ctx, "TEST42")
	defer cancel()

	waitSnapshot := func(want game.Status) {
		t.Helper()
		select {
		case g := <-ch:
			if g.Status != want {
				t.Fatalf("snapshot status %q, want %q", g.Status, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q snapshot", want)
		}
	}

	waitSnapshot(game.StatusLobby)

	mustTransact(t, store, func(g *game.Game) error {
		now := time.Now()
		return game.Start(g, "admin-1", now, now)
	})
	waitSnapshot(game.StatusPlaying)

	// Replay the seed snapshot as a late out-of-order delivery; the
	// subscriber must drop it because it has already seen version 2.
	store.broker.publish("TEST42", snapshot{version: 1, game: stale})

	mustTransact(t, store, func(g *game.Game) error {
		return game.End(g)
	})
	waitSnapshot(game.StatusFinished)
}
