package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quizterra/quizterra/internal/database"
	"github.com/quizterra/quizterra/internal/docstore"
	"github.com/quizterra/quizterra/internal/game"
)

type stubGenerator struct {
	questions []game.Question
	err       error
	calls     int
}

func (s *stubGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]game.Question, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

func bank() []game.Question {
	return []game.Question{
		{Question: "Capital of France?", Options: []string{"Paris", "Lyon"}, Answer: "Paris"},
		{Question: "Capital of Peru?", Options: []string{"Cusco", "Lima"}, Answer: "Lima"},
	}
}

func setup(t *testing.T, gen *stubGenerator) *Service {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := docstore.New(ctx, db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, gen, logger)
}

func createTeamGame(t *testing.T, svc *Service, qs []game.Question) game.Game {
	t.Helper()
	g, err := svc.CreateGame(context.Background(), []game.Team{
		{Name: "Alpha", Capacity: 10},
		{Name: "Bravo", Capacity: 10},
	}, game.Config{
		Topic:        "geography",
		TimerSeconds: 300,
		AdminID:      "admin-1",
		Questions:    qs,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func TestCreateGamePin(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	g := createTeamGame(t, svc, bank())

	if !game.ValidPIN(g.ID) {
		t.Errorf("invalid pin %q", g.ID)
	}
	if g.Status != game.StatusLobby {
		t.Errorf("expected lobby, got %q", g.Status)
	}
	if len(g.Grid) != game.DefaultGridSize {
		t.Errorf("expected %d squares, got %d", game.DefaultGridSize, len(g.Grid))
	}

	// Lookup is case-insensitive.
	if _, err := svc.Get(context.Background(), strings.ToLower(g.ID)); err != nil {
		t.Errorf("lowercase lookup: %v", err)
	}
}

func TestGetUnknownGame(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	if _, err := svc.Get(context.Background(), "ZZZZ99"); !errors.Is(err, game.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestFullTeamFlow(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	g := createTeamGame(t, svc, bank())
	ctx := context.Background()
	pin := g.ID

	if _, err := svc.JoinTeam(ctx, pin, "id-1", "card-7", "Maria", "Alpha"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.StartGame(ctx, pin, "admin-1", 0); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, _, err := svc.SubmitAnswer(ctx, pin, "id-1", " paris ")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct {
		t.Error("expected correct answer")
	}

	claim, g2, err := svc.ClaimTerritory(ctx, pin, "id-1", 3)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.ColoredBy != "Alpha" || *g2.Grid[3].ColoredBy != "Alpha" {
		t.Errorf("claim not applied: %+v", claim)
	}

	if _, err := svc.EndGame(ctx, pin, "admin-1"); err != nil {
		t.Fatalf("end: %v", err)
	}
	g3, err := svc.ResetGame(ctx, pin, "admin-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if g3.Status != game.StatusLobby || g3.Grid[3].ColoredBy != nil {
		t.Errorf("reset incomplete: %q / %v", g3.Status, g3.Grid[3].ColoredBy)
	}
}

func TestStartGeneratesWhenBankEmpty(t *testing.T) {
	gen := &stubGenerator{questions: bank()}
	svc := setup(t, gen)
	g := createTeamGame(t, svc, nil)

	got, err := svc.StartGame(context.Background(), g.ID, "admin-1", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 generator call, got %d", gen.calls)
	}
	if len(got.Questions) != 2 || got.Status != game.StatusPlaying {
		t.Errorf("bank not populated: %d questions, status %q", len(got.Questions), got.Status)
	}
}

func TestStartGenerationFailureStaysLobby(t *testing.T) {
	gen := &stubGenerator{err: game.ErrGenerationFailed}
	svc := setup(t, gen)
	g := createTeamGame(t, svc, nil)

	_, err := svc.StartGame(context.Background(), g.ID, "admin-1", 0)
	if !errors.Is(err, game.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	got, _ := svc.Get(context.Background(), g.ID)
	if got.Status != game.StatusLobby || len(got.Questions) != 0 {
		t.Errorf("failed start mutated game: %q / %d questions", got.Status, len(got.Questions))
	}
}

func TestStartCountdownAndPromote(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	g := createTeamGame(t, svc, bank())

	got, err := svc.StartGame(context.Background(), g.ID, "admin-1", 5*time.Second)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got.Status != game.StatusStarting {
		t.Fatalf("expected starting, got %q", got.Status)
	}

	// Still counting down: promotion no-ops.
	got, err = svc.PromoteStarting(context.Background(), g.ID)
	if err != nil || got.Status != game.StatusStarting {
		t.Fatalf("premature promotion: %q, %v", got.Status, err)
	}

	svc.now = func() time.Time { return time.Unix(1_700_000_006, 0) }
	got, err = svc.PromoteStarting(context.Background(), g.ID)
	if err != nil || got.Status != game.StatusPlaying {
		t.Fatalf("expected playing after anchor, got %q, %v", got.Status, err)
	}
}

func TestEndGameEligibility(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	g := createTeamGame(t, svc, bank())
	ctx := context.Background()

	for _, join := range []struct{ id, team string }{
		{"id-1", "Alpha"}, {"id-2", "Alpha"}, {"id-3", "Bravo"},
	} {
		if _, err := svc.JoinTeam(ctx, g.ID, join.id, "", join.id, join.team); err != nil {
			t.Fatalf("join %s: %v", join.id, err)
		}
	}
	if _, err := svc.StartGame(ctx, g.ID, "admin-1", 0); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A regular team player is not eligible to end a 3-player game.
	if _, err := svc.EndGame(ctx, g.ID, "id-1"); !errors.Is(err, game.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	if _, err := svc.EndGame(ctx, g.ID, "admin-1"); err != nil {
		t.Fatalf("admin end: %v", err)
	}
	// Redundant end from another enforcement path is a no-op.
	if _, err := svc.EndGame(ctx, g.ID, "admin-1"); err != nil {
		t.Fatalf("second end: %v", err)
	}
}

func TestSpawnSession(t *testing.T) {
	gen := &stubGenerator{questions: bank()}
	svc := setup(t, gen)

	parent, err := svc.CreateGame(context.Background(), []game.Team{
		{Name: "Template", Capacity: 1},
	}, game.Config{
		Topic:       "geography",
		SessionType: game.SessionIndividual,
		AdminID:     "curator-1",
	})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if len(parent.Questions) != 0 {
		t.Fatalf("parent should start without questions")
	}

	child, err := svc.SpawnSession(context.Background(), parent.ID, "id-9", "card-9", "Solo Sam")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	if len(child.Questions) == 0 {
		t.Error("child has no questions")
	}
	if len(child.Teams) != 1 || child.Teams[0].Capacity != 1 {
		t.Fatalf("expected single capacity-1 team, got %+v", child.Teams)
	}
	if len(child.Teams[0].Players) != 1 || child.Teams[0].Players[0].ID != "id-9" {
		t.Fatalf("expected exactly the joining player, got %+v", child.Teams[0].Players)
	}
	if child.ParentSessionID != parent.ID {
		t.Errorf("parent reference missing: %q", child.ParentSessionID)
	}
	if !strings.HasPrefix(child.ID, parent.ID+"-") {
		t.Errorf("child id %q not derived from parent pin", child.ID)
	}

	// Template backfilled so the next spawn skips generation.
	parent2, _ := svc.Get(context.Background(), parent.ID)
	if len(parent2.Questions) == 0 {
		t.Error("template not backfilled")
	}
	if _, err := svc.SpawnSession(context.Background(), parent.ID, "id-10", "", "Other"); err != nil {
		t.Fatalf("second spawn: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 generator call, got %d", gen.calls)
	}

	// The participant can start and play their own session.
	started, err := svc.StartGame(context.Background(), child.ID, "id-9", 0)
	if err != nil {
		t.Fatalf("participant start: %v", err)
	}
	if started.Status != game.StatusPlaying {
		t.Errorf("expected playing, got %q", started.Status)
	}
}

func TestSpawnRequiresIndividualParent(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	g := createTeamGame(t, svc, bank())

	if _, err := svc.SpawnSession(context.Background(), g.ID, "id-1", "", "X"); !errors.Is(err, game.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

func TestUpdateMetadata(t *testing.T) {
	svc := setup(t, &stubGenerator{})
	g := createTeamGame(t, svc, bank())

	got, err := svc.UpdateMetadata(context.Background(), g.ID, "Friday trivia", "Office game night")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Friday trivia" || got.Description != "Office game night" {
		t.Errorf("metadata not patched: %q / %q", got.Title, got.Description)
	}
}
