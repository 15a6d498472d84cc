package game

import (
	"testing"
	"time"
)

func TestDeriveView(t *testing.T) {
	g := testGame(t)
	if err := Join(g, "id-1", "", "Maria", "Alpha"); err != nil {
		t.Fatalf("join: %v", err)
	}

	v := DeriveView(g, "id-1", time.Now())
	if v.Phase != PhaseLobby {
		t.Errorf("expected lobby phase, got %q", v.Phase)
	}
	if v.CurrentPlayer == nil || v.CurrentPlayer.Name != "Maria" {
		t.Fatalf("current player not derived: %+v", v.CurrentPlayer)
	}

	startPlaying(t, g)
	v = DeriveView(g, "id-1", time.Now())
	if v.Phase != PhaseQuestion {
		t.Errorf("expected question phase, got %q", v.Phase)
	}
	if v.CurrentQuestion == nil || v.CurrentQuestion.Question != "Capital of France?" {
		t.Fatalf("expected first question, got %+v", v.CurrentQuestion)
	}
	if v.Remaining <= 0 || v.Remaining > 300*time.Second {
		t.Errorf("remaining out of range: %v", v.Remaining)
	}

	if _, err := SubmitAnswer(g, "id-1", "Paris"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	v = DeriveView(g, "id-1", time.Now())
	if v.QuestionIndex != 1 || v.CurrentQuestion.Question != "Capital of Peru?" {
		t.Errorf("progress cursor not advanced: idx=%d q=%+v", v.QuestionIndex, v.CurrentQuestion)
	}
	if v.Scores["Alpha"] != 1 {
		t.Errorf("expected Alpha score 1, got %d", v.Scores["Alpha"])
	}
}

func TestDeriveViewRemainingClamped(t *testing.T) {
	g := testGame(t)
	startPlaying(t, g)
	v := DeriveView(g, "nobody", g.GameStartedAt.Add(time.Hour))
	if v.Remaining != 0 {
		t.Errorf("expected clamped remaining, got %v", v.Remaining)
	}
	if v.CurrentPlayer != nil {
		t.Error("unknown identity should have no current player")
	}
}

func TestDeriveViewAllAnswered(t *testing.T) {
	g := testGame(t)
	if err := Join(g, "id-1", "", "Maria", "Alpha"); err != nil {
		t.Fatalf("join: %v", err)
	}
	startPlaying(t, g)
	for _, ans := range []string{"Paris", "Lima"} {
		if _, err := SubmitAnswer(g, "id-1", ans); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	v := DeriveView(g, "id-1", time.Now())
	if v.Phase != PhaseDone {
		t.Errorf("expected done phase, got %q", v.Phase)
	}
	if v.CurrentQuestion != nil {
		t.Errorf("expected no current question, got %+v", v.CurrentQuestion)
	}
}
