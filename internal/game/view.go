package game

import "time"

// Phase is the locally derived display phase of a client.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseCountdown Phase = "countdown"
	PhaseQuestion  Phase = "question"
	PhaseDone      Phase = "done"
	PhaseFinished  Phase = "finished"
)

// View is the client-local state derived from one snapshot. It is
// recomputed from scratch on every snapshot — never patched incrementally.
type View struct {
	Status          Status
	Phase           Phase
	CurrentPlayer   *Player
	TeamName        string
	CurrentQuestion *Question
	QuestionIndex   int
	TotalQuestions  int
	Remaining       time.Duration
	Scores          map[string]int
}

// DeriveView computes the view for one identity from a full snapshot.
// Pure and total: any well-formed snapshot yields a view.
func DeriveView(g *Game, identity string, now time.Time) View {
	v := View{
		Status:         g.Status,
		TotalQuestions: len(g.Questions),
		Scores:         make(map[string]int, len(g.Teams)),
	}
	for i := range g.Teams {
		v.Scores[g.Teams[i].Name] = g.Teams[i].Score
	}

	if p, _ := g.FindPlayer(identity); p != nil {
		cp := *p
		v.CurrentPlayer = &cp
		v.TeamName = p.TeamName
		v.QuestionIndex = len(p.AnsweredQuestions)
		if v.QuestionIndex < len(g.Questions) {
			q := g.Questions[v.QuestionIndex]
			v.CurrentQuestion = &q
		}
	}

	if deadline, ok := g.Deadline(); ok {
		if rem := deadline.Sub(now); rem > 0 {
			v.Remaining = rem
		}
	}

	switch g.Status {
	case StatusLobby:
		v.Phase = PhaseLobby
	case StatusStarting:
		v.Phase = PhaseCountdown
	case StatusPlaying:
		if v.CurrentPlayer != nil && v.CurrentQuestion == nil {
			v.Phase = PhaseDone
		} else {
			v.Phase = PhaseQuestion
		}
	case StatusFinished:
		v.Phase = PhaseFinished
	}
	return v
}
