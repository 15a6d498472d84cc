package game

import (
	"strings"
	"time"
)

// SkipSquare is the sentinel square id for a claim that forfeits territory.
const SkipSquare = -1

// Join appends a new player to the named team. Valid only in lobby.
func Join(g *Game, identity, playerID, name, teamName string) error {
	if g.Status != StatusLobby {
		return ErrNotJoinable
	}
	if p, _ := g.FindPlayer(identity); p != nil {
		return ErrAlreadyJoined
	}
	team := g.Team(teamName)
	if team == nil {
		return ErrTeamNotFound
	}
	if len(team.Players) >= team.Capacity {
		return ErrTeamFull
	}
	team.Players = append(team.Players, Player{
		ID:                identity,
		PlayerID:          playerID,
		Name:              name,
		TeamName:          team.Name,
		AnsweredQuestions: []string{},
	})
	return nil
}

// Start transitions lobby → playing (or → starting when startAt is in the
// future, for a synchronized countdown) and stamps the timer anchor.
// The question bank must already be populated; the operation layer generates
// it before entering the transaction so a generation failure leaves the
// game in lobby.
func Start(g *Game, identity string, startAt, now time.Time) error {
	if g.Status != StatusLobby {
		return ErrStatusConflict
	}
	if !canStart(g, identity) {
		return ErrNotAllowed
	}
	if len(g.Questions) == 0 {
		return ErrGenerationFailed
	}
	t := startAt.UTC()
	g.GameStartedAt = &t
	if startAt.After(now) {
		g.Status = StatusStarting
	} else {
		g.Status = StatusPlaying
	}
	return nil
}

func canStart(g *Game, identity string) bool {
	if identity == g.AdminID {
		return true
	}
	// Individual and 1-player sessions may be started by the participant.
	if g.SessionType == SessionIndividual || g.PlayerCount() == 1 {
		p, _ := g.FindPlayer(identity)
		return p != nil
	}
	return false
}

// Promote moves starting → playing once the start anchor is in the past.
// A no-op in every other state, so any watching client can issue it.
func Promote(g *Game, now time.Time) error {
	if g.Status == StatusStarting && g.GameStartedAt != nil && !now.Before(*g.GameStartedAt) {
		g.Status = StatusPlaying
	}
	return nil
}

// AnswerResult describes the outcome of a SubmitAnswer reducer run.
type AnswerResult struct {
	Correct       bool
	QuestionIndex int
	Question      string
	CorrectAnswer string
	GameComplete  bool
}

// SubmitAnswer appends the current question to the player's progress and
// applies score and credit effects. The correctness check is a
// case-insensitive, whitespace-trimmed exact match.
func SubmitAnswer(g *Game, identity, answer string) (AnswerResult, error) {
	if g.Status != StatusPlaying {
		return AnswerResult{}, ErrStatusConflict
	}
	player, ti := g.FindPlayer(identity)
	if player == nil {
		return AnswerResult{}, ErrNotAllowed
	}

	idx := len(player.AnsweredQuestions)
	if idx >= len(g.Questions) {
		return AnswerResult{}, ErrStatusConflict
	}
	q := g.Questions[idx]

	correct := AnswerMatches(answer, q.Answer)
	player.AnsweredQuestions = append(player.AnsweredQuestions, q.Question)

	if correct {
		player.Score++
		player.ColoringCredits++
		if g.SessionType == SessionTeam {
			g.Teams[ti].Score++
		}
	} else if g.SessionType == SessionIndividual {
		// Individual mode penalizes wrong answers; score may go negative.
		player.Score--
	}

	return AnswerResult{
		Correct:       correct,
		QuestionIndex: idx,
		Question:      q.Question,
		CorrectAnswer: q.Answer,
		GameComplete:  idx+1 == len(g.Questions),
	}, nil
}

// AnswerMatches compares a submitted answer against the canonical one,
// ignoring case and surrounding whitespace.
func AnswerMatches(submitted, canonical string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(canonical))
}

// ClaimResult describes the outcome of a ClaimSquare reducer run.
type ClaimResult struct {
	Skipped bool
	// AlreadyColored is set when another claim won the square first; the
	// operation committed nothing and the credit was not spent.
	AlreadyColored bool
	SquareID       int
	ColoredBy      string
}

// ClaimSquare spends one coloring credit to mark a grid square for the
// player's team (team mode) or the player (individual mode). A square that
// is already colored is a silent no-op: concurrent claims resolve to "first
// committed transaction wins". SkipSquare forfeits the claim entirely.
func ClaimSquare(g *Game, identity string, squareID int) (ClaimResult, error) {
	if g.Status != StatusPlaying {
		return ClaimResult{}, ErrStatusConflict
	}
	player, _ := g.FindPlayer(identity)
	if player == nil {
		return ClaimResult{}, ErrNotAllowed
	}

	if squareID == SkipSquare {
		return ClaimResult{Skipped: true, SquareID: SkipSquare}, nil
	}
	if squareID < 0 || squareID >= len(g.Grid) {
		return ClaimResult{}, ErrSquareNotFound
	}
	square := &g.Grid[squareID]
	if square.ColoredBy != nil {
		return ClaimResult{AlreadyColored: true, SquareID: squareID, ColoredBy: *square.ColoredBy}, nil
	}
	if player.ColoringCredits <= 0 {
		return ClaimResult{}, ErrNoCreditsRemaining
	}

	owner := player.TeamName
	if g.SessionType == SessionIndividual {
		owner = player.ID
	}
	square.ColoredBy = &owner
	player.ColoringCredits--

	return ClaimResult{SquareID: squareID, ColoredBy: owner}, nil
}

// End transitions playing → finished. Ending an already-finished game is a
// no-op so that redundant timeout enforcement from multiple clients is safe.
func End(g *Game) error {
	switch g.Status {
	case StatusPlaying:
		g.Status = StatusFinished
		return nil
	case StatusFinished:
		return nil
	default:
		return ErrStatusConflict
	}
}

// Reset implements "play again": back to lobby with zeroed scores, empty
// rosters, and a fresh grid. Team identity (name, color, icon, capacity)
// and the question bank survive.
func Reset(g *Game) error {
	if g.Status != StatusFinished {
		return ErrStatusConflict
	}
	g.Status = StatusLobby
	g.GameStartedAt = nil
	for i := range g.Teams {
		g.Teams[i].Score = 0
		g.Teams[i].Players = []Player{}
	}
	g.Grid = NewGrid(len(g.Grid))
	return nil
}
