package game

import "fmt"

// Validate checks the document invariants that must hold after every
// transaction commit. The store adapter runs it before writing and rejects
// any document that fails — loosely shaped writes never reach disk.
func Validate(g *Game) error {
	switch g.Status {
	case StatusLobby, StatusStarting, StatusPlaying, StatusFinished:
	default:
		return fmt.Errorf("unknown status %q", g.Status)
	}

	seen := make(map[string]string)
	for ti := range g.Teams {
		team := &g.Teams[ti]
		if len(team.Players) > team.Capacity {
			return fmt.Errorf("team %q holds %d players over capacity %d",
				team.Name, len(team.Players), team.Capacity)
		}
		for pi := range team.Players {
			p := &team.Players[pi]
			if other, ok := seen[p.ID]; ok {
				return fmt.Errorf("identity %q present in teams %q and %q", p.ID, other, team.Name)
			}
			seen[p.ID] = team.Name
			if p.TeamName != team.Name {
				return fmt.Errorf("player %q in team %q references team %q", p.ID, team.Name, p.TeamName)
			}
			if p.ColoringCredits < 0 {
				return fmt.Errorf("player %q has negative coloring credits", p.ID)
			}
			if len(p.AnsweredQuestions) > len(g.Questions) {
				return fmt.Errorf("player %q answered %d of %d questions",
					p.ID, len(p.AnsweredQuestions), len(g.Questions))
			}
		}
	}

	for i := range g.Grid {
		if g.Grid[i].ID != i {
			return fmt.Errorf("grid square at index %d has id %d", i, g.Grid[i].ID)
		}
	}
	return nil
}
