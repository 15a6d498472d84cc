package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quizterra/quizterra/internal/docstore"
	"github.com/quizterra/quizterra/internal/game"
)

// SpawnSession clones an individual-mode parent template into a fresh game
// document owned by one player, so 1-player sessions never contend on the
// parent. The flow is create-then-redirect, not a transaction: a duplicate
// spawn just leaves a harmless orphan document behind.
func (s *Service) SpawnSession(ctx context.Context, parentPIN, identity, playerID, name string) (game.Game, error) {
	parent, err := s.Get(ctx, parentPIN)
	if err != nil {
		return game.Game{}, err
	}
	if parent.SessionType != game.SessionIndividual {
		return game.Game{}, fmt.Errorf("%w: parent is not an individual-mode template", game.ErrStatusConflict)
	}

	bank := parent.Questions
	if len(bank) == 0 {
		bank, err = s.generator.Generate(ctx, parent.Topic, parent.Difficulty, s.QuestionCount)
		if err != nil {
			return game.Game{}, err
		}
		// Backfill the template so later spawns reuse the same bank. Best
		// effort: a concurrent backfill winning the race is fine.
		if _, err := s.store.Transact(ctx, parent.ID, func(g *game.Game) error {
			if len(g.Questions) == 0 {
				g.Questions = bank
			}
			return nil
		}); err != nil {
			s.logger.Warn("template backfill failed", "pin", parent.ID, "error", err)
		}
	}

	teamName := strings.TrimSpace(name)
	if teamName == "" {
		teamName = "Player"
	}

	for i := 0; i < createAttempts; i++ {
		child := game.New(childPIN(parent.ID, identity), []game.Team{
			{Name: teamName, Capacity: 1},
		}, game.Config{
			Title:        parent.Title,
			Topic:        parent.Topic,
			Difficulty:   parent.Difficulty,
			TimerSeconds: parent.TimerSeconds,
			GridSize:     len(parent.Grid),
			SessionType:  game.SessionIndividual,
			AdminID:      identity,
			Questions:    bank,
		}, s.now())
		child.ParentSessionID = parent.ID
		child.Teams[0].Players = []game.Player{{
			ID:                identity,
			PlayerID:          playerID,
			Name:              name,
			TeamName:          teamName,
			AnsweredQuestions: []string{},
		}}

		err := s.store.Create(ctx, child)
		if errors.Is(err, docstore.ErrExists) {
			continue
		}
		if err != nil {
			return game.Game{}, err
		}
		s.logger.Info("individual session spawned", "pin", child.ID, "parent", parent.ID)
		return child, nil
	}
	return game.Game{}, fmt.Errorf("spawning session: exhausted %d attempts", createAttempts)
}

// childPIN derives the spawned document's id from the parent PIN, an
// identity fragment, and a random suffix.
func childPIN(parentPIN, identity string) string {
	frag := strings.ToUpper(strings.Map(alnumOnly, identity))
	if len(frag) > 4 {
		frag = frag[:4]
	}
	if frag == "" {
		frag = "P"
	}
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("%s-%s-%s", parentPIN, frag, suffix)
}

func alnumOnly(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	default:
		return -1
	}
}
