// Package service implements the game operations as atomic read-modify-write
// transactions against the document store. Each operation validates against
// the just-read state, never against anything a client cached.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizterra/quizterra/internal/docstore"
	"github.com/quizterra/quizterra/internal/game"
	"github.com/quizterra/quizterra/internal/questions"
)

const createAttempts = 5

type Service struct {
	store     *docstore.Store
	generator questions.Generator
	logger    *slog.Logger

	// QuestionCount is how many questions to request when a game starts
	// with an empty bank.
	QuestionCount int

	now func() time.Time
}

func New(store *docstore.Store, generator questions.Generator, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		generator:     generator,
		logger:        logger,
		QuestionCount: 10,
		now:           time.Now,
	}
}

// CreateGame allocates a fresh PIN and persists a lobby-status game.
func (s *Service) CreateGame(ctx context.Context, teams []game.Team, cfg game.Config) (game.Game, error) {
	for i := 0; i < createAttempts; i++ {
		g := game.New(game.NewPIN(), teams, cfg, s.now())
		err := s.store.Create(ctx, g)
		if errors.Is(err, docstore.ErrExists) {
			continue
		}
		if err != nil {
			return game.Game{}, err
		}
		s.logger.Info("game created", "pin", g.ID, "sessionType", g.SessionType, "teams", len(g.Teams))
		return g, nil
	}
	return game.Game{}, fmt.Errorf("allocating pin: exhausted %d attempts", createAttempts)
}

// Get returns the current snapshot of a game, case-insensitive on PIN.
func (s *Service) Get(ctx context.Context, pin string) (game.Game, error) {
	g, err := s.store.Get(ctx, pin)
	return g, mapNotFound(err)
}

// JoinTeam adds the identity to the named team while the game is in lobby.
func (s *Service) JoinTeam(ctx context.Context, pin, identity, playerID, name, teamName string) (game.Game, error) {
	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		return game.Join(g, identity, playerID, name, teamName)
	})
	return g, mapNotFound(err)
}

// StartGame moves lobby → playing (or → starting when countdown > 0, so
// every client counts down from the same anchor). An empty question bank is
// populated first; a generation failure surfaces before any transition, so
// the game stays in lobby.
func (s *Service) StartGame(ctx context.Context, pin, identity string, countdown time.Duration) (game.Game, error) {
	current, err := s.Get(ctx, pin)
	if err != nil {
		return game.Game{}, err
	}

	var bank []game.Question
	if len(current.Questions) == 0 {
		bank, err = s.generator.Generate(ctx, current.Topic, current.Difficulty, s.QuestionCount)
		if err != nil {
			s.logger.Warn("question generation failed, game stays in lobby", "pin", current.ID, "error", err)
			return game.Game{}, err
		}
	}

	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		if len(g.Questions) == 0 {
			g.Questions = bank
		}
		now := s.now()
		return game.Start(g, identity, now.Add(countdown), now)
	})
	if err != nil {
		return g, mapNotFound(err)
	}

	// Server-side promotion fallback. Clients promote too; whoever commits
	// first wins and the rest no-op.
	if g.Status == game.StatusStarting {
		time.AfterFunc(countdown, func() {
			if _, err := s.PromoteStarting(context.Background(), pin); err != nil && !errors.Is(err, game.ErrGameNotFound) {
				s.logger.Warn("countdown promotion failed", "pin", pin, "error", err)
			}
		})
	}
	return g, nil
}

// PromoteStarting flips starting → playing once the anchor has passed.
// Safe for any client to call at any time.
func (s *Service) PromoteStarting(ctx context.Context, pin string) (game.Game, error) {
	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		return game.Promote(g, s.now())
	})
	return g, mapNotFound(err)
}

// SubmitAnswer records an answer for the player's current question.
func (s *Service) SubmitAnswer(ctx context.Context, pin, identity, answer string) (game.AnswerResult, game.Game, error) {
	var res game.AnswerResult
	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		var err error
		res, err = game.SubmitAnswer(g, identity, answer)
		return err
	})
	return res, g, mapNotFound(err)
}

// ClaimTerritory spends a coloring credit on one grid square. Pass
// game.SkipSquare to forfeit the claim.
func (s *Service) ClaimTerritory(ctx context.Context, pin, identity string, squareID int) (game.ClaimResult, game.Game, error) {
	var res game.ClaimResult
	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		var err error
		res, err = game.ClaimSquare(g, identity, squareID)
		return err
	})
	return res, g, mapNotFound(err)
}

// SkipClaim advances past the coloring step without taking territory.
func (s *Service) SkipClaim(ctx context.Context, pin, identity string) (game.ClaimResult, game.Game, error) {
	return s.ClaimTerritory(ctx, pin, identity, game.SkipSquare)
}

// EndGame moves playing → finished. Callable by the admin or, in individual
// and 1v1 sessions, by any participant — timeout enforcement is redundant
// across clients and first writer wins; the rest no-op.
func (s *Service) EndGame(ctx context.Context, pin, identity string) (game.Game, error) {
	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		if !eligibleToEnd(g, identity) {
			return game.ErrNotAllowed
		}
		return game.End(g)
	})
	return g, mapNotFound(err)
}

// ResetGame implements "play again" on a finished game.
func (s *Service) ResetGame(ctx context.Context, pin, identity string) (game.Game, error) {
	g, err := s.store.Transact(ctx, pin, func(g *game.Game) error {
		if !eligibleToEnd(g, identity) {
			return game.ErrNotAllowed
		}
		return game.Reset(g)
	})
	return g, mapNotFound(err)
}

// UpdateMetadata patches admin-only display fields without a transaction.
func (s *Service) UpdateMetadata(ctx context.Context, pin, title, description string) (game.Game, error) {
	fields := map[string]any{}
	if title != "" {
		fields["title"] = title
	}
	if description != "" {
		fields["description"] = description
	}
	g, err := s.store.Update(ctx, pin, fields)
	return g, mapNotFound(err)
}

// DeleteGame removes a game document outright.
func (s *Service) DeleteGame(ctx context.Context, pin string) error {
	return mapNotFound(s.store.Delete(ctx, pin))
}

func eligibleToEnd(g *game.Game, identity string) bool {
	if identity == g.AdminID {
		return true
	}
	p, _ := g.FindPlayer(identity)
	if p == nil {
		return false
	}
	// Individual players and either side of a 1v1 enforce timeouts locally.
	return g.SessionType == game.SessionIndividual || g.PlayerCount() <= 2
}

func mapNotFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return game.ErrGameNotFound
	}
	return err
}
