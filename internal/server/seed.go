package server

import (
	"context"
	"log/slog"

	"github.com/quizterra/quizterra/internal/game"
	"github.com/quizterra/quizterra/internal/service"
)

// SeedDemo creates a demo curator and a demo lobby game if no curators
// exist yet. Idempotent: does nothing on subsequent starts.
func SeedDemo(ctx context.Context, logger *slog.Logger, curators *CuratorStore, svc *service.Service) error {
	exists, err := curators.HasCurators(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	curatorID, err := curators.CreateCurator(ctx, "demo@quizterra.local", "demo-password")
	if err != nil {
		return err
	}

	g, err := svc.CreateGame(ctx, []game.Team{
		{Name: "Red", Capacity: 8, Color: "#e74c3c", Icon: "fox"},
		{Name: "Blue", Capacity: 8, Color: "#3498db", Icon: "owl"},
	}, game.Config{
		Title:        "Demo: World Capitals",
		Description:  "A short warm-up round seeded at first start.",
		Topic:        "world capitals",
		Difficulty:   "easy",
		TimerSeconds: 300,
		SessionType:  game.SessionTeam,
		AdminID:      curatorID,
		Questions: []game.Question{
			{Question: "What is the capital of France?", Options: []string{"Paris", "Lyon", "Marseille", "Nice"}, Answer: "Paris"},
			{Question: "What is the capital of Japan?", Options: []string{"Osaka", "Tokyo", "Kyoto", "Nagoya"}, Answer: "Tokyo"},
			{Question: "What is the capital of Canada?", Options: []string{"Toronto", "Vancouver", "Ottawa", "Montreal"}, Answer: "Ottawa"},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("demo curator and game seeded", "pin", g.ID)
	return nil
}
