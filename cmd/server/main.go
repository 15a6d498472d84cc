package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/quizterra/quizterra/internal/config"
	"github.com/quizterra/quizterra/internal/database"
	"github.com/quizterra/quizterra/internal/docstore"
	"github.com/quizterra/quizterra/internal/questions"
	"github.com/quizterra/quizterra/internal/server"
	"github.com/quizterra/quizterra/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	store, err := docstore.New(ctx, db)
	if err != nil {
		return fmt.Errorf("initializing game store: %w", err)
	}

	curators, err := server.NewCuratorStore(ctx, db)
	if err != nil {
		return fmt.Errorf("initializing curator store: %w", err)
	}

	// --- Services ---
	generator := questions.NewClient(cfg.QuestionServiceURL, cfg.QuestionServiceModel, cfg.QuestionServiceTimeout)
	svc := service.New(store, generator, logger)
	svc.QuestionCount = cfg.QuestionCount

	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, curators, svc); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:   logger,
		Service:  svc,
		Store:    store,
		Curators: curators,
		DB:       db,
		SPADir:   cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
