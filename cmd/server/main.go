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

	"github.com/kanjiduel/api/internal/config"
	"github.com/kanjiduel/api/internal/database"
	"github.com/kanjiduel/api/internal/engine"
	"github.com/kanjiduel/api/internal/migrations"
	"github.com/kanjiduel/api/internal/server"
	"github.com/kanjiduel/api/internal/words"
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

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	repo := words.NewRepository(db)
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting words: %w", err)
	}
	if count == 0 {
		logger.Warn("word table is empty, seed it with cmd/seed before playing")
	} else {
		logger.Info("word table loaded", "words", count)
	}

	// --- Game engine ---
	reg := engine.New(logger, repo, engine.Config{
		RoundTimeout: cfg.RoundTimeout,
		Countdown:    cfg.Countdown,
		WinThreshold: cfg.WinThreshold,
		RoundCap:     cfg.RoundCap,
		MaxWordRank:  cfg.MaxWordRank,
		LobbyTTL:     cfg.LobbyTTL,
	})
	defer reg.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, reg, db)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return reg.RunReaper(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
