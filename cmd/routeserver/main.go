package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/questmap/worldroute/internal/config"
	"github.com/questmap/worldroute/internal/db"
	"github.com/questmap/worldroute/internal/pipeline"
	"github.com/questmap/worldroute/internal/server"
	"github.com/questmap/worldroute/internal/snapshot"
)

const ConfigPath = "config/routeserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("WORLDROUTE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadRouteServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("worldroute server starting", "bind", cfg.BindAddress, "port", cfg.Port)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	snapRepo := db.NewSnapshotRepository(database.Pool())

	// Prefer the stored artifact; build from the dataset when none exists.
	snap, err := snapRepo.LoadLatest(ctx)
	switch {
	case errors.Is(err, db.ErrNoSnapshot):
		slog.Info("no stored snapshot, building from dataset")
		snap, err = pipeline.Build(ctx, database, cfg.Build)
		if err != nil {
			return err
		}
		if err := snapRepo.Save(ctx, snap); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		slog.Info("stored snapshot loaded", "hash", snap.Version().Hash)
	}

	handle := snapshot.NewHandle(snap)

	reload := func(ctx context.Context) (*snapshot.Snapshot, error) {
		fresh, err := pipeline.Build(ctx, database, cfg.Build)
		if err != nil {
			return nil, err
		}
		if err := snapRepo.Save(ctx, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	srv := server.New(cfg, handle, reload)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}
