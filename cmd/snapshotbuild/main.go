package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/questmap/worldroute/internal/config"
	"github.com/questmap/worldroute/internal/db"
	"github.com/questmap/worldroute/internal/pipeline"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("interrupted", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := flag.String("config", "config/routeserver.yaml", "path to the yaml config")
	flag.Parse()

	cfg, err := config.LoadRouteServer(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	snap, err := pipeline.Build(ctx, database, cfg.Build)
	if err != nil {
		return err
	}
	if err := db.NewSnapshotRepository(database.Pool()).Save(ctx, snap); err != nil {
		return err
	}

	v := snap.Version()
	fmt.Printf("snapshot %s: %d tiles, %d clusters, %d entrances, %d teleports, %d landmarks\n",
		v.Hash, v.Tiles, v.Clusters, v.Entrances, v.Teleports, v.Landmarks)
	return nil
}
