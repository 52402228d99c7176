package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"skill-readiness/internal/config"
	"skill-readiness/internal/database/migration"
	dbpostgres "skill-readiness/internal/database/postgres"
	"skill-readiness/internal/database/seeder"
	"skill-readiness/internal/infrastructure/cache"
	"skill-readiness/internal/pkg/logger"
	"skill-readiness/internal/usecase"
)

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	seed := flag.Bool("seed", false, "load the development catalog after migrating")
	status := flag.Bool("status", false, "print applied and pending migrations and exit")
	flushCache := flag.Bool("flush-rank-cache", true, "drop cached ranked job pages after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer lg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, lg)
	if err != nil {
		lg.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	runner := migration.Runner{Dir: *dir, Log: lg}
	if *status {
		states, err := runner.Status(ctx, db.SQLDB())
		if err != nil {
			lg.Error("migration status failed", "error", err)
			os.Exit(1)
		}
		for _, st := range states {
			lg.Info("migration", "version", st.Version, "name", st.Name, "applied", st.Applied)
		}
		return
	}

	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		lg.Error("migration failed", "error", err)
		os.Exit(1)
	}
	lg.Info("migrations up to date")

	if *seed {
		if err := (seeder.Runner{Seeders: seeder.Defaults(), Log: lg}).Run(ctx, db); err != nil {
			lg.Error("seed failed", "error", err)
			os.Exit(1)
		}
	}

	if !*flushCache {
		return
	}
	rdb := cache.NewRedis(ctx, cfg.Redis, lg)
	defer func() {
		_ = rdb.Close()
	}()
	jm := usecase.NewJobMatchUsecase(nil, nil, rdb, nil, lg)
	if err := jm.InvalidateRankings(ctx); err != nil {
		lg.Warn("failed to flush rank cache", "error", err)
	}
}
