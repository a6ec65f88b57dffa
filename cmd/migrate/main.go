package main

import (
	"context"
	"flag"

	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/db"
	"clinic_sync_backend/platform/logger"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding migration files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("running database migrations", "dir", *dir)

	if err := db.RunMigrations(context.Background(), cfg, *dir); err != nil {
		log.Error("migrations failed", "error", err)
		panic("migrations failed: " + err.Error())
	}

	log.Info("migrations complete")
}
