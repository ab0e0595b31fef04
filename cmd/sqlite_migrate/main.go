package main

import (
	"context"
	"os"

	"github.com/hetulpatel/arbscanner/internal/config"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/storage/sqlite"
)

func main() {
	logging.InitFromEnv()
	cfg, err := config.Load(os.Getenv("ARB_CONFIG"))
	if err != nil {
		logging.Fatalf("[sqlite-migrate] load config: %v", err)
	}

	store, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		logging.Fatalf("[sqlite-migrate] open sqlite: %v", err)
	}
	defer store.Close()

	if err := store.MigrateToUnifiedSchema(context.Background()); err != nil {
		logging.Fatalf("[sqlite-migrate] migrate: %v", err)
	}
	logging.Infof("[sqlite-migrate] schema migrated to unified markets table at %s", store.Path())
}
