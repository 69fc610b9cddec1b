package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/config"
	"github.com/FumingPower3925/HoneyBear-Folio/internal/database"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations applied", "db", cfg.DB.Path)
}
