package main

import (
	"log/slog"
	"os"

	"github.com/wichananm65/storefront-backend/internal/config"
	"github.com/wichananm65/storefront-backend/internal/storage"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		slog.Error("database_url is required")
		os.Exit(2)
	}
	if err := storage.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to migrate", "err", err)
		os.Exit(2)
	}
}
