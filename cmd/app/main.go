package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/wichananm65/storefront-backend/internal/app"
	"github.com/wichananm65/storefront-backend/internal/config"
	"github.com/wichananm65/storefront-backend/internal/storage"
	"github.com/wichananm65/storefront-backend/pkg/sigctx"
)

const closeTimeout = 10 * time.Second

func main() {
	migrateFirst := pflag.Bool("migrate", false, "apply database migrations before serving")
	pflag.String("config", "", "config file")
	pflag.Parse()

	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()

	if *migrateFirst {
		if err := storage.Migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to migrate", "err", err)
			os.Exit(2)
		}
	}

	storefront := app.New(sigCtx, cfg)
	cfg.Print()

	storefront.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	storefront.Close(ctx)
}
