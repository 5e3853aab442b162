package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/seen"
)

// openStore builds the seen-URL store for the configured driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (seen.Store, error) {
	switch cfg.Driver {
	case "file", "":
		return seen.NewFile(cfg.Path), nil
	case "sqlite":
		return seen.NewSQLite(cfg.Path)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, eris.New("store: postgres driver requires store.database_url")
		}
		return seen.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
