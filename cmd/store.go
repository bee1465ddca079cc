package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/docsmith-ai/promote-cli/internal/config"
	"github.com/docsmith-ai/promote-cli/internal/plan"
	"github.com/docsmith-ai/promote-cli/internal/store"
	"github.com/docsmith-ai/promote-cli/pkg/docsmith"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "promote.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newEnvClient(host string, env config.EnvConfig) (docsmith.Client, error) {
	if env.Token == "" {
		return nil, eris.Errorf("missing API token for %s", host)
	}
	return docsmith.NewClient(host, env.Token,
		docsmith.WithRateLimit(env.RateLimit),
		docsmith.WithTimeout(env.Timeout()),
	), nil
}

func sourceClient(pl *plan.Plan) (docsmith.Client, error) {
	return newEnvClient(pl.Source.Host, cfg.Source)
}

func targetClient(pl *plan.Plan) (docsmith.Client, error) {
	return newEnvClient(pl.Target.Host, cfg.Target)
}
