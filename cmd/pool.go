package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/aerocell/towersync/pkg/meili"
)

// dbPool creates a pgxpool.Pool from cfg.Store.
func dbPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("towersync: no database_url configured (set store.database_url)")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "towersync: parse connection string")
	}
	if cfg.Store.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Store.MaxConns
	}
	if cfg.Store.MinConns > 0 {
		poolCfg.MinConns = cfg.Store.MinConns
	}
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "towersync: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "towersync: ping database")
	}

	return pool, nil
}

// meiliClient builds a Meilisearch client from cfg.Meili.
func meiliClient() meili.Client {
	opts := []meili.Option{meili.WithBaseURL(cfg.Meili.Host)}
	if cfg.Meili.RequestsPerSec > 0 {
		opts = append(opts, meili.WithRateLimit(cfg.Meili.RequestsPerSec))
	}
	if cfg.Meili.TimeoutSecs > 0 {
		opts = append(opts, meili.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Meili.TimeoutSecs) * time.Second,
		}))
	}
	return meili.NewClient(cfg.Meili.APIKey, opts...)
}
