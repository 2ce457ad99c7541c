package postgres

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects to the hosted database, key overrides the DSN password if set
func NewPool(ctx context.Context, url, key string) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(url, key)
	if err != nil {
		return nil, err
	}
	goapp.Log.Info().Str("host", cfg.ConnConfig.Host).Str("db", cfg.ConnConfig.Database).
		Int32("max_conn", cfg.MaxConns).Int32("min_conn", cfg.MinConns).Msg("db info")
	res, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("can't init db pool: %w", err)
	}
	return res, nil
}

func poolConfig(url, key string) (*pgxpool.Config, error) {
	res, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("can't parse db url: %w", err)
	}
	if key != "" {
		res.ConnConfig.Password = key
	}
	res.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		goapp.Log.Debug().Uint32("pid", c.PgConn().PID()).Msg("db connected")
		return nil
	}
	return res, nil
}
