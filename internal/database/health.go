package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Status is the dependency report served on /health.
type Status struct {
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Healthy reports whether every dependency answered.
func (s Status) Healthy() bool {
	return s.Postgres == "ok" && s.Redis == "ok"
}

// Check pings both stores.
func Check(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) Status {
	s := Status{Postgres: "ok", Redis: "ok"}
	if err := pool.Ping(ctx); err != nil {
		s.Postgres = err.Error()
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		s.Redis = err.Error()
	}
	return s
}
