package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	Addr        string
	MaxConns    int32
	MaxIdleTime string
}

// New sets up a pgx connection pool and verifies it can reach the database.
func New(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.Addr)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}

	if cfg.MaxIdleTime != "" {
		duration, err := time.ParseDuration(cfg.MaxIdleTime)
		if err != nil {
			return nil, err
		}
		config.MaxConnIdleTime = duration
	}

	// Covers pool creation and the initial Ping.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbpool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}

	return dbpool, nil
}

// Stats is a JSON-friendly snapshot of pool usage, published on /debug/vars.
func Stats(pool *pgxpool.Pool) map[string]any {
	s := pool.Stat()
	return map[string]any{
		"total_conns":     s.TotalConns(),
		"idle_conns":      s.IdleConns(),
		"acquired_conns":  s.AcquiredConns(),
		"max_conns":       s.MaxConns(),
		"acquire_count":   s.AcquireCount(),
		"acquire_time_ms": s.AcquireDuration().Milliseconds(),
	}
}
