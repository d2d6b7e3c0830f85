package database

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const connectTimeout = 5 * time.Second

// PoolConfig sizes the Postgres pool
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultPool suits the API process. Workers and CLIs pass smaller pools.
var DefaultPool = PoolConfig{
	MaxOpen:     25,
	MaxIdle:     10,
	MaxLifetime: 5 * time.Minute,
	MaxIdleTime: time.Minute,
}

// NewPostgres opens a pool against databaseURL and verifies it answers.
func NewPostgres(databaseURL string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)
	db.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := ping(db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info().Int("max_open", pool.MaxOpen).Msg("postgres pool ready")
	return db, nil
}

func ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return fn(ctx)
}

// Close releases a connection pool or client, logging failures under name.
func Close(name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Error().Err(err).Str("conn", name).Msg("close failed")
		return
	}
	log.Info().Str("conn", name).Msg("connection closed")
}
