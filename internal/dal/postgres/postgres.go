package postgres

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// MustNewClient creates a new Postgres client and runs pending migrations.
//
// Every session gets lock_timeout and statement_timeout from config, so a
// placement blocked on another transaction's product lock fails with a
// lock-wait error instead of hanging. That error surfaces to callers as a
// retryable conflict.
func MustNewClient() *Client {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("MARKET_PG_HOST"),
		os.Getenv("MARKET_PG_PORT"),
		os.Getenv("MARKET_PG_USER"),
		os.Getenv("MARKET_PG_PASSWORD"),
		os.Getenv("MARKET_PG_DB"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		panic(err)
	}

	if lockTimeout := viper.GetString("postgres.lock_timeout"); lockTimeout != "" {
		config.ConnConfig.RuntimeParams["lock_timeout"] = lockTimeout
	}
	if stmtTimeout := viper.GetString("postgres.statement_timeout"); stmtTimeout != "" {
		config.ConnConfig.RuntimeParams["statement_timeout"] = stmtTimeout
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		panic(err)
	}

	// Run migrations using goose with stdlib adapter
	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := goose.Up(db, viper.GetString("postgres.migrations_path")); err != nil {
		panic(err)
	}

	return &Client{
		pool: pool,
	}
}
