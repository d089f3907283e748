package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql and sqlx

	"github.com/ctberthiaume/seaflowpy/db/postgresengine"
)

const defaultDriver = "pgx"

const (
	defaultMaxOpenConnections = 10
	defaultMaxIdleConnections = 5
	defaultMaxConnLifetime    = time.Hour
	defaultMaxConnIdleTime    = time.Minute * 5
)

// openStore builds a postgresengine.Store over the requested driver and
// verifies connectivity. The returned func releases the connection pool.
func openStore(ctx context.Context, driver string, dsn string, verbose bool) (postgresengine.Store, func(), error) {
	logger := newLogger(verbose)

	switch driver {
	case "pgx":
		pool, poolErr := pgxpool.New(ctx, dsn)
		if poolErr != nil {
			return postgresengine.Store{}, nil, poolErr
		}

		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			return postgresengine.Store{}, nil, pingErr
		}

		store, storeErr := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
		if storeErr != nil {
			pool.Close()
			return postgresengine.Store{}, nil, storeErr
		}

		return store, pool.Close, nil

	case "pq":
		sqlDB, openErr := sql.Open("postgres", dsn)
		if openErr != nil {
			return postgresengine.Store{}, nil, openErr
		}

		configurePool(sqlDB)

		if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
			_ = sqlDB.Close()
			return postgresengine.Store{}, nil, pingErr
		}

		store, storeErr := postgresengine.NewStoreFromSQLDB(sqlDB, postgresengine.WithLogger(logger))
		if storeErr != nil {
			_ = sqlDB.Close()
			return postgresengine.Store{}, nil, storeErr
		}

		return store, func() { _ = sqlDB.Close() }, nil

	case "sqlx":
		sqlxDB, openErr := sqlx.Open("postgres", dsn)
		if openErr != nil {
			return postgresengine.Store{}, nil, openErr
		}

		configurePool(sqlxDB.DB)

		if pingErr := sqlxDB.PingContext(ctx); pingErr != nil {
			_ = sqlxDB.Close()
			return postgresengine.Store{}, nil, pingErr
		}

		store, storeErr := postgresengine.NewStoreFromSQLX(sqlxDB, postgresengine.WithLogger(logger))
		if storeErr != nil {
			_ = sqlxDB.Close()
			return postgresengine.Store{}, nil, storeErr
		}

		return store, func() { _ = sqlxDB.Close() }, nil

	default:
		return postgresengine.Store{}, nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

func configurePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(defaultMaxOpenConnections)
	sqlDB.SetMaxIdleConns(defaultMaxIdleConnections)
	sqlDB.SetConnMaxLifetime(defaultMaxConnLifetime)
	sqlDB.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
