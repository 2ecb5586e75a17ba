package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Driver names accepted by Open. They match the database/sql registrations.
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

// Open connects to the store, tunes the pool and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	pool, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database connection: %w", driver, err)
	}

	if driver == DriverSQLite && isSQLiteMemory(dsn) {
		// Every connection to :memory: is a separate database.
		pool.SetMaxOpenConns(1)
	} else {
		pool.SetMaxOpenConns(maxOpenConns)
		pool.SetMaxIdleConns(maxIdleConns)
		pool.SetConnMaxLifetime(connMaxLifetime)
		pool.SetConnMaxIdleTime(connMaxIdleTime)
	}

	if err := pool.PingContext(ctx); err != nil {
		if closeErr := pool.Close(); closeErr != nil {
			slog.WarnContext(ctx, "failed to close database after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	slog.InfoContext(ctx, "connected to database", "db.driver", driver)
	return pool, nil
}

// sqliteDSN turns on foreign keys (needed for ON DELETE CASCADE) and a busy
// timeout for every pooled connection.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isSQLiteMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
