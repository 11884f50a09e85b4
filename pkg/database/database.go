package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/emr-platform/emr-api/internal/config"
)

// Connect opens the shared bounded connection pool. The returned *sql.DB is
// the single pool instance for the process; it is constructed here and passed
// explicitly to whatever opens sessions, never stored in a package variable.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// MaxOpenConns is the hard cap: once reached, acquisition queues until a
	// connection is released or the acquiring context expires. Connections
	// are never created beyond it.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Monitor periodically publishes pool gauge readings until ctx is done.
func Monitor(ctx context.Context, db *sql.DB, publish func(open int), interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			publish(db.Stats().OpenConnections)
		}
	}
}
