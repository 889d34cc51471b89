// Package store is the Postgres persistence layer backing the token,
// factory, and pool caches plus the opportunities table (spec §3, §6).
// All writes are idempotent upserts, per spec §4.2/§9: the caches must
// tolerate concurrent insertion from horizontally replicated consumers.
package store

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	mcommon "github.com/shadowline/mevwatch/common"
)

var log = mcommon.NewLogger("store")

// DB wraps the process-wide connection pool. It is a process-lifecycle
// singleton per spec §5: constructed once at startup, closed on shutdown.
type DB struct {
	*sql.DB
}

// Open connects to databaseURL and verifies connectivity with a ping.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &DB{DB: sqlDB}, nil
}

// Close disconnects the database (spec §5 cancellation: "disconnect the
// database" on SIGINT/SIGTERM).
func (db *DB) Close() error {
	return db.DB.Close()
}
