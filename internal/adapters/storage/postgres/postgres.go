// Package postgres opens the PostgreSQL database used for history and conversations.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/sqlstore"
)

// Dialect is the PostgreSQL dialect.
var Dialect = sqlstore.Dialect{Name: "postgres", Numbered: true}

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting postgres: %w", err)
	}

	if err := sqlstore.Migrate(ctx, db, Dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
