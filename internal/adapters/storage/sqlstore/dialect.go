// Package sqlstore implements the history, conversation and group repositories on
// database/sql. The postgres and sqlite packages supply the driver and dialect.
//
// Timestamps are stored as Unix nanoseconds so keyset pagination compares
// exactly on every backend.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	// Name identifies the backend in errors and health checks.
	Name string

	// Numbered reports whether placeholders are $1, $2, ... instead of ?.
	Numbered bool
}

// Rebind rewrites ? placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS translations (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		original_text   TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		source_lang     TEXT NOT NULL,
		target_lang     TEXT NOT NULL,
		provider        TEXT NOT NULL DEFAULT '',
		mode            TEXT NOT NULL DEFAULT '',
		confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at      BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS translations_user_created
		ON translations (user_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		start_time BIGINT NOT NULL,
		end_time   BIGINT,
		data       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS conversations_status_end
		ON conversations (status, end_time)`,
	`CREATE TABLE IF NOT EXISTS group_conversations (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		ended_at   BIGINT,
		data       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS group_conversations_status_ended
		ON group_conversations (status, ended_at)`,
}

// Migrate creates the tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating %s schema: %w", d.Name, err)
		}
	}
	return nil
}

// HealthChecker pings the database. It is a required dependency.
type HealthChecker struct {
	db *sql.DB
	d  Dialect
}

// NewHealthChecker creates a checker for db.
func NewHealthChecker(db *sql.DB, d Dialect) *HealthChecker {
	return &HealthChecker{db: db, d: d}
}

// Name implements ports.HealthChecker.
func (h *HealthChecker) Name() string { return h.d.Name }

// Check implements ports.HealthChecker.
func (h *HealthChecker) Check(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
