// Package sqlite opens the embedded SQLite database used for history and
// conversations when no server database is configured.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/sqlstore"
)

// Dialect is the SQLite dialect.
var Dialect = sqlstore.Dialect{Name: "sqlite"}

// Open opens (creating if needed) the database at path and applies the schema.
// WAL mode lets readers proceed while a writer holds the lock.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting sqlite %s: %w", path, err)
	}

	if err := sqlstore.Migrate(ctx, db, Dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
