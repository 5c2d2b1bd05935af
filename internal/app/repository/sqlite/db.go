package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"voicenote/internal/app/repository"
	"voicenote/internal/app/repository/migrate"
)

const driverName = "sqlite3"

// SQLiteDB is the SQLite-backed repository.Store used for local development.
type SQLiteDB struct {
	*repository.CommonDB
}

var _ repository.Store = (*SQLiteDB)(nil)

// NewSQLiteDB opens (and creates if needed) the database file at dbPath.
// ":memory:" opens a private in-memory database.
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// single connection: serializes writers and keeps ":memory:" alive
	db.SetMaxOpenConns(1)

	return &SQLiteDB{CommonDB: repository.NewCommonDB(db, driverName)}, nil
}

// Migrate applies the schema.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	return migrate.Up(ctx, s.DB(), driverName)
}
