package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"voicenote/internal/app/repository"
	"voicenote/internal/app/repository/migrate"
)

const driverName = "postgres"

// PostgresDB is the PostgreSQL-backed repository.Store.
type PostgresDB struct {
	*repository.CommonDB
}

var _ repository.Store = (*PostgresDB)(nil)

// NewPostgresDB opens a connection pool for connectionString.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open(driverName, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return newWithDB(db), nil
}

func newWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, driverName)}
}

// Migrate applies the schema.
func (pdb *PostgresDB) Migrate(ctx context.Context) error {
	return migrate.Up(ctx, pdb.DB(), driverName)
}
