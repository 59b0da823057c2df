package kvstore

import (
	"context"
	"database/sql"
	stderrors "errors"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS mapping_state (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLite is a durable embedded Store for desktop/offline shells.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// key-value schema exists. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.WrapInvalid(
			stderrors.New("database path cannot be empty"),
			"kvstore", "OpenSQLite", "open")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "OpenSQLite", "open database")
	}

	// Serialized access avoids SQLITE_BUSY with the modernc driver.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "kvstore", "OpenSQLite", "create schema")
	}

	return &SQLite{db: db}, nil
}

// Get retrieves the value for key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM mapping_state WHERE key = ?`, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.WrapNotFound(errors.ErrKeyNotFound, "kvstore", "Get", "sqlite get "+key)
	}
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "Get", "sqlite get "+key)
	}
	return value, nil
}

// Set upserts the value for key.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mapping_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return errors.WrapTransient(err, "kvstore", "Set", "sqlite upsert "+key)
	}
	return nil
}

// Delete removes key. Absent keys are a no-op.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mapping_state WHERE key = ?`, key)
	if err != nil {
		return errors.WrapTransient(err, "kvstore", "Delete", "sqlite delete "+key)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
