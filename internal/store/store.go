// Package store provides the SQLite-backed entity store: four entity
// collections (notes, folders, tags, images) plus a small workspace
// key-value table for durable UI state.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	preview    TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	folder_id  INTEGER,
	is_pinned  INTEGER NOT NULL DEFAULT 0,
	is_trashed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS folders (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	parent_id INTEGER
);

CREATE TABLE IF NOT EXISTS tags (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	parent_id INTEGER
);

CREATE TABLE IF NOT EXISTS images (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	mime_type  TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS workspace (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);
`

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
