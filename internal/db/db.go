// ABOUTME: Database connection and schema management for vcardz.
// ABOUTME: Handles XDG paths, SQLite initialization, and migrations.

package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    lines TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS card_properties (
    card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    line TEXT NOT NULL,
    tag_hash INTEGER NOT NULL,
    PRIMARY KEY (card_id, position)
);

CREATE TABLE IF NOT EXISTS deleted_cards (
    id TEXT PRIMARY KEY,
    deleted_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS card_properties_name ON card_properties(name);
CREATE INDEX IF NOT EXISTS card_properties_hash ON card_properties(tag_hash);

CREATE VIRTUAL TABLE IF NOT EXISTS cards_fts USING fts5(
    display_name, lines, content='cards', content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS cards_ai AFTER INSERT ON cards BEGIN
    INSERT INTO cards_fts(rowid, display_name, lines) VALUES (NEW.rowid, NEW.display_name, NEW.lines);
END;

CREATE TRIGGER IF NOT EXISTS cards_ad AFTER DELETE ON cards BEGIN
    INSERT INTO cards_fts(cards_fts, rowid, display_name, lines) VALUES('delete', OLD.rowid, OLD.display_name, OLD.lines);
END;

CREATE TRIGGER IF NOT EXISTS cards_au AFTER UPDATE ON cards BEGIN
    INSERT INTO cards_fts(cards_fts, rowid, display_name, lines) VALUES('delete', OLD.rowid, OLD.display_name, OLD.lines);
    INSERT INTO cards_fts(rowid, display_name, lines) VALUES (NEW.rowid, NEW.display_name, NEW.lines);
END;
`

func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Enable foreign keys for this connection
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "vcardz", "vcardz.db")
}
