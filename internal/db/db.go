package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "modernc.org/sqlite"

	"github.com/cmdvault/cmdvault/internal/config"
)

// InitDB ensures the data directory exists, opens the SQLite database at the
// default location, and creates the schema if it does not exist.
func InitDB() (*sql.DB, error) {
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	return Open(dbPath)
}

// Open opens (creating if needed) the SQLite database at path and applies the
// embedded schema. The whole store is accessed through a single connection so
// that logical operations serialize at the database/sql layer as well.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if err := ApplyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := restrictPermissions(path); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// restrictPermissions narrows the database file to owner read/write. Windows
// does not use POSIX modes, so it is skipped there.
func restrictPermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict db permissions: %w", err)
	}
	return nil
}
