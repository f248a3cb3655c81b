package db

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestOpenCreatesFileAndSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmdvault.db")

	conn, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	for _, table := range []string{"categories", "groups", "commands", "workflows", "workflow_steps", "execution_history", "settings"} {
		var count int
		r := conn.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		if err := r.Scan(&count); err != nil {
			t.Fatalf("query schema: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected table %q to exist", table)
		}
	}
}

func TestOpenSeedsSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmdvault.db")

	conn, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer func() { _ = conn.Close() }()

	v, err := GetSchemaVersion(conn)
	if err != nil {
		t.Fatalf("GetSchemaVersion: %v", err)
	}
	if v != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, v)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmdvault.db")

	conn, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open(): %v", err)
	}
	if _, err := conn.Exec("INSERT INTO categories (name) VALUES ('build')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	conn, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open(): %v", err)
	}
	defer func() { _ = conn.Close() }()

	var count int
	if err := conn.QueryRow("SELECT count(*) FROM categories").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected existing data to survive reopen, got %d rows", count)
	}
}

func TestOpenRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions not applicable on windows")
	}
	dbPath := filepath.Join(t.TempDir(), "cmdvault.db")

	conn, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer func() { _ = conn.Close() }()

	info, err := os.Stat(dbPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}
}
