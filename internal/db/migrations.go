package db

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is the version recorded in the schema_version marker row.
// Bump when a migration below changes the persisted shape.
const SchemaVersion = 1

// ApplyMigrations applies the embedded schema SQL to the database and
// performs lightweight post-creation migrations (adding new columns when needed).
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := ensureSchemaVersion(db); err != nil {
		return err
	}
	// Ensure new columns exist on upgrades
	if err := ensureExecutionHistoryColumns(db); err != nil {
		return err
	}
	return nil
}

func ensureSchemaVersion(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaVersion reads the schema marker row.
func GetSchemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// ensureExecutionHistoryColumns checks for optional columns and adds them when missing.
// Databases created before the context blob was introduced lack the column.
func ensureExecutionHistoryColumns(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(execution_history)")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if !cols["context"] {
		if _, err := db.Exec("ALTER TABLE execution_history ADD COLUMN context TEXT"); err != nil {
			return err
		}
	}
	return nil
}
