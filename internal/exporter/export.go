// Package exporter provides functionality to export vault data from the database.
package exporter

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"

	"github.com/cmdvault/cmdvault/internal/config"
	dbpkg "github.com/cmdvault/cmdvault/internal/db"
	"github.com/cmdvault/cmdvault/internal/store"
)

// ExportDatabase copies the active cmdvault database to dstPath.
func ExportDatabase(dstPath string) error {
	src, err := config.DBPath()
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source db: %w", err)
	}
	defer func() { _ = in.Close() }()
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create dst db: %w", err)
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy db: %w", err)
	}
	return nil
}

// ExportGroup exports one group subtree, commands included, into a standalone
// SQLite DB at dstPath. The destination carries the regular cmdvault schema so
// it can be opened (or imported) like any vault.
func ExportGroup(s *store.Store, groupID int64, dstPath string) error {
	groups, err := s.GetGroupTree(groupID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	dstDB, err := sql.Open("sqlite", dstPath)
	if err != nil {
		return fmt.Errorf("open dst db: %w", err)
	}
	defer func() { _ = dstDB.Close() }()
	if _, err := dstDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := dbpkg.ApplyMigrations(dstDB); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	// Parents must exist before children; the subtree is not guaranteed to
	// arrive parent-first, so place rows as their parents become available.
	idMap := map[int64]int64{}
	remaining := groups
	for len(remaining) > 0 {
		progressed := false
		var deferred []store.Group
		for _, g := range remaining {
			var parent *int64
			if g.ID != groupID {
				mapped, ok := idMap[*g.ParentGroupID]
				if !ok {
					deferred = append(deferred, g)
					continue
				}
				parent = &mapped
			}
			newID, err := insertGroup(dstDB, g, parent)
			if err != nil {
				return err
			}
			idMap[g.ID] = newID
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("group %d: subtree has unresolvable parents", groupID)
		}
		remaining = deferred
	}

	for _, g := range groups {
		cmds, err := s.ListCommands(&g.ID, store.ListFilter{})
		if err != nil {
			return err
		}
		for _, c := range cmds {
			if err := insertCommand(dstDB, c, idMap[g.ID]); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertGroup(dst *sql.DB, g store.Group, parentID *int64) (int64, error) {
	env, err := encodeEnv(g.EnvVars)
	if err != nil {
		return 0, err
	}
	res, err := dst.Exec(
		`INSERT INTO groups (name, description, parent_group_id, position, working_directory, env_vars, shell, is_favorite, icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.Description, parentID, g.Position, g.WorkingDirectory, env, g.Shell, g.IsFavorite, g.Icon)
	if err != nil {
		return 0, fmt.Errorf("insert group %q: %w", g.Name, err)
	}
	return res.LastInsertId()
}

func insertCommand(dst *sql.DB, c store.Command, groupID int64) error {
	args, err := json.Marshal(c.Arguments)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if c.Arguments == nil {
		args = []byte("[]")
	}
	env, err := encodeEnv(c.EnvVars)
	if err != nil {
		return err
	}
	_, err = dst.Exec(
		`INSERT INTO commands (name, command, arguments, description, group_id, position, working_directory, env_vars, shell, is_favorite)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Command, string(args), c.Description, groupID, c.Position,
		c.WorkingDirectory, env, c.Shell, c.IsFavorite)
	if err != nil {
		return fmt.Errorf("insert command %q: %w", c.Name, err)
	}
	return nil
}

func encodeEnv(env map[string]string) (*string, error) {
	if len(env) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode env vars: %w", err)
	}
	s := string(raw)
	return &s, nil
}
