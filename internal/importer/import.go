// Package importer provides functionality to import vault data into the database.
package importer

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"

	"github.com/cmdvault/cmdvault/internal/config"
	"github.com/cmdvault/cmdvault/internal/store"
)

// ImportDatabase copies srcPath into the default database location. If overwrite
// is false and the destination exists, an error is returned.
func ImportDatabase(srcPath string, overwrite bool) error {
	dst, err := config.DBPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dst); err == nil && !overwrite {
		return errors.New("destination database exists; use overwrite=true to replace")
	}
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create dst: %w", err)
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy db: %w", err)
	}
	return nil
}

// ImportGroups merges every top-level group of the vault at srcPath into s,
// subtrees and commands included. Rows are re-created through the store, so
// they get fresh ids and positions at the end of their level while keeping
// their relative order. Returns the number of groups imported.
func ImportGroups(s *store.Store, srcPath string) (int64, error) {
	src, err := openSource(srcPath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	srcStore := store.New(src)
	roots, err := srcStore.ListGroups(nil, store.ListFilter{})
	if err != nil {
		return 0, err
	}

	var imported int64
	for _, root := range roots {
		n, err := importSubtree(srcStore, s, root, nil)
		if err != nil {
			return imported, err
		}
		imported += n
	}
	return imported, nil
}

func openSource(srcPath string) (*sql.DB, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	src, err := sql.Open("sqlite", srcPath)
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	return src, nil
}

func importSubtree(src, dst *store.Store, g store.Group, parentID *int64) (int64, error) {
	newID, err := dst.CreateGroup(store.Group{
		Name:             g.Name,
		Description:      g.Description,
		ParentGroupID:    parentID,
		WorkingDirectory: g.WorkingDirectory,
		EnvVars:          g.EnvVars,
		Shell:            g.Shell,
		Icon:             g.Icon,
	})
	if err != nil {
		return 0, err
	}

	cmds, err := src.ListCommands(&g.ID, store.ListFilter{})
	if err != nil {
		return 0, err
	}
	for _, c := range cmds {
		_, err := dst.CreateCommand(store.Command{
			Name:             c.Name,
			Command:          c.Command,
			Arguments:        c.Arguments,
			Description:      c.Description,
			GroupID:          &newID,
			WorkingDirectory: c.WorkingDirectory,
			EnvVars:          c.EnvVars,
			Shell:            c.Shell,
		})
		if err != nil {
			return 0, err
		}
	}

	children, err := src.ListGroups(&g.ID, store.ListFilter{})
	if err != nil {
		return 0, err
	}
	imported := int64(1)
	for _, child := range children {
		n, err := importSubtree(src, dst, child, &newID)
		if err != nil {
			return imported, err
		}
		imported += n
	}
	return imported, nil
}
