package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmdvault/cmdvault/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "cmdvault.db"))
	require.NoError(t, err)
	s := New(conn)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T {
	return &v
}

func mustCreateCommand(t *testing.T, s *Store, name string, groupID *int64) int64 {
	t.Helper()
	id, err := s.CreateCommand(Command{Name: name, Command: "echo " + name, GroupID: groupID})
	require.NoError(t, err)
	return id
}

func mustCreateGroup(t *testing.T, s *Store, name string, parentID *int64) int64 {
	t.Helper()
	id, err := s.CreateGroup(Group{Name: name, ParentGroupID: parentID})
	require.NoError(t, err)
	return id
}

func mustCreateWorkflow(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.CreateWorkflow(Workflow{Name: name})
	require.NoError(t, err)
	return id
}
