package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateCommand(Command{
		Name:      "deploy",
		Command:   "make",
		Arguments: []string{"deploy", "ENV=prod"},
		EnvVars:   map[string]string{"AWS_REGION": "eu-central-1"},
		Shell:     ptr("/bin/bash"),
	})
	require.NoError(t, err)

	c, err := s.GetCommand(id)
	require.NoError(t, err)
	assert.Equal(t, "deploy", c.Name)
	assert.Equal(t, "make", c.Command)
	assert.Equal(t, []string{"deploy", "ENV=prod"}, c.Arguments)
	assert.Equal(t, map[string]string{"AWS_REGION": "eu-central-1"}, c.EnvVars)
	assert.Nil(t, c.GroupID)
	assert.NotEmpty(t, c.CreatedAt)
}

func TestCommandValidation(t *testing.T) {
	s := newTestStore(t)

	var invalid *InvalidDataError

	_, err := s.CreateCommand(Command{Name: "", Command: "echo"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "name", invalid.Field)

	_, err = s.CreateCommand(Command{Name: "x", Command: "  "})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "command", invalid.Field)

	_, err = s.CreateCommand(Command{Name: "x", Command: "echo", EnvVars: map[string]string{"A B": "1"}})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "env_vars", invalid.Field)

	// Valid key characters pass.
	_, err = s.CreateCommand(Command{Name: "x", Command: "echo", EnvVars: map[string]string{"MY_var-1": "ok"}})
	require.NoError(t, err)
}

func TestCreateCommandForeignKeyViolation(t *testing.T) {
	s := newTestStore(t)

	missing := int64(4242)
	_, err := s.CreateCommand(Command{Name: "x", Command: "echo", GroupID: &missing})
	var fk *ForeignKeyError
	require.ErrorAs(t, err, &fk)
}

func TestGetCommandNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCommand(77)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, commandsTable, notFound.Entity)
	assert.Equal(t, int64(77), notFound.ID)
}

func TestUpdateCommandNeverTouchesPosition(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)
	mustCreateCommand(t, s, "b", &gid)

	c, err := s.GetCommand(a)
	require.NoError(t, err)
	before := c.Position

	c.Name = "renamed"
	c.Command = "echo renamed"
	require.NoError(t, s.UpdateCommand(c))

	got, err := s.GetCommand(a)
	require.NoError(t, err)
	assert.Equal(t, before, got.Position)
	assert.Equal(t, "renamed", got.Name)
}

func TestUpdateCommandNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateCommand(Command{ID: 4242, Name: "x", Command: "echo"})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteCommand(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateCommand(t, s, "gone", nil)
	require.NoError(t, s.DeleteCommand(id))

	var notFound *NotFoundError
	_, err := s.GetCommand(id)
	require.ErrorAs(t, err, &notFound)
	require.ErrorAs(t, s.DeleteCommand(id), &notFound)
}

func TestListCommandsFilters(t *testing.T) {
	s := newTestStore(t)

	catID, err := s.CreateCategory("ops", nil, nil)
	require.NoError(t, err)
	gid := mustCreateGroup(t, s, "root", nil)

	_, err = s.CreateCommand(Command{Name: "plain", Command: "echo", GroupID: &gid})
	require.NoError(t, err)
	tagged, err := s.CreateCommand(Command{Name: "tagged", Command: "echo", GroupID: &gid, CategoryID: &catID})
	require.NoError(t, err)
	fav, err := s.CreateCommand(Command{Name: "fav", Command: "echo", GroupID: &gid, IsFavorite: true})
	require.NoError(t, err)
	loose := mustCreateCommand(t, s, "loose", nil)

	inGroup, err := s.ListCommands(&gid, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, inGroup, 3)

	ungrouped, err := s.ListCommands(nil, ListFilter{})
	require.NoError(t, err)
	require.Len(t, ungrouped, 1)
	assert.Equal(t, loose, ungrouped[0].ID)

	byCat, err := s.ListCommands(&gid, ListFilter{CategoryID: &catID})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, tagged, byCat[0].ID)

	favs, err := s.ListCommands(&gid, ListFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, fav, favs[0].ID)
}

func TestSearchCommands(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCommand(Command{Name: "deploy staging", Command: "make deploy"})
	require.NoError(t, err)
	_, err = s.CreateCommand(Command{Name: "db backup", Command: "pg_dump", Description: ptr("nightly deploy helper")})
	require.NoError(t, err)
	favID, err := s.CreateCommand(Command{Name: "fav deploy", Command: "kubectl apply", IsFavorite: true})
	require.NoError(t, err)
	_, err = s.CreateCommand(Command{Name: "unrelated", Command: "ls"})
	require.NoError(t, err)

	results, err := s.SearchCommands("deploy")
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Favorites come first.
	assert.Equal(t, favID, results[0].ID)

	// Case-insensitive.
	results, err = s.SearchCommands("DEPLOY")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = s.SearchCommands("no such thing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCorruptArgumentsDecodeToEmpty(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateCommand(t, s, "broken", nil)
	_, err := s.db.Exec("UPDATE commands SET arguments = 'not json', env_vars = '{{' WHERE id = ?", id)
	require.NoError(t, err)

	// The command stays readable; corrupt sub-fields fall back to empties.
	c, err := s.GetCommand(id)
	require.NoError(t, err)
	assert.Empty(t, c.Arguments)
	assert.Nil(t, c.EnvVars)
}

func TestToggleCommandFavorite(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateCommand(t, s, "x", nil)
	require.NoError(t, s.ToggleCommandFavorite(id))

	c, err := s.GetCommand(id)
	require.NoError(t, err)
	assert.True(t, c.IsFavorite)

	var notFound *NotFoundError
	require.ErrorAs(t, s.ToggleCommandFavorite(12345), &notFound)
}
