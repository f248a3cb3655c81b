package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateGroup(Group{
		Name:             "deploy",
		Description:      ptr("deployment scripts"),
		WorkingDirectory: ptr("/srv/app"),
		Shell:            ptr("/bin/zsh"),
		EnvVars:          map[string]string{"STAGE": "prod"},
		IsFavorite:       true,
	})
	require.NoError(t, err)

	g, err := s.GetGroup(id)
	require.NoError(t, err)
	assert.Equal(t, "deploy", g.Name)
	assert.Equal(t, "deployment scripts", *g.Description)
	assert.Equal(t, map[string]string{"STAGE": "prod"}, g.EnvVars)
	assert.True(t, g.IsFavorite)
	assert.Nil(t, g.ParentGroupID)
	assert.NotEmpty(t, g.CreatedAt)
}

func TestGroupValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateGroup(Group{Name: "   "})
	var invalid *InvalidDataError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "name", invalid.Field)

	_, err = s.CreateGroup(Group{Name: "ok", EnvVars: map[string]string{"BAD KEY": "x"}})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "env_vars", invalid.Field)
}

func TestGroupSelfParentRejected(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateGroup(t, s, "root", nil)
	g, err := s.GetGroup(id)
	require.NoError(t, err)

	g.ParentGroupID = &id
	err = s.UpdateGroup(g)
	var circular *CircularReferenceError
	require.ErrorAs(t, err, &circular)
	assert.Equal(t, id, circular.GroupID)

	// The store is unchanged.
	got, err := s.GetGroup(id)
	require.NoError(t, err)
	assert.Nil(t, got.ParentGroupID)
}

func TestGroupChainCycleRejected(t *testing.T) {
	s := newTestStore(t)

	a := mustCreateGroup(t, s, "a", nil)
	b := mustCreateGroup(t, s, "b", &a)
	c := mustCreateGroup(t, s, "c", &b)

	// a -> b -> c exists; making c the parent of a closes the loop.
	ga, err := s.GetGroup(a)
	require.NoError(t, err)
	ga.ParentGroupID = &c
	err = s.UpdateGroup(ga)
	var circular *CircularReferenceError
	require.ErrorAs(t, err, &circular)

	got, err := s.GetGroup(a)
	require.NoError(t, err)
	assert.Nil(t, got.ParentGroupID)
}

func TestGroupReparentToValidParent(t *testing.T) {
	s := newTestStore(t)

	a := mustCreateGroup(t, s, "a", nil)
	b := mustCreateGroup(t, s, "b", nil)

	gb, err := s.GetGroup(b)
	require.NoError(t, err)
	gb.ParentGroupID = &a
	require.NoError(t, s.UpdateGroup(gb))

	got, err := s.GetGroup(b)
	require.NoError(t, err)
	require.NotNil(t, got.ParentGroupID)
	assert.Equal(t, a, *got.ParentGroupID)
}

func TestUpdateGroupNeverTouchesPosition(t *testing.T) {
	s := newTestStore(t)

	a := mustCreateGroup(t, s, "a", nil)
	mustCreateGroup(t, s, "b", nil)

	ga, err := s.GetGroup(a)
	require.NoError(t, err)
	before := ga.Position

	ga.Name = "renamed"
	require.NoError(t, s.UpdateGroup(ga))

	got, err := s.GetGroup(a)
	require.NoError(t, err)
	assert.Equal(t, before, got.Position)
	assert.Equal(t, "renamed", got.Name)
}

func TestDeleteGroupCascades(t *testing.T) {
	s := newTestStore(t)

	root := mustCreateGroup(t, s, "root", nil)
	child := mustCreateGroup(t, s, "child", &root)
	cmd := mustCreateCommand(t, s, "build", &root)
	nested := mustCreateCommand(t, s, "test", &child)

	require.NoError(t, s.DeleteGroup(root))

	var notFound *NotFoundError
	_, err := s.GetGroup(child)
	require.ErrorAs(t, err, &notFound)
	_, err = s.GetCommand(cmd)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, commandsTable, notFound.Entity)
	_, err = s.GetCommand(nested)
	require.ErrorAs(t, err, &notFound)
}

func TestListGroupsFilters(t *testing.T) {
	s := newTestStore(t)

	catID, err := s.CreateCategory("infra", nil, nil)
	require.NoError(t, err)

	root := mustCreateGroup(t, s, "root", nil)
	_, err = s.CreateGroup(Group{Name: "tagged", ParentGroupID: &root, CategoryID: &catID})
	require.NoError(t, err)
	fav, err := s.CreateGroup(Group{Name: "fav", ParentGroupID: &root, IsFavorite: true})
	require.NoError(t, err)

	// Top level only.
	top, err := s.ListGroups(nil, ListFilter{})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "root", top[0].Name)

	// Children of root, favorites only.
	favs, err := s.ListGroups(&root, ListFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, fav, favs[0].ID)

	// Children of root in a category.
	tagged, err := s.ListGroups(&root, ListFilter{CategoryID: &catID})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "tagged", tagged[0].Name)
}

func TestGroupTreeAndPath(t *testing.T) {
	s := newTestStore(t)

	root := mustCreateGroup(t, s, "root", nil)
	mid := mustCreateGroup(t, s, "mid", &root)
	leaf := mustCreateGroup(t, s, "leaf", &mid)
	mustCreateGroup(t, s, "sibling", nil)

	tree, err := s.GetGroupTree(root)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	ids := []int64{tree[0].ID, tree[1].ID, tree[2].ID}
	assert.Contains(t, ids, root)
	assert.Contains(t, ids, mid)
	assert.Contains(t, ids, leaf)

	path, err := s.GetGroupPath(leaf)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "mid", "leaf"}, path)
}

func TestToggleGroupFavorite(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateGroup(t, s, "root", nil)
	require.NoError(t, s.ToggleGroupFavorite(id))

	g, err := s.GetGroup(id)
	require.NoError(t, err)
	assert.True(t, g.IsFavorite)

	require.NoError(t, s.ToggleGroupFavorite(id))
	g, err = s.GetGroup(id)
	require.NoError(t, err)
	assert.False(t, g.IsFavorite)

	var notFound *NotFoundError
	require.ErrorAs(t, s.ToggleGroupFavorite(9999), &notFound)
}

func TestGroupCommandCount(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateGroup(t, s, "root", nil)
	mustCreateCommand(t, s, "a", &id)
	mustCreateCommand(t, s, "b", &id)
	mustCreateCommand(t, s, "ungrouped", nil)

	count, err := s.GroupCommandCount(id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
