package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandNamesInOrder(t *testing.T, s *Store, groupID *int64) []string {
	t.Helper()
	cmds, err := s.ListCommands(groupID, ListFilter{})
	require.NoError(t, err)
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

func TestFirstSiblingStartsAtGap(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	g, err := s.GetGroup(gid)
	require.NoError(t, err)
	assert.Equal(t, int64(positionGap), g.Position)
}

func TestCreateAssignsIncreasingPositions(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)
	b := mustCreateCommand(t, s, "b", &gid)
	c := mustCreateCommand(t, s, "c", &gid)

	var prev int64 = -1
	for _, id := range []int64{a, b, c} {
		cmd, err := s.GetCommand(id)
		require.NoError(t, err)
		assert.Greater(t, cmd.Position, prev)
		prev = cmd.Position
	}
	assert.Equal(t, []string{"a", "b", "c"}, commandNamesInOrder(t, s, &gid))
}

func TestSiblingSetsAreIndependent(t *testing.T) {
	s := newTestStore(t)

	g1 := mustCreateGroup(t, s, "one", nil)
	g2 := mustCreateGroup(t, s, "two", nil)
	a := mustCreateCommand(t, s, "a", &g1)
	b := mustCreateCommand(t, s, "b", &g2)

	ca, err := s.GetCommand(a)
	require.NoError(t, err)
	cb, err := s.GetCommand(b)
	require.NoError(t, err)
	// Both are the first member of their own sibling set.
	assert.Equal(t, int64(positionGap), ca.Position)
	assert.Equal(t, int64(positionGap), cb.Position)
}

func TestMoveToTop(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)
	b := mustCreateCommand(t, s, "b", &gid)

	require.NoError(t, s.MoveCommandBetween(b, nil, &a))
	assert.Equal(t, []string{"b", "a"}, commandNamesInOrder(t, s, &gid))

	// Moving a to the bottom is a no-op here.
	require.NoError(t, s.MoveCommandBetween(a, &b, nil))
	assert.Equal(t, []string{"b", "a"}, commandNamesInOrder(t, s, &gid))
}

func TestMoveBetweenNeighbors(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)
	b := mustCreateCommand(t, s, "b", &gid)
	c := mustCreateCommand(t, s, "c", &gid)

	require.NoError(t, s.MoveCommandBetween(c, &a, &b))
	assert.Equal(t, []string{"a", "c", "b"}, commandNamesInOrder(t, s, &gid))
}

func TestMoveRequiresAtLeastOneBound(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)

	err := s.MoveCommandBetween(a, nil, nil)
	var invalid *InvalidDataError
	require.ErrorAs(t, err, &invalid)
}

func TestMoveRejectsCrossContainerNeighbors(t *testing.T) {
	s := newTestStore(t)

	g1 := mustCreateGroup(t, s, "one", nil)
	g2 := mustCreateGroup(t, s, "two", nil)
	a := mustCreateCommand(t, s, "a", &g1)
	b := mustCreateCommand(t, s, "b", &g2)

	err := s.MoveCommandBetween(a, &b, nil)
	var invalid *InvalidDataError
	require.ErrorAs(t, err, &invalid)

	// The target keeps its position.
	got, err := s.GetCommand(a)
	require.NoError(t, err)
	assert.Equal(t, int64(positionGap), got.Position)
}

func TestMoveMissingTargetIsNotFound(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)

	err := s.MoveCommandBetween(9999, &a, nil)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRepeatedMovesTriggerRenumber(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)
	b := mustCreateCommand(t, s, "b", &gid)
	c := mustCreateCommand(t, s, "c", &gid)

	// Squeeze b and c into the gap after a over and over. Integer midpoints
	// halve the available space each round, so this must eventually renumber.
	for i := 0; i < 16; i++ {
		require.NoError(t, s.MoveCommandBetween(b, &a, &c))
		require.NoError(t, s.MoveCommandBetween(c, &a, &b))
	}

	// Relative order survives the renumber; positions stay strictly increasing.
	assert.Equal(t, []string{"a", "c", "b"}, commandNamesInOrder(t, s, &gid))
	cmds, err := s.ListCommands(&gid, ListFilter{})
	require.NoError(t, err)
	for i := 1; i < len(cmds); i++ {
		assert.Greater(t, cmds[i].Position, cmds[i-1].Position)
	}
}

func TestRenumberPreservesOrderAndRestoresSpacing(t *testing.T) {
	s := newTestStore(t)

	gid := mustCreateGroup(t, s, "root", nil)
	a := mustCreateCommand(t, s, "a", &gid)
	b := mustCreateCommand(t, s, "b", &gid)
	c := mustCreateCommand(t, s, "c", &gid)

	// Collapse the positions to adjacent integers so the next midpoint
	// insertion has no room.
	for i, id := range []int64{a, b, c} {
		_, err := s.db.Exec("UPDATE commands SET position = ? WHERE id = ?", i+1, id)
		require.NoError(t, err)
	}

	require.NoError(t, s.MoveCommandBetween(c, &a, &b))

	assert.Equal(t, []string{"a", "c", "b"}, commandNamesInOrder(t, s, &gid))
	cmds, err := s.ListCommands(&gid, ListFilter{})
	require.NoError(t, err)
	for i := 1; i < len(cmds); i++ {
		assert.Greater(t, cmds[i].Position-cmds[i-1].Position, int64(1))
	}
}

func TestWorkflowsShareOneOrderingSpace(t *testing.T) {
	s := newTestStore(t)

	w1 := mustCreateWorkflow(t, s, "first")
	w2 := mustCreateWorkflow(t, s, "second")
	w3 := mustCreateWorkflow(t, s, "third")

	require.NoError(t, s.MoveWorkflowBetween(w3, nil, &w1))

	flows, err := s.ListWorkflows(ListFilter{})
	require.NoError(t, err)
	require.Len(t, flows, 3)
	assert.Equal(t, []int64{w3, w1, w2}, []int64{flows[0].ID, flows[1].ID, flows[2].ID})
}

func TestStepMoveScopedToWorkflow(t *testing.T) {
	s := newTestStore(t)

	cmd := mustCreateCommand(t, s, "build", nil)
	w1 := mustCreateWorkflow(t, s, "one")
	w2 := mustCreateWorkflow(t, s, "two")

	s1, err := s.CreateWorkflowStep(WorkflowStep{WorkflowID: w1, CommandID: cmd, Enabled: true})
	require.NoError(t, err)
	s2, err := s.CreateWorkflowStep(WorkflowStep{WorkflowID: w1, CommandID: cmd, Enabled: true})
	require.NoError(t, err)
	other, err := s.CreateWorkflowStep(WorkflowStep{WorkflowID: w2, CommandID: cmd, Enabled: true})
	require.NoError(t, err)

	// Reorder within w1.
	require.NoError(t, s.MoveWorkflowStepBetween(s2, nil, &s1))
	steps, err := s.ListWorkflowSteps(StepFilter{WorkflowID: &w1})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, s2, steps[0].ID)

	// A neighbor from another workflow is rejected.
	err = s.MoveWorkflowStepBetween(s1, &other, nil)
	var invalid *InvalidDataError
	require.ErrorAs(t, err, &invalid)
}
