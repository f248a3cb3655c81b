package store

const (
	groupsTable       = "groups"
	groupParentColumn = "parent_group_id"
)

const groupColumns = "id, name, description, parent_group_id, position, working_directory, env_vars, shell, category_id, is_favorite, icon, created_at, updated_at"

// CreateGroup inserts a new group at the end of its sibling set and returns
// its id. Position, created_at and updated_at on the input are ignored.
func (s *Store) CreateGroup(g Group) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateGroup(g); err != nil {
		return 0, err
	}
	envVars, err := encodeStringMap(g.EnvVars)
	if err != nil {
		return 0, err
	}

	position, err := s.nextPosition(groupsTable, groupParentColumn, g.ParentGroupID)
	if err != nil {
		return 0, err
	}

	return s.create(groupsTable,
		`INSERT INTO groups (name, description, parent_group_id, position, working_directory, env_vars, shell, category_id, is_favorite, icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.Description, g.ParentGroupID, position, g.WorkingDirectory,
		envVars, g.Shell, g.CategoryID, g.IsFavorite, g.Icon)
}

// GetGroup fetches a group by id.
func (s *Store) GetGroup(id int64) (Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getGroup(id)
}

func (s *Store) getGroup(id int64) (Group, error) {
	return queryOne(s, groupsTable, id,
		"SELECT "+groupColumns+" FROM groups WHERE id = ?",
		scanGroup, id)
}

// ListGroups returns the children of parentID (nil means top-level groups),
// optionally narrowed by filter, in ascending position order.
func (s *Store) ListGroups(parentID *int64, filter ListFilter) ([]Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFilter().where(groupParentColumn+" IS ?", parentID)
	filter.apply(f)
	query := "SELECT " + groupColumns + " FROM groups" + f.clause() + " ORDER BY position"
	return queryList(s, query, scanGroup, f.args...)
}

// UpdateGroup rewrites a group's fields. Position is never touched here; use
// MoveGroupBetween. A parent assignment that would loop the parent chain is
// rejected with CircularReferenceError and leaves the store unchanged.
func (s *Store) UpdateGroup(g Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateGroup(g); err != nil {
		return err
	}
	if g.ParentGroupID != nil {
		if err := s.checkNoCircularReference(g.ID, *g.ParentGroupID); err != nil {
			return err
		}
	}
	envVars, err := encodeStringMap(g.EnvVars)
	if err != nil {
		return err
	}

	logger.WithField("group_id", g.ID).Debug("updating group")

	return s.mutate(groupsTable, g.ID,
		`UPDATE groups SET
			name = ?,
			description = ?,
			parent_group_id = ?,
			working_directory = ?,
			env_vars = ?,
			shell = ?,
			category_id = ?,
			icon = ?
		 WHERE id = ?`,
		g.Name, g.Description, g.ParentGroupID, g.WorkingDirectory,
		envVars, g.Shell, g.CategoryID, g.Icon, g.ID)
}

// MoveGroupBetween relocates a group between two sibling groups. A nil prevID
// moves to the top, a nil nextID to the bottom of the sibling set.
func (s *Store) MoveGroupBetween(groupID int64, prevID, nextID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.getGroup(groupID)
	if err != nil {
		return err
	}
	return s.moveItemBetween(groupsTable, groupID, prevID, nextID,
		groupParentColumn, g.ParentGroupID, s.groupPositionLookup)
}

func (s *Store) groupPositionLookup(id *int64, fallback int64) (int64, *int64, error) {
	if id == nil {
		return fallback, nil, nil
	}
	g, err := s.getGroup(*id)
	if err != nil {
		return 0, nil, err
	}
	return g.Position, g.ParentGroupID, nil
}

// DeleteGroup removes a group. Its commands and descendant groups go with it
// through the schema's cascade rules.
func (s *Store) DeleteGroup(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(groupsTable, id, "DELETE FROM groups WHERE id = ?", id)
}

// ToggleGroupFavorite flips the favorite flag.
func (s *Store) ToggleGroupFavorite(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(groupsTable, id,
		"UPDATE groups SET is_favorite = NOT is_favorite WHERE id = ?", id)
}

// GroupCommandCount counts commands directly inside the group.
func (s *Store) GroupCommandCount(id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM commands WHERE group_id = ?", id).Scan(&count); err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// GetGroupTree returns the subtree rooted at rootID: the root plus all
// transitive descendants, ordered by position.
func (s *Store) GetGroupTree(rootID int64) ([]Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return queryList(s,
		`WITH RECURSIVE tree AS (
			SELECT `+groupColumns+` FROM groups WHERE id = ?
			UNION ALL
			SELECT g.id, g.name, g.description, g.parent_group_id, g.position, g.working_directory, g.env_vars, g.shell, g.category_id, g.is_favorite, g.icon, g.created_at, g.updated_at
			FROM groups g
			JOIN tree t ON g.parent_group_id = t.id
		)
		SELECT `+groupColumns+` FROM tree ORDER BY position`,
		scanGroup, rootID)
}

// GetGroupPath returns the ancestor names from the root down to groupID,
// root first, ending with the group itself.
func (s *Store) GetGroupPath(groupID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := queryList(s,
		`WITH RECURSIVE group_path AS (
			SELECT id, name, parent_group_id FROM groups WHERE id = ?
			UNION ALL
			SELECT g.id, g.name, g.parent_group_id FROM groups g
			JOIN group_path p ON g.id = p.parent_group_id
		)
		SELECT name FROM group_path`,
		func(row scanner) (string, error) {
			var name string
			err := row.Scan(&name)
			return name, err
		}, groupID)
	if err != nil {
		return nil, err
	}

	// The walk goes leaf to root; callers want root first.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, nil
}

// checkNoCircularReference walks the parent chain starting at the proposed
// parent. It is a cycle if the walk reaches the group being updated, or if
// any id repeats (pre-existing corruption). The walk is iterative with a
// visited set, bounded by node count rather than recursion depth.
func (s *Store) checkNoCircularReference(groupID, parentID int64) error {
	if groupID == parentID {
		return &CircularReferenceError{GroupID: groupID, ParentID: parentID}
	}

	current := &parentID
	visited := map[int64]bool{}

	for current != nil {
		id := *current
		if id == groupID {
			return &CircularReferenceError{GroupID: groupID, ParentID: parentID}
		}
		if visited[id] {
			return &CircularReferenceError{GroupID: groupID, ParentID: parentID}
		}
		visited[id] = true

		parent, err := s.getGroup(id)
		if err != nil {
			return err
		}
		current = parent.ParentGroupID
	}
	return nil
}

func scanGroup(row scanner) (Group, error) {
	var g Group
	var envVars *string
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.ParentGroupID, &g.Position,
		&g.WorkingDirectory, &envVars, &g.Shell, &g.CategoryID, &g.IsFavorite,
		&g.Icon, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return g, err
	}
	g.EnvVars = decodeStringMap(envVars)
	return g, nil
}

func validateGroup(g Group) error {
	if err := validateNonEmpty("name", g.Name); err != nil {
		return err
	}
	return validateEnvVarKeys(g.EnvVars)
}
