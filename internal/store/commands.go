package store

const (
	commandsTable      = "commands"
	commandGroupColumn = "group_id"
)

const commandColumns = "id, name, command, arguments, description, group_id, position, working_directory, env_vars, shell, category_id, is_favorite, created_at, updated_at"

// CreateCommand inserts a new command at the end of its sibling set (commands
// sharing the same, possibly absent, group) and returns its id. Position and
// timestamps on the input are ignored.
func (s *Store) CreateCommand(c Command) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateCommand(c); err != nil {
		return 0, err
	}
	arguments, err := encodeStringSlice(c.Arguments)
	if err != nil {
		return 0, err
	}
	envVars, err := encodeStringMap(c.EnvVars)
	if err != nil {
		return 0, err
	}

	position, err := s.nextPosition(commandsTable, commandGroupColumn, c.GroupID)
	if err != nil {
		return 0, err
	}
	logger.WithField("position", position).Debug("command position")

	return s.create(commandsTable,
		`INSERT INTO commands (name, command, arguments, description, group_id, position, working_directory, env_vars, shell, category_id, is_favorite)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Command, arguments, c.Description, c.GroupID, position,
		c.WorkingDirectory, envVars, c.Shell, c.CategoryID, c.IsFavorite)
}

// GetCommand fetches a command by id.
func (s *Store) GetCommand(id int64) (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCommand(id)
}

func (s *Store) getCommand(id int64) (Command, error) {
	return queryOne(s, commandsTable, id,
		"SELECT "+commandColumns+" FROM commands WHERE id = ?",
		scanCommand, id)
}

// ListCommands returns the commands of groupID (nil means ungrouped),
// optionally narrowed by filter, in ascending position order.
func (s *Store) ListCommands(groupID *int64, filter ListFilter) ([]Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFilter().where(commandGroupColumn+" IS ?", groupID)
	filter.apply(f)
	query := "SELECT " + commandColumns + " FROM commands" + f.clause() + " ORDER BY position"
	return queryList(s, query, scanCommand, f.args...)
}

// SearchCommands matches term case-insensitively against name, command text
// and description, favorites first, then most recently updated.
func (s *Store) SearchCommands(term string) ([]Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithField("term_length", len(term)).Debug("searching commands")

	pattern := "%" + term + "%"
	return queryList(s,
		`SELECT `+commandColumns+` FROM commands
		 WHERE name LIKE ?1 OR command LIKE ?1 OR description LIKE ?1
		 ORDER BY is_favorite DESC, updated_at DESC`,
		scanCommand, pattern)
}

// UpdateCommand rewrites a command's fields. Position is never touched here;
// use MoveCommandBetween.
func (s *Store) UpdateCommand(c Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateCommand(c); err != nil {
		return err
	}
	arguments, err := encodeStringSlice(c.Arguments)
	if err != nil {
		return err
	}
	envVars, err := encodeStringMap(c.EnvVars)
	if err != nil {
		return err
	}

	logger.WithField("command_id", c.ID).Debug("updating command")

	return s.mutate(commandsTable, c.ID,
		`UPDATE commands SET
			name = ?,
			command = ?,
			arguments = ?,
			description = ?,
			group_id = ?,
			working_directory = ?,
			env_vars = ?,
			shell = ?,
			category_id = ?,
			is_favorite = ?
		 WHERE id = ?`,
		c.Name, c.Command, arguments, c.Description, c.GroupID,
		c.WorkingDirectory, envVars, c.Shell, c.CategoryID, c.IsFavorite, c.ID)
}

// MoveCommandBetween relocates a command between two sibling commands. A nil
// prevID moves to the top, a nil nextID to the bottom of the sibling set.
func (s *Store) MoveCommandBetween(commandID int64, prevID, nextID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.getCommand(commandID)
	if err != nil {
		return err
	}
	return s.moveItemBetween(commandsTable, commandID, prevID, nextID,
		commandGroupColumn, c.GroupID, s.commandPositionLookup)
}

func (s *Store) commandPositionLookup(id *int64, fallback int64) (int64, *int64, error) {
	if id == nil {
		return fallback, nil, nil
	}
	c, err := s.getCommand(*id)
	if err != nil {
		return 0, nil, err
	}
	return c.Position, c.GroupID, nil
}

// DeleteCommand removes a command.
func (s *Store) DeleteCommand(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(commandsTable, id, "DELETE FROM commands WHERE id = ?", id)
}

// ToggleCommandFavorite flips the favorite flag.
func (s *Store) ToggleCommandFavorite(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(commandsTable, id,
		"UPDATE commands SET is_favorite = NOT is_favorite WHERE id = ?", id)
}

// scanCommand maps a row to a Command. Arguments and env vars are decoded
// leniently: a corrupt blob becomes an empty value so the command stays
// viewable and editable rather than unreadable. Anything that actually runs
// the command must re-validate first.
func scanCommand(row scanner) (Command, error) {
	var c Command
	var arguments string
	var envVars *string
	err := row.Scan(&c.ID, &c.Name, &c.Command, &arguments, &c.Description,
		&c.GroupID, &c.Position, &c.WorkingDirectory, &envVars, &c.Shell,
		&c.CategoryID, &c.IsFavorite, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Arguments = decodeStringSlice(arguments)
	c.EnvVars = decodeStringMap(envVars)
	return c, nil
}

// validateCommand: name and command text must be non-empty after trimming,
// env var keys must match [A-Za-z0-9_-]+.
func validateCommand(c Command) error {
	if err := validateNonEmpty("name", c.Name); err != nil {
		return err
	}
	if err := validateNonEmpty("command", c.Command); err != nil {
		return err
	}
	return validateEnvVarKeys(c.EnvVars)
}
