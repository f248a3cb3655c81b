package store

const (
	workflowsTable     = "workflows"
	workflowStepsTable = "workflow_steps"
	stepWorkflowColumn = "workflow_id"
)

const workflowColumns = "id, name, description, category_id, is_favorite, execution_mode, position, created_at, updated_at"

const stepColumns = "id, workflow_id, command_id, position, condition, timeout_seconds, auto_retry_count, enabled, continue_on_failure, created_at, updated_at"

// CreateWorkflow inserts a new workflow at the end of the global workflow
// ordering and returns its id.
func (s *Store) CreateWorkflow(w Workflow) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateNonEmpty("name", w.Name); err != nil {
		return 0, err
	}
	if w.ExecutionMode == "" {
		w.ExecutionMode = ModeSequential
	}

	position, err := s.nextPosition(workflowsTable, "", nil)
	if err != nil {
		return 0, err
	}

	return s.create(workflowsTable,
		`INSERT INTO workflows (name, description, category_id, is_favorite, execution_mode, position)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.Name, w.Description, w.CategoryID, w.IsFavorite, string(w.ExecutionMode), position)
}

// GetWorkflow fetches a workflow by id.
func (s *Store) GetWorkflow(id int64) (Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getWorkflow(id)
}

func (s *Store) getWorkflow(id int64) (Workflow, error) {
	return queryOne(s, workflowsTable, id,
		"SELECT "+workflowColumns+" FROM workflows WHERE id = ?",
		scanWorkflow, id)
}

// ListWorkflows returns workflows in ascending position order, optionally
// narrowed by filter.
func (s *Store) ListWorkflows(filter ListFilter) ([]Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFilter()
	filter.apply(f)
	query := "SELECT " + workflowColumns + " FROM workflows" + f.clause() + " ORDER BY position"
	return queryList(s, query, scanWorkflow, f.args...)
}

// UpdateWorkflow rewrites a workflow's fields. Position is never touched
// here; use MoveWorkflowBetween.
func (s *Store) UpdateWorkflow(w Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateNonEmpty("name", w.Name); err != nil {
		return err
	}
	if w.ExecutionMode == "" {
		w.ExecutionMode = ModeSequential
	}

	return s.mutate(workflowsTable, w.ID,
		`UPDATE workflows SET
			name = ?,
			description = ?,
			category_id = ?,
			execution_mode = ?,
			is_favorite = ?
		 WHERE id = ?`,
		w.Name, w.Description, w.CategoryID, string(w.ExecutionMode), w.IsFavorite, w.ID)
}

// DeleteWorkflow removes a workflow and, through the schema's cascade rules,
// its steps and their history records.
func (s *Store) DeleteWorkflow(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(workflowsTable, id, "DELETE FROM workflows WHERE id = ?", id)
}

// ToggleWorkflowFavorite flips the favorite flag.
func (s *Store) ToggleWorkflowFavorite(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(workflowsTable, id,
		"UPDATE workflows SET is_favorite = NOT is_favorite WHERE id = ?", id)
}

// MoveWorkflowBetween relocates a workflow in the global ordering space.
func (s *Store) MoveWorkflowBetween(workflowID int64, prevID, nextID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.moveItemBetween(workflowsTable, workflowID, prevID, nextID,
		"", nil, s.workflowPositionLookup)
}

func (s *Store) workflowPositionLookup(id *int64, fallback int64) (int64, *int64, error) {
	if id == nil {
		return fallback, nil, nil
	}
	w, err := s.getWorkflow(*id)
	if err != nil {
		return 0, nil, err
	}
	return w.Position, nil, nil
}

// WorkflowCount counts workflows in the given category (nil counts the
// uncategorized ones).
func (s *Store) WorkflowCount(categoryID *int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM workflows WHERE category_id IS ?", categoryID).Scan(&count); err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// CreateWorkflowStep appends a step to its workflow and returns its id.
// Both the workflow and the command must exist.
func (s *Store) CreateWorkflowStep(st WorkflowStep) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getWorkflow(st.WorkflowID); err != nil {
		return 0, err
	}
	if _, err := s.getCommand(st.CommandID); err != nil {
		return 0, err
	}
	if st.Condition == "" {
		st.Condition = ConditionAlways
	}

	workflowID := st.WorkflowID
	position, err := s.nextPosition(workflowStepsTable, stepWorkflowColumn, &workflowID)
	if err != nil {
		return 0, err
	}

	return s.create(workflowStepsTable,
		`INSERT INTO workflow_steps (workflow_id, command_id, position, condition, timeout_seconds, auto_retry_count, enabled, continue_on_failure)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.WorkflowID, st.CommandID, position, string(st.Condition),
		st.TimeoutSeconds, st.AutoRetryCount, st.Enabled, st.ContinueOnFailure)
}

// GetWorkflowStep fetches a step by id.
func (s *Store) GetWorkflowStep(id int64) (WorkflowStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getWorkflowStep(id)
}

func (s *Store) getWorkflowStep(id int64) (WorkflowStep, error) {
	return queryOne(s, workflowStepsTable, id,
		"SELECT "+stepColumns+" FROM workflow_steps WHERE id = ?",
		scanWorkflowStep, id)
}

// ListWorkflowSteps returns steps matching filter in ascending position order.
func (s *Store) ListWorkflowSteps(filter StepFilter) ([]WorkflowStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFilter()
	filter.apply(f)
	query := "SELECT " + stepColumns + " FROM workflow_steps" + f.clause() + " ORDER BY position"
	return queryList(s, query, scanWorkflowStep, f.args...)
}

// StepWithCommand pairs a step with the command it runs.
type StepWithCommand struct {
	Step    WorkflowStep
	Command Command
}

// ListWorkflowStepsWithCommands returns the workflow's steps joined with
// their commands, in step position order. The executor uses this to run a
// workflow without a query per step.
func (s *Store) ListWorkflowStepsWithCommands(workflowID int64, enabledOnly bool) ([]StepWithCommand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFilter().where("ws.workflow_id = ?", workflowID)
	if enabledOnly {
		f.where("ws.enabled = 1")
	}

	query := `SELECT
		ws.id, ws.workflow_id, ws.command_id, ws.position, ws.condition,
		ws.timeout_seconds, ws.auto_retry_count, ws.enabled, ws.continue_on_failure,
		ws.created_at, ws.updated_at,
		c.id, c.name, c.command, c.arguments, c.description, c.group_id, c.position,
		c.working_directory, c.env_vars, c.shell, c.category_id, c.is_favorite,
		c.created_at, c.updated_at
	 FROM workflow_steps ws
	 JOIN commands c ON ws.command_id = c.id` + f.clause() + " ORDER BY ws.position"

	return queryList(s, query, func(row scanner) (StepWithCommand, error) {
		var sc StepWithCommand
		var condition string
		var arguments string
		var envVars *string
		err := row.Scan(
			&sc.Step.ID, &sc.Step.WorkflowID, &sc.Step.CommandID, &sc.Step.Position,
			&condition, &sc.Step.TimeoutSeconds, &sc.Step.AutoRetryCount,
			&sc.Step.Enabled, &sc.Step.ContinueOnFailure, &sc.Step.CreatedAt, &sc.Step.UpdatedAt,
			&sc.Command.ID, &sc.Command.Name, &sc.Command.Command, &arguments,
			&sc.Command.Description, &sc.Command.GroupID, &sc.Command.Position,
			&sc.Command.WorkingDirectory, &envVars, &sc.Command.Shell,
			&sc.Command.CategoryID, &sc.Command.IsFavorite, &sc.Command.CreatedAt, &sc.Command.UpdatedAt)
		if err != nil {
			return sc, err
		}
		sc.Step.Condition = stepConditionOrFallback(condition)
		sc.Command.Arguments = decodeStringSlice(arguments)
		sc.Command.EnvVars = decodeStringMap(envVars)
		return sc, nil
	}, f.args...)
}

// UpdateWorkflowStep rewrites a step's fields. Position and the owning
// workflow are never touched here; use MoveWorkflowStepBetween. The target
// command must exist.
func (s *Store) UpdateWorkflowStep(st WorkflowStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithField("step_id", st.ID).WithField("workflow_id", st.WorkflowID).Debug("updating workflow step")

	if _, err := s.getCommand(st.CommandID); err != nil {
		return err
	}
	if st.Condition == "" {
		st.Condition = ConditionAlways
	}

	return s.mutate(workflowStepsTable, st.ID,
		`UPDATE workflow_steps SET
			command_id = ?,
			condition = ?,
			timeout_seconds = ?,
			auto_retry_count = ?,
			enabled = ?,
			continue_on_failure = ?
		 WHERE id = ?`,
		st.CommandID, string(st.Condition), st.TimeoutSeconds, st.AutoRetryCount,
		st.Enabled, st.ContinueOnFailure, st.ID)
}

// DeleteWorkflowStep removes a step.
func (s *Store) DeleteWorkflowStep(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(workflowStepsTable, id, "DELETE FROM workflow_steps WHERE id = ?", id)
}

// MoveWorkflowStepBetween relocates a step among the steps of its workflow.
func (s *Store) MoveWorkflowStepBetween(stepID int64, prevID, nextID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.getWorkflowStep(stepID)
	if err != nil {
		return err
	}
	workflowID := st.WorkflowID
	return s.moveItemBetween(workflowStepsTable, stepID, prevID, nextID,
		stepWorkflowColumn, &workflowID, s.stepPositionLookup)
}

func (s *Store) stepPositionLookup(id *int64, fallback int64) (int64, *int64, error) {
	if id == nil {
		return fallback, nil, nil
	}
	st, err := s.getWorkflowStep(*id)
	if err != nil {
		return 0, nil, err
	}
	workflowID := st.WorkflowID
	return st.Position, &workflowID, nil
}

// ToggleWorkflowStepEnabled flips the enabled flag.
func (s *Store) ToggleWorkflowStepEnabled(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(workflowStepsTable, id,
		"UPDATE workflow_steps SET enabled = NOT enabled WHERE id = ?", id)
}

// WorkflowStepCount counts the steps of a workflow.
func (s *Store) WorkflowStepCount(workflowID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM workflow_steps WHERE workflow_id = ?", workflowID).Scan(&count); err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func scanWorkflow(row scanner) (Workflow, error) {
	var w Workflow
	var mode string
	err := row.Scan(&w.ID, &w.Name, &w.Description, &w.CategoryID, &w.IsFavorite,
		&mode, &w.Position, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return w, err
	}
	w.ExecutionMode = executionModeOrFallback(mode)
	return w, nil
}

func scanWorkflowStep(row scanner) (WorkflowStep, error) {
	var st WorkflowStep
	var condition string
	err := row.Scan(&st.ID, &st.WorkflowID, &st.CommandID, &st.Position, &condition,
		&st.TimeoutSeconds, &st.AutoRetryCount, &st.Enabled, &st.ContinueOnFailure,
		&st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return st, err
	}
	st.Condition = stepConditionOrFallback(condition)
	return st, nil
}

// Unknown stored enum values decode to a documented fallback rather than
// failing the read.

func executionModeOrFallback(s string) ExecutionMode {
	mode, err := ParseExecutionMode(s)
	if err != nil {
		logger.WithError(err).Warn("invalid execution mode, defaulting to sequential")
		return ModeSequential
	}
	return mode
}

func stepConditionOrFallback(s string) StepCondition {
	cond, err := ParseStepCondition(s)
	if err != nil {
		logger.WithError(err).Warn("invalid condition, defaulting to always")
		return ConditionAlways
	}
	return cond
}
