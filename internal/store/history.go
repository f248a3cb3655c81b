package store

import "fmt"

const executionHistoryTable = "execution_history"

const executionColumns = "id, command_id, workflow_id, workflow_step_id, pid, status, exit_code, started_at, completed_at, triggered_by, context"

// DefaultHistoryLimit caps history listings when callers pass no limit.
const DefaultHistoryLimit = 50

// CreateExecution appends a record to the ledger in the 'running' state and
// returns its id. The reference triple must be command-only, workflow-only,
// or all three together (a step execution implies its workflow and command);
// every non-nil reference is existence-checked first. Status, PID, exit code
// and timestamps on the input are ignored.
func (s *Store) CreateExecution(e Execution) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateExecutionInput(e); err != nil {
		return 0, err
	}
	if e.TriggeredBy == "" {
		e.TriggeredBy = TriggerManual
	}

	return s.create(executionHistoryTable,
		`INSERT INTO execution_history (command_id, workflow_id, workflow_step_id, triggered_by, context, status)
		 VALUES (?, ?, ?, ?, ?, 'running')`,
		e.CommandID, e.WorkflowID, e.WorkflowStepID, string(e.TriggeredBy), e.Context)
}

func (s *Store) validateExecutionInput(e Execution) error {
	if e.CommandID != nil {
		if _, err := s.getCommand(*e.CommandID); err != nil {
			return err
		}
	}
	if e.WorkflowID != nil {
		if _, err := s.getWorkflow(*e.WorkflowID); err != nil {
			return err
		}
	}
	if e.WorkflowStepID != nil {
		if _, err := s.getWorkflowStep(*e.WorkflowStepID); err != nil {
			return err
		}
	}

	cmd, flow, step := e.CommandID != nil, e.WorkflowID != nil, e.WorkflowStepID != nil
	valid := (cmd && flow && step) || (cmd && !flow && !step) || (!cmd && flow && !step)
	if !valid {
		return &InvalidDataError{
			Field:  "command_id/workflow_id/workflow_step_id",
			Reason: "invalid combination: must be (command only), (workflow only), or (all three)",
		}
	}
	return nil
}

// GetExecution fetches a ledger record by id.
func (s *Store) GetExecution(id int64) (Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return queryOne(s, executionHistoryTable, id,
		"SELECT "+executionColumns+" FROM execution_history WHERE id = ?",
		scanExecution, id)
}

// ListCommandExecutions returns a command's most recent records, newest
// first. A limit of 0 or less falls back to DefaultHistoryLimit.
func (s *Store) ListCommandExecutions(commandID int64, limit int64) ([]Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return queryList(s,
		`SELECT `+executionColumns+` FROM execution_history
		 WHERE command_id = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		scanExecution, commandID, limit)
}

// ListWorkflowExecutions returns a workflow's most recent records, newest
// first. A limit of 0 or less falls back to DefaultHistoryLimit.
func (s *Store) ListWorkflowExecutions(workflowID int64, limit int64) ([]Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return queryList(s,
		`SELECT `+executionColumns+` FROM execution_history
		 WHERE workflow_id = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		scanExecution, workflowID, limit)
}

// ListRunningExecutions returns records still in 'running', optionally
// scoped to one command or one workflow (not both).
func (s *Store) ListRunningExecutions(commandID, workflowID *int64) ([]Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if commandID != nil && workflowID != nil {
		return nil, &InvalidDataError{
			Field:  "workflow_id",
			Reason: "only one of command_id and workflow_id may be set",
		}
	}

	f := newFilter().where("status = 'running'")
	if commandID != nil {
		f.where("command_id = ?", *commandID)
	}
	if workflowID != nil {
		f.where("workflow_id = ?", *workflowID)
	}
	query := "SELECT " + executionColumns + " FROM execution_history" + f.clause() + " ORDER BY started_at DESC, id DESC"
	return queryList(s, query, scanExecution, f.args...)
}

// AttachExecutionPID stores the OS process id once the process has actually
// been spawned; the id is not known at creation time.
func (s *Store) AttachExecutionPID(id int64, pid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithField("execution_id", id).WithField("pid", pid).Debug("storing pid")
	return s.mutate(executionHistoryTable, id,
		"UPDATE execution_history SET pid = ? WHERE id = ?", pid, id)
}

// FinalizeExecution transitions a record from 'running' to the given terminal
// status, recording an optional exit code. The schema stamps completed_at and
// rejects any update to a record that is already terminal, so re-finalizing
// fails rather than rewriting history.
func (s *Store) FinalizeExecution(id int64, status Status, exitCode *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeExecution(id, status, exitCode)
}

func (s *Store) finalizeExecution(id int64, status Status, exitCode *int64) error {
	if !status.Terminal() {
		return &InvalidDataError{
			Field:  "status",
			Reason: fmt.Sprintf("%q is not a terminal status", status),
		}
	}

	logger.WithField("execution_id", id).WithField("status", status).Debug("finalizing execution")
	return s.mutate(executionHistoryTable, id,
		"UPDATE execution_history SET status = ?, exit_code = ? WHERE id = ?",
		string(status), exitCode, id)
}

// CancelExecution cancels a record whose process never spawned. Equivalent to
// finalizing with 'cancelled' and no exit code.
func (s *Store) CancelExecution(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeExecution(id, StatusCancelled, nil)
}

// DeleteExecution removes a single ledger record.
func (s *Store) DeleteExecution(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(executionHistoryTable, id, "DELETE FROM execution_history WHERE id = ?", id)
}

// CleanupCommandHistory deletes all but the keepLast most recent records of a
// command. Explicit maintenance; nothing prunes automatically.
func (s *Store) CleanupCommandHistory(commandID, keepLast int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithField("command_id", commandID).WithField("keep_last", keepLast).Debug("cleaning up execution history")
	_, err := s.db.Exec(
		`DELETE FROM execution_history
		 WHERE command_id = ?1
		   AND id NOT IN (
			   SELECT id FROM execution_history
			   WHERE command_id = ?1
			   ORDER BY started_at DESC, id DESC
			   LIMIT ?2
		   )`,
		commandID, keepLast)
	return translate(err)
}

// CleanupHistoryOlderThan deletes records that started more than the given
// number of days ago, sparing anything still running.
func (s *Store) CleanupHistoryOlderThan(days int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.WithField("days", days).Debug("deleting old execution history")
	_, err := s.db.Exec(
		`DELETE FROM execution_history
		 WHERE started_at < datetime('now', ?) AND status != 'running'`,
		fmt.Sprintf("-%d days", days))
	return translate(err)
}

// CountCommandExecutions counts a command's ledger records, optionally
// restricted to one status.
func (s *Store) CountCommandExecutions(commandID int64, status *Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFilter().where("command_id = ?", commandID)
	if status != nil {
		f.where("status = ?", string(*status))
	}
	query := "SELECT COUNT(*) FROM execution_history" + f.clause()

	var count int64
	if err := s.db.QueryRow(query, f.args...).Scan(&count); err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func scanExecution(row scanner) (Execution, error) {
	var e Execution
	var status, triggeredBy string
	err := row.Scan(&e.ID, &e.CommandID, &e.WorkflowID, &e.WorkflowStepID, &e.PID,
		&status, &e.ExitCode, &e.StartedAt, &e.CompletedAt, &triggeredBy, &e.Context)
	if err != nil {
		return e, err
	}

	e.Status, err = ParseStatus(status)
	if err != nil {
		logger.WithError(err).Warn("invalid status, defaulting to completed")
		e.Status = StatusCompleted
	}

	e.TriggeredBy, err = ParseTriggeredBy(triggeredBy)
	if err != nil {
		logger.WithError(err).Warn("invalid trigger, using fallback")
		if e.WorkflowID != nil {
			e.TriggeredBy = TriggerWorkflow
		} else {
			e.TriggeredBy = TriggerManual
		}
	}
	return e, nil
}
