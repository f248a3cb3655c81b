// Package store implements the cmdvault persistence core: categories, groups,
// commands, workflows with ordered steps, and the execution history ledger,
// all backed by a single embedded SQLite database.
package store

import "fmt"

// Category is a flat tag. No ordering, no hierarchy.
type Category struct {
	ID        int64
	Name      string
	Icon      *string
	Color     *string
	CreatedAt string
}

// Group is a node in the group tree. Position is unique only among siblings
// (groups sharing the same parent).
type Group struct {
	ID               int64
	Name             string
	Description      *string
	ParentGroupID    *int64
	Position         int64
	WorkingDirectory *string
	EnvVars          map[string]string
	Shell            *string
	CategoryID       *int64
	IsFavorite       bool
	Icon             *string
	CreatedAt        string
	UpdatedAt        string
}

// Command is a leaf unit of executable work. Position is unique among
// commands within the same (possibly absent) group.
type Command struct {
	ID               int64
	Name             string
	Command          string
	Arguments        []string
	Description      *string
	GroupID          *int64
	Position         int64
	WorkingDirectory *string
	EnvVars          map[string]string
	Shell            *string
	CategoryID       *int64
	IsFavorite       bool
	CreatedAt        string
	UpdatedAt        string
}

// Workflow is an ordered container referencing commands through steps.
// All workflows share a single global ordering space.
type Workflow struct {
	ID            int64
	Name          string
	Description   *string
	CategoryID    *int64
	IsFavorite    bool
	ExecutionMode ExecutionMode
	Position      int64
	CreatedAt     string
	UpdatedAt     string
}

// WorkflowStep is an ordered edge from a workflow to a command.
type WorkflowStep struct {
	ID                int64
	WorkflowID        int64
	CommandID         int64
	Position          int64
	Condition         StepCondition
	TimeoutSeconds    *int64
	AutoRetryCount    *int64
	Enabled           bool
	ContinueOnFailure bool
	CreatedAt         string
	UpdatedAt         string
}

// Execution is one invocation attempt recorded in the ledger. Exactly one of
// {command-only, workflow-only, command+workflow+step} reference combinations
// is valid.
type Execution struct {
	ID             int64
	CommandID      *int64
	WorkflowID     *int64
	WorkflowStepID *int64
	PID            *int64
	Status         Status
	ExitCode       *int64
	StartedAt      string
	CompletedAt    *string
	TriggeredBy    TriggeredBy
	Context        *string
}

// ExecutionMode controls how a workflow runs its steps. Only sequential is
// currently meaningful; the other values are accepted and stored.
type ExecutionMode string

const (
	ModeSequential  ExecutionMode = "sequential"
	ModeParallel    ExecutionMode = "parallel"
	ModeConditional ExecutionMode = "conditional"
)

// ParseExecutionMode decodes a stored execution mode.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch ExecutionMode(s) {
	case ModeSequential, ModeParallel, ModeConditional:
		return ExecutionMode(s), nil
	}
	return "", fmt.Errorf("invalid execution mode: %q", s)
}

// StepCondition decides whether a step runs based on the previous step.
type StepCondition string

const (
	ConditionAlways    StepCondition = "always"
	ConditionOnSuccess StepCondition = "on_success"
	ConditionOnFailure StepCondition = "on_failure"
)

// ParseStepCondition decodes a stored step condition.
func ParseStepCondition(s string) (StepCondition, error) {
	switch StepCondition(s) {
	case ConditionAlways, ConditionOnSuccess, ConditionOnFailure:
		return StepCondition(s), nil
	}
	return "", fmt.Errorf("invalid condition: %q", s)
}

// Status is the lifecycle state of an execution record. Records are created
// running and reach a terminal state exactly once. The remaining values are
// reserved vocabulary kept for forward compatibility; they are parsed but
// never produced by the transitions in this package.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusRunning     Status = "running"
	StatusSuccess     Status = "success"
	StatusInterrupted Status = "interrupted"
	StatusPaused      Status = "paused"
	StatusFailed      Status = "failed"
	StatusTimedOut    Status = "timed-out"
	StatusCancelled   Status = "cancelled"
	StatusSkipped     Status = "skipped"
	StatusCompleted   Status = "completed"
)

// ParseStatus decodes a stored status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusIdle, StatusRunning, StatusSuccess, StatusInterrupted, StatusPaused,
		StatusFailed, StatusTimedOut, StatusCancelled, StatusSkipped, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status: %q", s)
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// TriggeredBy records why an execution exists.
type TriggeredBy string

const (
	TriggerManual   TriggeredBy = "manual"
	TriggerWorkflow TriggeredBy = "workflow"
	TriggerSchedule TriggeredBy = "schedule"
)

// ParseTriggeredBy decodes a stored trigger origin.
func ParseTriggeredBy(s string) (TriggeredBy, error) {
	switch TriggeredBy(s) {
	case TriggerManual, TriggerWorkflow, TriggerSchedule:
		return TriggeredBy(s), nil
	}
	return "", fmt.Errorf("invalid trigger: %q", s)
}
