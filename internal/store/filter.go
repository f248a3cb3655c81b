package store

import "strings"

// queryFilter accumulates predicate/parameter pairs for the optional list
// filters and renders them into a parameterized WHERE clause. Caller values
// only ever travel through args, never through the SQL text.
type queryFilter struct {
	conds []string
	args  []any
}

func newFilter() *queryFilter {
	return &queryFilter{}
}

// where appends a predicate with its bound parameters. Predicates combine
// with AND semantics.
func (f *queryFilter) where(cond string, args ...any) *queryFilter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

// clause renders " WHERE ..." or the empty string when unfiltered.
func (f *queryFilter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// ListFilter narrows List results for categories-capable entities.
// All set fields combine with AND semantics.
type ListFilter struct {
	CategoryID    *int64
	FavoritesOnly bool
}

func (lf ListFilter) apply(f *queryFilter) {
	if lf.CategoryID != nil {
		f.where("category_id = ?", *lf.CategoryID)
	}
	if lf.FavoritesOnly {
		f.where("is_favorite = 1")
	}
}

// StepFilter narrows ListWorkflowSteps results.
type StepFilter struct {
	WorkflowID  *int64
	CommandID   *int64
	EnabledOnly bool
}

func (sf StepFilter) apply(f *queryFilter) {
	if sf.WorkflowID != nil {
		f.where("workflow_id = ?", *sf.WorkflowID)
	}
	if sf.CommandID != nil {
		f.where("command_id = ?", *sf.CommandID)
	}
	if sf.EnabledOnly {
		f.where("enabled = 1")
	}
}
