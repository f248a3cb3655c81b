package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/store"
	"github.com/cmdvault/cmdvault/internal/utils"
)

var workflowCmd = &cobra.Command{
	Use:     "workflow",
	Aliases: []string{"wf"},
	Short:   "Manage workflows and their steps",
}

var workflowAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetInt64("category")
		return withStore(func(s *store.Store) error {
			id, err := s.CreateWorkflow(store.Workflow{
				Name:        args[0],
				Description: optionalString(description),
				CategoryID:  optionalID(category),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created workflow %d (%s)\n", id, args[0])
			return nil
		})
	},
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		category, _ := cmd.Flags().GetInt64("category")
		favorites, _ := cmd.Flags().GetBool("favorites")
		return withStore(func(s *store.Store) error {
			flows, err := s.ListWorkflows(store.ListFilter{
				CategoryID:    optionalID(category),
				FavoritesOnly: favorites,
			})
			if err != nil {
				return err
			}
			for _, w := range flows {
				steps, err := s.WorkflowStepCount(w.ID)
				if err != nil {
					return err
				}
				marker := " "
				if w.IsFavorite {
					marker = "*"
				}
				fmt.Printf("%d\t%s %s\t%d steps\n", w.ID, marker, w.Name, steps)
			}
			return nil
		})
	},
}

var workflowShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workflow and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("workflow", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			w, err := s.GetWorkflow(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", w.Name, w.ExecutionMode)
			steps, err := s.ListWorkflowStepsWithCommands(id, false)
			if err != nil {
				return err
			}
			for i, st := range steps {
				state := ""
				if !st.Step.Enabled {
					state = " [disabled]"
				}
				fmt.Printf("%d. (%d) %s: %s%s\n", i+1, st.Step.ID, st.Command.Name, st.Command.Command, state)
			}
			return nil
		})
	},
}

var workflowMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Reorder a workflow in the global ordering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("workflow", args[0])
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetInt64("after")
		before, _ := cmd.Flags().GetInt64("before")
		return withStore(func(s *store.Store) error {
			return s.MoveWorkflowBetween(id, optionalID(after), optionalID(before))
		})
	},
}

var workflowFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle a workflow's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("workflow", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.ToggleWorkflowFavorite(id)
		})
	},
}

var workflowRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a workflow and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("workflow", args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !utils.Confirm(fmt.Sprintf("Delete workflow %d and its steps?", id)) {
			fmt.Println("aborted")
			return nil
		}
		return withStore(func(s *store.Store) error {
			return s.DeleteWorkflow(id)
		})
	},
}

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Manage workflow steps",
}

var stepAddCmd = &cobra.Command{
	Use:   "add <workflow-id> <command-id>",
	Short: "Append a command as a step of a workflow",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wfID, err := parseID("workflow", args[0])
		if err != nil {
			return err
		}
		cmdID, err := parseID("command", args[1])
		if err != nil {
			return err
		}
		condition, _ := cmd.Flags().GetString("condition")
		timeout, _ := cmd.Flags().GetInt64("timeout")
		retries, _ := cmd.Flags().GetInt64("retries")
		continueOnFailure, _ := cmd.Flags().GetBool("continue-on-failure")

		cond, err := store.ParseStepCondition(condition)
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			id, err := s.CreateWorkflowStep(store.WorkflowStep{
				WorkflowID:        wfID,
				CommandID:         cmdID,
				Condition:         cond,
				TimeoutSeconds:    optionalID(timeout),
				AutoRetryCount:    optionalID(retries),
				Enabled:           true,
				ContinueOnFailure: continueOnFailure,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created step %d\n", id)
			return nil
		})
	},
}

var stepMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Reorder a step within its workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("step", args[0])
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetInt64("after")
		before, _ := cmd.Flags().GetInt64("before")
		return withStore(func(s *store.Store) error {
			return s.MoveWorkflowStepBetween(id, optionalID(after), optionalID(before))
		})
	},
}

var stepToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("step", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.ToggleWorkflowStepEnabled(id)
		})
	},
}

var stepRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("step", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.DeleteWorkflowStep(id)
		})
	},
}

func init() {
	workflowAddCmd.Flags().String("description", "", "Workflow description")
	workflowAddCmd.Flags().Int64("category", 0, "Category id")
	workflowListCmd.Flags().Int64("category", 0, "Filter by category id")
	workflowListCmd.Flags().Bool("favorites", false, "Only favorites")
	workflowRmCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	workflowMoveCmd.Flags().Int64("after", 0, "Workflow to place this one after")
	workflowMoveCmd.Flags().Int64("before", 0, "Workflow to place this one before")
	stepAddCmd.Flags().String("condition", string(store.ConditionAlways), "Run condition (always, on_success, on_failure)")
	stepAddCmd.Flags().Int64("timeout", 0, "Timeout in seconds (0 = none)")
	stepAddCmd.Flags().Int64("retries", 0, "Automatic retries on failure (0 = none)")
	stepAddCmd.Flags().Bool("continue-on-failure", false, "Keep running later steps if this one fails")
	stepMoveCmd.Flags().Int64("after", 0, "Step to place this one after")
	stepMoveCmd.Flags().Int64("before", 0, "Step to place this one before")
	stepCmd.AddCommand(stepAddCmd, stepMoveCmd, stepToggleCmd, stepRmCmd)
	workflowCmd.AddCommand(workflowAddCmd, workflowListCmd, workflowShowCmd,
		workflowMoveCmd, workflowFavoriteCmd, workflowRmCmd, stepCmd)
	rootCmd.AddCommand(workflowCmd)
}
