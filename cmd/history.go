package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune the execution ledger",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent executions of a command or workflow",
	RunE: func(cmd *cobra.Command, _ []string) error {
		commandID, _ := cmd.Flags().GetInt64("command")
		workflowID, _ := cmd.Flags().GetInt64("workflow")
		limit, _ := cmd.Flags().GetInt64("limit")

		if (commandID > 0) == (workflowID > 0) {
			return fmt.Errorf("pass exactly one of --command and --workflow")
		}
		return withStore(func(s *store.Store) error {
			var (
				execs []store.Execution
				err   error
			)
			if commandID > 0 {
				execs, err = s.ListCommandExecutions(commandID, limit)
			} else {
				execs, err = s.ListWorkflowExecutions(workflowID, limit)
			}
			if err != nil {
				return err
			}
			printExecutions(execs)
			return nil
		})
	},
}

var historyRunningCmd = &cobra.Command{
	Use:   "running",
	Short: "List executions that have not finished",
	RunE: func(cmd *cobra.Command, _ []string) error {
		commandID, _ := cmd.Flags().GetInt64("command")
		workflowID, _ := cmd.Flags().GetInt64("workflow")
		return withStore(func(s *store.Store) error {
			execs, err := s.ListRunningExecutions(optionalID(commandID), optionalID(workflowID))
			if err != nil {
				return err
			}
			printExecutions(execs)
			return nil
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats <command-id>",
	Short: "Summarize a command's execution outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("command", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			total, err := s.CountCommandExecutions(id, nil)
			if err != nil {
				return err
			}
			fmt.Printf("total\t%d\n", total)
			for _, status := range []store.Status{
				store.StatusRunning, store.StatusSuccess, store.StatusFailed,
				store.StatusTimedOut, store.StatusCancelled,
			} {
				count, err := s.CountCommandExecutions(id, &status)
				if err != nil {
					return err
				}
				if count > 0 {
					fmt.Printf("%s\t%d\n", status, count)
				}
			}
			return nil
		})
	},
}

var historyCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune old ledger records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		commandID, _ := cmd.Flags().GetInt64("command")
		keep, _ := cmd.Flags().GetInt64("keep")
		days, _ := cmd.Flags().GetInt64("older-than")

		if commandID <= 0 && days <= 0 {
			return fmt.Errorf("pass --command with --keep, or --older-than")
		}
		return withStore(func(s *store.Store) error {
			if commandID > 0 {
				if err := s.CleanupCommandHistory(commandID, keep); err != nil {
					return err
				}
			}
			if days > 0 {
				if err := s.CleanupHistoryOlderThan(days); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a single ledger record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("execution", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.DeleteExecution(id)
		})
	},
}

func printExecutions(execs []store.Execution) {
	for _, e := range execs {
		exit := "-"
		if e.ExitCode != nil {
			exit = fmt.Sprintf("%d", *e.ExitCode)
		}
		finished := "-"
		if e.CompletedAt != nil {
			finished = *e.CompletedAt
		}
		fmt.Printf("%d\t%s\texit %s\t%s -> %s\t(%s)\n",
			e.ID, e.Status, exit, e.StartedAt, finished, e.TriggeredBy)
	}
}

func init() {
	historyListCmd.Flags().Int64("command", 0, "Command id")
	historyListCmd.Flags().Int64("workflow", 0, "Workflow id")
	historyListCmd.Flags().Int64("limit", store.DefaultHistoryLimit, "Maximum records to show")
	historyRunningCmd.Flags().Int64("command", 0, "Restrict to one command")
	historyRunningCmd.Flags().Int64("workflow", 0, "Restrict to one workflow")
	historyCleanupCmd.Flags().Int64("command", 0, "Prune this command's history")
	historyCleanupCmd.Flags().Int64("keep", 20, "Records to keep per command")
	historyCleanupCmd.Flags().Int64("older-than", 0, "Delete finished records older than N days")
	historyCmd.AddCommand(historyListCmd, historyRunningCmd, historyStatsCmd, historyCleanupCmd, historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}
