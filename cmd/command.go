package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/store"
)

var commandCmd = &cobra.Command{
	Use:     "command",
	Aliases: []string{"cmd"},
	Short:   "Manage saved commands",
}

var commandAddCmd = &cobra.Command{
	Use:   "add <name> <command-line>",
	Short: "Save a command",
	Long:  "Save a command. Example:\n  cmdvault command add build \"make -j4\" --arg all --env CC=clang",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetInt64("group")
		category, _ := cmd.Flags().GetInt64("category")
		description, _ := cmd.Flags().GetString("description")
		workdir, _ := cmd.Flags().GetString("workdir")
		shell, _ := cmd.Flags().GetString("shell")
		arguments, _ := cmd.Flags().GetStringArray("arg")
		envPairs, _ := cmd.Flags().GetStringArray("env")

		envVars, err := parseEnvPairs(envPairs)
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			id, err := s.CreateCommand(store.Command{
				Name:             args[0],
				Command:          args[1],
				Arguments:        arguments,
				Description:      optionalString(description),
				GroupID:          optionalID(group),
				WorkingDirectory: optionalString(workdir),
				EnvVars:          envVars,
				Shell:            optionalString(shell),
				CategoryID:       optionalID(category),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created command %d (%s)\n", id, args[0])
			return nil
		})
	},
}

var commandListCmd = &cobra.Command{
	Use:   "list",
	Short: "List commands in a group (or ungrouped)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		group, _ := cmd.Flags().GetInt64("group")
		category, _ := cmd.Flags().GetInt64("category")
		favorites, _ := cmd.Flags().GetBool("favorites")
		return withStore(func(s *store.Store) error {
			cmds, err := s.ListCommands(optionalID(group), store.ListFilter{
				CategoryID:    optionalID(category),
				FavoritesOnly: favorites,
			})
			if err != nil {
				return err
			}
			printCommands(cmds)
			return nil
		})
	},
}

var commandSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search commands by name, command line or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			cmds, err := s.SearchCommands(args[0])
			if err != nil {
				return err
			}
			printCommands(cmds)
			return nil
		})
	},
}

var commandShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one command in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("command", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			c, err := s.GetCommand(id)
			if err != nil {
				return err
			}
			fmt.Printf("name:     %s\n", c.Name)
			fmt.Printf("command:  %s\n", c.Command)
			if len(c.Arguments) > 0 {
				fmt.Printf("args:     %s\n", strings.Join(c.Arguments, " "))
			}
			if c.Description != nil {
				fmt.Printf("about:    %s\n", *c.Description)
			}
			if c.WorkingDirectory != nil {
				fmt.Printf("workdir:  %s\n", *c.WorkingDirectory)
			}
			if c.Shell != nil {
				fmt.Printf("shell:    %s\n", *c.Shell)
			}
			for k, v := range c.EnvVars {
				fmt.Printf("env:      %s=%s\n", k, v)
			}
			if c.GroupID != nil {
				path, err := s.GetGroupPath(*c.GroupID)
				if err != nil {
					return err
				}
				fmt.Printf("group:    %s\n", strings.Join(path, "/"))
			}
			return nil
		})
	},
}

var commandMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Reorder a command between two commands of the same group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("command", args[0])
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetInt64("after")
		before, _ := cmd.Flags().GetInt64("before")
		return withStore(func(s *store.Store) error {
			return s.MoveCommandBetween(id, optionalID(after), optionalID(before))
		})
	},
}

var commandFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle a command's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("command", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.ToggleCommandFavorite(id)
		})
	},
}

var commandRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a command and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("command", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.DeleteCommand(id)
		})
	},
}

func printCommands(cmds []store.Command) {
	for _, c := range cmds {
		marker := " "
		if c.IsFavorite {
			marker = "*"
		}
		fmt.Printf("%d\t%s %s\t%s\n", c.ID, marker, c.Name, c.Command)
	}
}

func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid env pair %q, expected KEY=VALUE", p)
		}
		env[key] = value
	}
	return env, nil
}

func init() {
	commandAddCmd.Flags().Int64("group", 0, "Group id")
	commandAddCmd.Flags().Int64("category", 0, "Category id")
	commandAddCmd.Flags().String("description", "", "Command description")
	commandAddCmd.Flags().String("workdir", "", "Working directory")
	commandAddCmd.Flags().String("shell", "", "Shell override")
	commandAddCmd.Flags().StringArray("arg", nil, "Argument (repeatable)")
	commandAddCmd.Flags().StringArray("env", nil, "Environment variable KEY=VALUE (repeatable)")
	commandListCmd.Flags().Int64("group", 0, "List commands of this group (default: ungrouped)")
	commandListCmd.Flags().Int64("category", 0, "Filter by category id")
	commandListCmd.Flags().Bool("favorites", false, "Only favorites")
	commandMoveCmd.Flags().Int64("after", 0, "Command to place this one after")
	commandMoveCmd.Flags().Int64("before", 0, "Command to place this one before")
	commandCmd.AddCommand(commandAddCmd, commandListCmd, commandSearchCmd, commandShowCmd,
		commandMoveCmd, commandFavoriteCmd, commandRmCmd)
	rootCmd.AddCommand(commandCmd)
}
