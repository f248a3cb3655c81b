package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/store"
	"github.com/cmdvault/cmdvault/internal/utils"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage command groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetInt64("parent")
		category, _ := cmd.Flags().GetInt64("category")
		description, _ := cmd.Flags().GetString("description")
		workdir, _ := cmd.Flags().GetString("workdir")
		shell, _ := cmd.Flags().GetString("shell")
		return withStore(func(s *store.Store) error {
			id, err := s.CreateGroup(store.Group{
				Name:             args[0],
				Description:      optionalString(description),
				ParentGroupID:    optionalID(parent),
				WorkingDirectory: optionalString(workdir),
				Shell:            optionalString(shell),
				CategoryID:       optionalID(category),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created group %d (%s)\n", id, args[0])
			return nil
		})
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups at one level of the hierarchy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		parent, _ := cmd.Flags().GetInt64("parent")
		category, _ := cmd.Flags().GetInt64("category")
		favorites, _ := cmd.Flags().GetBool("favorites")
		return withStore(func(s *store.Store) error {
			groups, err := s.ListGroups(optionalID(parent), store.ListFilter{
				CategoryID:    optionalID(category),
				FavoritesOnly: favorites,
			})
			if err != nil {
				return err
			}
			for _, g := range groups {
				marker := " "
				if g.IsFavorite {
					marker = "*"
				}
				fmt.Printf("%d\t%s %s\n", g.ID, marker, g.Name)
			}
			return nil
		})
	},
}

var groupTreeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Print a group and all of its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			groups, err := s.GetGroupTree(id)
			if err != nil {
				return err
			}
			for _, g := range groups {
				path, err := s.GetGroupPath(g.ID)
				if err != nil {
					return err
				}
				fmt.Printf("%d\t%s\n", g.ID, strings.Join(path, "/"))
			}
			return nil
		})
	},
}

var groupMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Reorder a group between two of its siblings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetInt64("after")
		before, _ := cmd.Flags().GetInt64("before")
		return withStore(func(s *store.Store) error {
			return s.MoveGroupBetween(id, optionalID(after), optionalID(before))
		})
	},
}

var groupFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle a group's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.ToggleGroupFavorite(id)
		})
	},
}

var groupRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a group and everything beneath it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !utils.Confirm(fmt.Sprintf("Delete group %d and everything beneath it?", id)) {
			fmt.Println("aborted")
			return nil
		}
		return withStore(func(s *store.Store) error {
			count, err := s.GroupCommandCount(id)
			if err != nil {
				return err
			}
			if err := s.DeleteGroup(id); err != nil {
				return err
			}
			fmt.Printf("deleted group %d (%d commands removed)\n", id, count)
			return nil
		})
	},
}

func init() {
	groupAddCmd.Flags().Int64("parent", 0, "Parent group id")
	groupAddCmd.Flags().Int64("category", 0, "Category id")
	groupAddCmd.Flags().String("description", "", "Group description")
	groupAddCmd.Flags().String("workdir", "", "Default working directory")
	groupAddCmd.Flags().String("shell", "", "Default shell")
	groupListCmd.Flags().Int64("parent", 0, "List children of this group (default: top level)")
	groupListCmd.Flags().Int64("category", 0, "Filter by category id")
	groupListCmd.Flags().Bool("favorites", false, "Only favorites")
	groupRmCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	groupMoveCmd.Flags().Int64("after", 0, "Sibling to place the group after")
	groupMoveCmd.Flags().Int64("before", 0, "Sibling to place the group before")
	groupCmd.AddCommand(groupAddCmd, groupListCmd, groupTreeCmd, groupMoveCmd, groupFavoriteCmd, groupRmCmd)
	rootCmd.AddCommand(groupCmd)
}
