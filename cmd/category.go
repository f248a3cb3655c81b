package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/store"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		icon, _ := cmd.Flags().GetString("icon")
		color, _ := cmd.Flags().GetString("color")
		return withStore(func(s *store.Store) error {
			id, err := s.CreateCategory(args[0], optionalString(icon), optionalString(color))
			if err != nil {
				return err
			}
			fmt.Printf("created category %d (%s)\n", id, args[0])
			return nil
		})
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(func(s *store.Store) error {
			cats, err := s.ListCategories()
			if err != nil {
				return err
			}
			for _, c := range cats {
				count, err := s.CategoryCommandCount(c.ID)
				if err != nil {
					return err
				}
				fmt.Printf("%d\t%s\t%d commands\n", c.ID, c.Name, count)
			}
			return nil
		})
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("category", args[0])
		if err != nil {
			return err
		}
		icon, _ := cmd.Flags().GetString("icon")
		color, _ := cmd.Flags().GetString("color")
		return withStore(func(s *store.Store) error {
			return s.UpdateCategory(id, args[1], optionalString(icon), optionalString(color))
		})
	},
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a category (commands keep existing, uncategorized)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("category", args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *store.Store) error {
			return s.DeleteCategory(id)
		})
	},
}

func init() {
	categoryAddCmd.Flags().String("icon", "", "Icon name")
	categoryAddCmd.Flags().String("color", "", "Display color")
	categoryRenameCmd.Flags().String("icon", "", "Icon name")
	categoryRenameCmd.Flags().String("color", "", "Display color")
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryRenameCmd, categoryRmCmd)
	rootCmd.AddCommand(categoryCmd)
}
