package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/importer"
	"github.com/cmdvault/cmdvault/internal/store"
	"github.com/cmdvault/cmdvault/internal/utils"
)

var importCmd = &cobra.Command{
	Use:   "import <src>",
	Short: "Import groups from an exported vault file",
	Long:  "Import groups from an exported vault file. Examples:\n  cmdvault import deploy.db\n  cmdvault import full-backup.db --replace --yes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")
		yes, _ := cmd.Flags().GetBool("yes")

		if replace {
			if !yes && !utils.Confirm("Replace the entire vault with "+args[0]+"?") {
				fmt.Println("aborted")
				return nil
			}
			if err := importer.ImportDatabase(args[0], true); err != nil {
				return err
			}
			fmt.Println("vault replaced")
			return nil
		}
		return withStore(func(s *store.Store) error {
			n, err := importer.ImportGroups(s, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("imported %d groups\n", n)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().Bool("replace", false, "Replace the whole vault instead of merging groups")
	importCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(importCmd)
}
