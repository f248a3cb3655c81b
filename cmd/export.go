package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/exporter"
	"github.com/cmdvault/cmdvault/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [dst]",
	Short: "Export the vault, or one group subtree, to a portable database file",
	Long:  "Export the vault, or one group subtree, to a portable database file. Examples:\n  cmdvault export backup.db\n  cmdvault export deploy.db --group 3",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groupID, _ := cmd.Flags().GetInt64("group")

		dst := ""
		if len(args) == 1 {
			dst = args[0]
		}
		if dst == "" {
			date := time.Now().UTC().Format("2006-01-02")
			dst = filepath.Join(".", fmt.Sprintf("cmdvault-%s.db", date))
		}

		if groupID <= 0 {
			if err := exporter.ExportDatabase(dst); err != nil {
				return err
			}
			fmt.Printf("exported vault to %s\n", dst)
			return nil
		}
		return withStore(func(s *store.Store) error {
			if err := exporter.ExportGroup(s, groupID, dst); err != nil {
				return err
			}
			fmt.Printf("exported group %d to %s\n", groupID, dst)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().Int64("group", 0, "Export only this group's subtree")
	rootCmd.AddCommand(exportCmd)
}
