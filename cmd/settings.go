package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write application settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(func(s *store.Store) error {
			all, err := s.GetAllSettings()
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s=%s\n", k, all[k])
			}
			return nil
		})
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			value, err := s.GetSetting(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *store.Store) error {
			return s.SetSetting(args[0], args[1])
		})
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(func(s *store.Store) error {
			return s.ResetSettings()
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
