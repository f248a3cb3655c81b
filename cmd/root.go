package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cmdvault/cmdvault/internal/db"
	"github.com/cmdvault/cmdvault/internal/log"
	"github.com/cmdvault/cmdvault/internal/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cmdvault",
	Short: "cmdvault is a local, SQLite-backed command vault",
	Long:  "cmdvault keeps your shell commands, groups and workflows in a single local database",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cmdvault: run 'cmdvault --help' to see available commands")
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openStore opens the vault database and wires a store around it. Callers
// must Close the returned store.
func openStore() (*store.Store, error) {
	conn, err := db.InitDB()
	if err != nil {
		return nil, err
	}
	s := store.New(conn)
	if err := s.InitializeSettings(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// withStore runs fn against a freshly opened store and closes it afterwards.
// Lock contention from another cmdvault process is retried with exponential
// backoff; every other error surfaces immediately.
func withStore(fn func(*store.Store) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 3 * time.Second

	return backoff.Retry(func() error {
		err := fn(s)
		if errors.Is(err, store.ErrDatabaseLocked) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
