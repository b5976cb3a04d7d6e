// ABOUTME: Root command wiring: database connection, logger and global flags.
// ABOUTME: Subcommands register themselves against rootCmd in their init.

package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harper/vcardz/internal/charm"
	"github.com/harper/vcardz/internal/db"
	"github.com/spf13/cobra"
)

var (
	dbConn *sql.DB
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "vcardz"})
)

var rootCmd = &cobra.Command{
	Use:           "vcardz",
	Short:         "Store and query vCard contacts",
	Long:          `vcardz keeps contact cards in a local SQLite database, parses vCard content lines, and syncs cards through Charm.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}

		if !needsDB(cmd) {
			return nil
		}

		path := resolveDBPath(cmd)
		logger.Debug("opening database", "path", path)

		conn, err := db.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		dbConn = conn
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if dbConn != nil {
			return dbConn.Close()
		}
		return nil
	},
}

// skipDBAnnotation marks commands (and their children) that run without the
// card database.
const skipDBAnnotation = "vcardz/skip-db"

func needsDB(cmd *cobra.Command) bool {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipDBAnnotation] == "true" {
			return false
		}
	}
	return true
}

// resolveDBPath prefers --db, then the configured path, then the XDG default.
func resolveDBPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path
	}
	if cfg, err := charm.LoadConfig(); err == nil && cfg.DBPath != "" {
		return cfg.DBPath
	}
	return db.DefaultPath()
}

// newCharmClient builds a sync client that logs through the CLI logger.
func newCharmClient() (*charm.Client, error) {
	return charm.NewClient(charm.WithLogger(logger))
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "path to the card database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}
