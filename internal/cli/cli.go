//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-datasim.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/config"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-datasim",
		Short: "Synthetic coupon transaction and player data for PostgreSQL",
		Long: `pgedge-datasim synthesizes plausible coupon transactions, player
profiles and player sessions and writes them to PostgreSQL in chunked
batches.

Data can be generated on demand with the generate, users and sessions
commands, or grown unattended on cron schedules with the schedule
command. Seeded runs are reproducible.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-datasim.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(catalogsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
