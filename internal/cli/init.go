//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/db"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

var (
	initIDMode       string
	initDropExisting bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the transactions and players tables",
	Long: `Create the transactions and players tables if they do not exist
and record initialization metadata.

The --id-mode flag decides how the player identifier column is created:
  auto     - BIGSERIAL, assigned by PostgreSQL (default)
  sequence - BIGINT, continued from the current maximum on each insert
  token    - TEXT, random fixed-length alphanumeric tokens

Example:
  pgedge-datasim init --connection "postgres://..." --id-mode token`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initIDMode, "id-mode", "auto",
		"player identifier mode: auto, sequence, token")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing tables before initialization")
}

// parseIDMode accepts auto in addition to the client-side strategies.
func parseIDMode(mode string) (schema.Strategy, error) {
	if strings.EqualFold(strings.TrimSpace(mode), string(schema.StrategyAuto)) {
		return schema.StrategyAuto, nil
	}
	if strings.TrimSpace(mode) == "" {
		return "", errs.Validation("id mode is required")
	}
	return schema.ParseClientStrategy(mode)
}

func runInit(cmd *cobra.Command, args []string) error {
	strategy, err := parseIDMode(initIDMode)
	if err != nil {
		return err
	}
	if strategy != schema.StrategyAuto {
		cfg.Tables.IDStrategy = string(strategy)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	dest := destinations()
	transactions, err := dest.Table(schema.KeyTransactions)
	if err != nil {
		return err
	}
	players, err := dest.Table(schema.KeyPlayers)
	if err != nil {
		return err
	}

	logging.Info().
		Str("transactions", transactions).
		Str("players", players).
		Str("id_mode", string(strategy)).
		Msg("Initializing database")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.ConnectionString(), int32(cfg.MaxConns))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Refuse to silently switch identifier modes on an initialized database
	existing, err := db.GetMetadataValue(ctx, pool, db.MetaIDStrategy)
	if err == nil && existing != "" && existing != string(strategy) && !initDropExisting {
		return fmt.Errorf(
			"database was initialized with id mode '%s' but '%s' was specified; "+
				"use --drop-existing to reinitialize",
			existing, strategy)
	}

	if initDropExisting {
		logging.Warn().Msg("Dropping existing tables")
		if err := db.DropTables(ctx, pool, transactions, players); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}

	if err := db.CreateTables(ctx, pool, transactions, players, cfg.Tables.IDColumn, strategy); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	err = db.SaveMetadata(ctx, pool, map[string]string{
		db.MetaIDStrategy:        string(strategy),
		db.MetaTransactionsTable: transactions,
		db.MetaPlayersTable:      players,
	})
	if err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("id_mode", string(strategy)).
		Msg("Database initialization complete")

	return nil
}
