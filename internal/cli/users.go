//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/logging"
)

var (
	usersCount     int
	usersChunkSize int
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Create synthetic players",
	Long: `Create synthetic player profiles in the players table.

Only columns that exist in the table are written. The identifier is left
to PostgreSQL when the column has a default, and otherwise assigned with
the configured strategy (sequence or token).

Example:
  pgedge-datasim users --count 500`,
	RunE: runUsers,
}

func init() {
	usersCmd.Flags().IntVar(&usersCount, "count", -1,
		"number of players to create")
	usersCmd.Flags().IntVar(&usersChunkSize, "chunk-size", 0,
		"rows per INSERT statement")
}

func runUsers(cmd *cobra.Command, args []string) error {
	if usersCount >= 0 {
		cfg.Users.Count = usersCount
	}
	if usersChunkSize > 0 {
		cfg.Users.ChunkSize = usersChunkSize
	}

	if err := cfg.ValidateUsers(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	desc, err := resolvePlayers(ctx, store)
	if err != nil {
		return err
	}

	logging.Info().
		Str("table", desc.Table).
		Str("id_strategy", string(desc.Strategy)).
		Int("columns", len(desc.Columns())).
		Int("count", cfg.Users.Count).
		Msg("Creating players")

	started := time.Now()
	n, err := newUserSynthesizer(store, desc).Create(ctx, cfg.Users.Count, cfg.Users.ChunkSize)
	if err != nil {
		return fmt.Errorf("failed to create players: %w", err)
	}

	out := cmd.OutOrStdout()
	heading(out, "Summary")
	summaryLine(out, "Table", desc.Table)
	summaryLine(out, "Id strategy", desc.Strategy)
	summaryLine(out, "Inserted", n)
	summaryLine(out, "Elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}
