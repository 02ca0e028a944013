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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

var (
	sessUserIDs   []string
	sessRandom    int
	sessMin       int
	sessMax       int
	sessDays      int
	sessChunkSize int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Append sessions for existing players",
	Long: `Append new session rows for existing players. Each new row copies the
player's stored profile and re-samples the last session date, time online,
coupon flag, category and zone.

Players are chosen with --user-id (repeatable) or sampled at random with
--random.

Example:
  pgedge-datasim sessions --user-id 42 --min 2 --max 4
  pgedge-datasim sessions --random 10`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().StringSliceVar(&sessUserIDs, "user-id", nil,
		"player identifier (repeatable)")
	sessionsCmd.Flags().IntVar(&sessRandom, "random", 0,
		"number of random players to grow")
	sessionsCmd.Flags().IntVar(&sessMin, "min", -1,
		"minimum sessions per player")
	sessionsCmd.Flags().IntVar(&sessMax, "max", -1,
		"maximum sessions per player")
	sessionsCmd.Flags().IntVar(&sessDays, "days", -1,
		"lookback window in days for the last session date")
	sessionsCmd.Flags().IntVar(&sessChunkSize, "chunk-size", 0,
		"rows per INSERT statement")
}

func runSessions(cmd *cobra.Command, args []string) error {
	if sessMin >= 0 {
		cfg.Sessions.Min = sessMin
	}
	if sessMax >= 0 {
		cfg.Sessions.Max = sessMax
	}
	if sessDays >= 0 {
		cfg.Sessions.LookbackDays = sessDays
	}
	if sessChunkSize > 0 {
		cfg.Sessions.ChunkSize = sessChunkSize
	}

	if err := cfg.ValidateSessions(); err != nil {
		return err
	}
	if len(sessUserIDs) == 0 && sessRandom <= 0 {
		return errs.Validation("either --user-id or --random is required")
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

	ids := sessUserIDs
	if sessRandom > 0 {
		picked, err := store.RandomIDs(ctx, desc.Table, desc.IDColumn, uint64(sessRandom))
		if err != nil {
			return err
		}
		ids = append(append([]string{}, ids...), picked...)
	}

	sessions := synth.NewSessionSynthesizer(store, desc)
	out := cmd.OutOrStdout()

	total, failed := 0, 0
	for _, id := range ids {
		n, err := sessions.CreateSessions(ctx, synth.SessionParams{
			UserID:       id,
			MinSessions:  cfg.Sessions.Min,
			MaxSessions:  cfg.Sessions.Max,
			LookbackDays: cfg.Sessions.LookbackDays,
			ChunkSize:    cfg.Sessions.ChunkSize,
		})
		if err != nil {
			failed++
			fmt.Fprintf(out, "  %s %s: %v\n", failColor.Sprint("✗"), id, err)
			continue
		}
		total += n
		fmt.Fprintf(out, "  %s %s: %d sessions\n", okColor.Sprint("✓"), id, n)
	}

	fmt.Fprintln(out)
	heading(out, "Summary")
	summaryLine(out, "Players", len(ids))
	summaryLine(out, "Sessions", total)
	if failed > 0 {
		summaryLine(out, "Failed", failColor.Sprint(failed))
		return fmt.Errorf("session growth failed for %d of %d players", failed, len(ids))
	}
	return nil
}
