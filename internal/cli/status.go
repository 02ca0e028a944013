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

	"github.com/pgEdge/pgedge-datasim/internal/db"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show initialization metadata and row counts",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	out := cmd.OutOrStdout()

	initialized, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return err
	}
	heading(out, "Metadata")
	if initialized {
		entries, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			return err
		}
		table := newTable(out, "Key", "Value")
		for _, e := range entries {
			table.Append([]string{e.Key, e.Value})
		}
		table.Render()
	} else {
		warnColor.Fprintln(out, "  not initialized; run 'pgedge-datasim init' first")
	}
	fmt.Fprintln(out)

	heading(out, "Tables")
	table := newTable(out, "Key", "Table", "Rows")
	dest := destinations()
	for _, key := range []string{schema.KeyTransactions, schema.KeyPlayers} {
		name, err := dest.Table(key)
		if err != nil {
			return err
		}
		rows := "missing"
		exists, err := store.TableExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			n, err := store.CountRows(ctx, name)
			if err != nil {
				return err
			}
			rows = fmt.Sprint(n)
		}
		table.Append([]string{key, name, rows})
	}
	table.Render()
	return nil
}
