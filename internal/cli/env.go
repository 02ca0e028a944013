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
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-datasim/internal/db"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

// destinations returns the configured table registry.
func destinations() schema.Destinations {
	return schema.Destinations{
		schema.KeyTransactions: cfg.Tables.Transactions,
		schema.KeyPlayers:      cfg.Tables.Players,
	}
}

// openStore connects to the database and wraps the pool in a Store.
// The caller closes the pool.
func openStore(ctx context.Context) (*pgxpool.Pool, *db.Store, error) {
	pool, err := db.Connect(ctx, cfg.ConnectionString(), int32(cfg.MaxConns))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, db.NewStore(pool), nil
}

// resolvePlayers introspects the players table once.
func resolvePlayers(ctx context.Context, store *db.Store) (*schema.Descriptor, error) {
	table, err := destinations().Table(schema.KeyPlayers)
	if err != nil {
		return nil, err
	}
	strategy, err := schema.ParseClientStrategy(cfg.Tables.IDStrategy)
	if err != nil {
		return nil, err
	}
	return schema.Resolve(ctx, store, table, schema.PlayerColumns, cfg.Tables.IDColumn, strategy)
}

// resolveTransactions checks the transactions table carries every column
// a generated record writes.
func resolveTransactions(ctx context.Context, store *db.Store) (string, error) {
	table, err := destinations().Table(schema.KeyTransactions)
	if err != nil {
		return "", err
	}
	desc, err := schema.Resolve(ctx, store, table, schema.TransactionColumns, "", schema.StrategySequence)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, col := range schema.TransactionColumns {
		if !desc.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return "", errs.Configuration("table %s is missing columns: %s", table, strings.Join(missing, ", "))
	}
	return table, nil
}

// newUserSynthesizer builds a synthesizer for the configured players table.
func newUserSynthesizer(store *db.Store, desc *schema.Descriptor) *synth.UserSynthesizer {
	return synth.NewUserSynthesizer(store, desc, synth.WithTokenLength(cfg.Tables.TokenLength))
}
