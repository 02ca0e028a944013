//go:build integration

//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-datasim/internal/db"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
	"github.com/pgEdge/pgedge-datasim/internal/testutil"
)

func TestStoreAgainstPostgres(t *testing.T) {
	pool := testutil.NewTestDB(t, "db")
	store := db.NewStore(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.CreateTables(ctx, pool, "tx", "players", "id_usuario", schema.StrategySequence); err != nil {
		t.Fatalf("CreateTables failed: %v", err)
	}

	t.Run("table columns", func(t *testing.T) {
		cols, err := store.TableColumns(ctx, "players")
		if err != nil {
			t.Fatalf("TableColumns failed: %v", err)
		}
		if len(cols) != len(schema.PlayerColumns) {
			t.Errorf("Expected %d columns, got %d", len(schema.PlayerColumns), len(cols))
		}
		for _, c := range cols {
			if c.Name == "id_usuario" && c.IsAutoAssigned() {
				t.Error("Expected BIGINT id column not to be auto assigned")
			}
		}

		missing, err := store.TableColumns(ctx, "no_such_table")
		if err != nil || len(missing) != 0 {
			t.Errorf("Expected no columns for a missing table, got %v, %v", missing, err)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		maxID, err := store.MaxNumericID(ctx, "players", "id_usuario")
		if err != nil || maxID != 0 {
			t.Errorf("Expected (0, nil), got (%d, %v)", maxID, err)
		}
		ids, err := store.RandomIDs(ctx, "players", "id_usuario", 5)
		if err != nil || len(ids) != 0 {
			t.Errorf("Expected no ids, got %v, %v", ids, err)
		}
	})

	_, err := pool.Exec(ctx, `
        INSERT INTO players (id_usuario, idade, zona, categoria_frequentada) VALUES
        (7, 30, 'Sul', 'Farmácia'),
        (9, 41, 'Norte', '  '),
        (12, 25, 'Leste', 'Restaurante')`)
	if err != nil {
		t.Fatalf("Failed to seed players: %v", err)
	}

	t.Run("max id", func(t *testing.T) {
		maxID, err := store.MaxNumericID(ctx, "players", "id_usuario")
		if err != nil || maxID != 12 {
			t.Errorf("Expected (12, nil), got (%d, %v)", maxID, err)
		}
	})

	t.Run("existing ids", func(t *testing.T) {
		found, err := store.ExistingIDs(ctx, "players", "id_usuario", []string{"7", "8", "12"})
		if err != nil {
			t.Fatalf("ExistingIDs failed: %v", err)
		}
		if !found["7"] || found["8"] || !found["12"] {
			t.Errorf("Unexpected lookup result: %v", found)
		}
	})

	t.Run("distinct values skip blanks", func(t *testing.T) {
		values, err := store.DistinctValues(ctx, "players", "categoria_frequentada", 10)
		if err != nil {
			t.Fatalf("DistinctValues failed: %v", err)
		}
		if len(values) != 2 {
			t.Errorf("Expected 2 non-blank categories, got %v", values)
		}
	})

	t.Run("load row", func(t *testing.T) {
		row, err := store.LoadRow(ctx, "players", "id_usuario", "9")
		if err != nil {
			t.Fatalf("LoadRow failed: %v", err)
		}
		if row.Values["zona"] != "Norte" {
			t.Errorf("Expected zona Norte, got %v", row.Values["zona"])
		}
		if row.Columns[0] != "data_nascimento" {
			t.Errorf("Expected table column order, got %v", row.Columns)
		}

		_, err = store.LoadRow(ctx, "players", "id_usuario", "404")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("random ids", func(t *testing.T) {
		ids, err := store.RandomIDs(ctx, "players", "id_usuario", 2)
		if err != nil {
			t.Fatalf("RandomIDs failed: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 ids, got %v", ids)
		}
	})

	t.Run("counts", func(t *testing.T) {
		n, err := store.CountRows(ctx, "players")
		if err != nil || n != 3 {
			t.Errorf("Expected (3, nil), got (%d, %v)", n, err)
		}
		exists, err := store.TableExists(ctx, "tx")
		if err != nil || !exists {
			t.Errorf("Expected tx to exist, got %v, %v", exists, err)
		}
	})

	t.Run("resolve", func(t *testing.T) {
		desc, err := schema.Resolve(ctx, store, "players", schema.PlayerColumns, "id_usuario", schema.StrategySequence)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if desc.Strategy != schema.StrategySequence {
			t.Errorf("Expected sequence strategy, got %s", desc.Strategy)
		}

		_, err = schema.Resolve(ctx, store, "players", schema.PlayerColumns, "id_usuario", schema.StrategyToken)
		if !errors.Is(err, errs.ErrConfiguration) {
			t.Errorf("Expected token on a BIGINT column to fail, got %v", err)
		}
	})
}

func TestMetadataRoundTrip(t *testing.T) {
	pool := testutil.NewTestDB(t, "meta")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil || exists {
		t.Fatalf("Expected no metadata table, got %v, %v", exists, err)
	}

	err = db.SaveMetadata(ctx, pool, map[string]string{db.MetaIDStrategy: "token"})
	if err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	value, err := db.GetMetadataValue(ctx, pool, db.MetaIDStrategy)
	if err != nil || value != "token" {
		t.Errorf("Expected token, got %q, %v", value, err)
	}

	entries, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		t.Fatalf("GetAllMetadata failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}

	if err := db.DropMetadata(ctx, pool); err != nil {
		t.Fatalf("DropMetadata failed: %v", err)
	}
	if exists, _ := db.MetadataExists(ctx, pool); exists {
		t.Error("Expected metadata table dropped")
	}
}

func TestAutoIdentifier(t *testing.T) {
	pool := testutil.NewTestDB(t, "auto")
	store := db.NewStore(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.CreateTables(ctx, pool, "tx", "players", "id_usuario", schema.StrategyAuto); err != nil {
		t.Fatalf("CreateTables failed: %v", err)
	}

	desc, err := schema.Resolve(ctx, store, "players", schema.PlayerColumns, "id_usuario", schema.StrategySequence)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if desc.Strategy != schema.StrategyAuto {
		t.Errorf("Expected auto strategy for BIGSERIAL, got %s", desc.Strategy)
	}
	for _, c := range desc.Columns() {
		if c == "id_usuario" {
			t.Error("Expected auto identifier omitted from insert columns")
		}
	}
}
