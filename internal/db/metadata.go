//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/pkg/version"
)

const metadataTable = "datasim_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS datasim_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// Metadata keys written by init.
const (
	MetaVersion           = "version"
	MetaInitializedAt     = "initialized_at"
	MetaIDStrategy        = "id_strategy"
	MetaTransactionsTable = "transactions_table"
	MetaPlayersTable      = "players_table"
)

// SaveMetadata records initialization metadata. Extra entries are merged
// over the standard version and timestamp keys.
func SaveMetadata(ctx context.Context, conn Conn, extra map[string]string) error {
	// Create table if it doesn't exist
	_, err := conn.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		MetaVersion:       version.Short(),
		MetaInitializedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		metadata[k] = v
	}

	for key, value := range metadata {
		_, err := conn.Exec(ctx, `
            INSERT INTO datasim_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Int("keys", len(metadata)).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, conn Conn, key string) (string, error) {
	var value string
	err := conn.QueryRow(ctx, `
        SELECT value FROM datasim_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// MetadataEntry is one key/value pair.
type MetadataEntry struct {
	Key   string
	Value string
}

// GetAllMetadata retrieves all metadata sorted by key.
func GetAllMetadata(ctx context.Context, conn Conn) ([]MetadataEntry, error) {
	rows, err := conn.Query(ctx, `SELECT key, value FROM datasim_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MetadataEntry
	for rows.Next() {
		var e MetadataEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, conn Conn) error {
	_, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, conn Conn) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
