//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package batch writes rows in chunks, one multi-row INSERT per chunk,
// either inside a single transaction or chunk by chunk.
package batch

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

const (
	// DefaultChunkSize is the number of rows per INSERT statement.
	DefaultChunkSize = 800

	// MaxParams is PostgreSQL's limit on bind parameters per statement.
	MaxParams = 65535

	// DefaultProgressInterval is how often large inserts log progress.
	DefaultProgressInterval = 10000
)

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and *db.Store.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Mode selects the atomicity of an insert.
type Mode int

const (
	// Transactional runs every chunk in one transaction. Any failure rolls
	// back the whole invocation.
	Transactional Mode = iota

	// NonTransactional runs chunks independently. Chunks that completed
	// before a failure stay committed.
	NonTransactional
)

func (m Mode) String() string {
	switch m {
	case Transactional:
		return "transactional"
	case NonTransactional:
		return "non-transactional"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// EffectiveChunkSize applies the default and caps the size so a chunk
// never exceeds MaxParams bind parameters.
func EffectiveChunkSize(chunkSize, columns int) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if columns > 0 {
		chunkSize = min(chunkSize, max(1, MaxParams/columns))
	}
	return chunkSize
}

// Insert writes rows into table and returns how many rows were persisted.
// Every row must have exactly one value per column, in column order.
//
// In Transactional mode the result is either len(rows) or 0 with an error.
// In NonTransactional mode the result counts the rows of every chunk that
// completed before the first failure.
func Insert(ctx context.Context, db DB, table string, columns []string, rows [][]any,
	chunkSize int, mode Mode) (int, error) {
	if err := validate(table, columns, rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	size := EffectiveChunkSize(chunkSize, len(columns))
	progress := NewProgressReporter(table, int64(len(rows)), DefaultProgressInterval)

	var (
		n   int
		err error
	)
	switch mode {
	case Transactional:
		n, err = insertTx(ctx, db, table, columns, rows, size, progress)
	case NonTransactional:
		n, err = insertChunks(ctx, db, table, columns, rows, size, progress)
	default:
		return 0, errs.Validation("unknown insert mode %s", mode)
	}
	if err != nil {
		logging.Error().
			Err(err).
			Str("table", table).
			Str("mode", mode.String()).
			Int("persisted", n).
			Int("rows", len(rows)).
			Msg("Batch insert failed")
		return n, err
	}

	progress.Done()
	return n, nil
}

func validate(table string, columns []string, rows [][]any) error {
	if len(columns) == 0 {
		return errs.Validation("no columns to insert into %s", table)
	}
	if err := schema.ValidateIdentifiers(table); err != nil {
		return err
	}
	if err := schema.ValidateIdentifiers(columns...); err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return errs.Validation("row %d has %d values, want %d", i, len(row), len(columns))
		}
	}
	return nil
}

func insertChunks(ctx context.Context, ex execer, table string, columns []string, rows [][]any,
	size int, progress *ProgressReporter) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += size {
		chunk := rows[start:min(start+size, len(rows))]
		if err := execChunk(ctx, ex, table, columns, chunk); err != nil {
			return inserted, err
		}
		inserted += len(chunk)
		progress.Update(int64(len(chunk)))
	}
	return inserted, nil
}

func insertTx(ctx context.Context, db DB, table string, columns []string, rows [][]any,
	size int, progress *ProgressReporter) (n int, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, errs.Storage("begin transaction", err)
	}

	// Ensure rollback on panic or error.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			n = 0
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("rollback failed (%v) after original error: %w", rbErr, err)
			}
		}
	}()

	if _, err = insertChunks(ctx, tx, table, columns, rows, size, progress); err != nil {
		return 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, errs.Storage("commit transaction", err)
	}
	return len(rows), nil
}

// BuildInsert renders one multi-row INSERT with $n placeholders.
func BuildInsert(table string, columns []string, rows [][]any) (string, []any, error) {
	b := sq.Insert(table).Columns(columns...).PlaceholderFormat(sq.Dollar)
	for _, row := range rows {
		b = b.Values(row...)
	}
	return b.ToSql()
}

func execChunk(ctx context.Context, ex execer, table string, columns []string, chunk [][]any) error {
	query, args, err := BuildInsert(table, columns, chunk)
	if err != nil {
		return errs.Storage("build insert", err)
	}
	if _, err := ex.Exec(ctx, query, args...); err != nil {
		return errs.Storage("insert into "+table, err)
	}
	logging.Debug().
		Str("table", table).
		Int("rows", len(chunk)).
		Msg("Inserted chunk")
	return nil
}
