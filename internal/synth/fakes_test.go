//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package synth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgEdge/pgedge-datasim/internal/db"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
)

// fakeStore is an in-memory store. Statements are recorded, not parsed;
// inserted rows are recovered from the bind arguments.
type fakeStore struct {
	mu sync.Mutex

	categories []string
	maxID      int64
	existing   map[string]bool
	rows       map[string]*db.Row

	execErr error
	calls   int

	statements []string
	inserted   [][]any
	columns    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		existing: make(map[string]bool),
		rows:     make(map[string]*db.Row),
	}
}

func (f *fakeStore) record(sql string, args []any) error {
	f.statements = append(f.statements, sql)
	if f.execErr != nil {
		return f.execErr
	}
	cols := insertColumns(sql)
	f.columns = cols
	for start := 0; start+len(cols) <= len(args); start += len(cols) {
		f.inserted = append(f.inserted, args[start:start+len(cols)])
	}
	return nil
}

// insertColumns extracts the column list from "INSERT INTO t (a,b) VALUES".
func insertColumns(sql string) []string {
	open := strings.Index(sql, "(")
	end := strings.Index(sql, ")")
	if open < 0 || end < open {
		return nil
	}
	return strings.Split(sql[open+1:end], ",")
}

func (f *fakeStore) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return pgconn.NewCommandTag("INSERT 0"), f.record(sql, args)
}

func (f *fakeStore) Begin(_ context.Context) (pgx.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &fakeTx{store: f}, nil
}

func (f *fakeStore) DistinctValues(_ context.Context, _, _ string, _ uint64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.categories, nil
}

func (f *fakeStore) MaxNumericID(_ context.Context, _, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.maxID, nil
}

func (f *fakeStore) ExistingIDs(_ context.Context, _, _ string, ids []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	found := make(map[string]bool)
	for _, id := range ids {
		if f.existing[id] {
			found[id] = true
		}
	}
	return found, nil
}

func (f *fakeStore) LoadRow(_ context.Context, table, column, id string) (*db.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	row, ok := f.rows[id]
	if !ok {
		return nil, errs.NotFound("%s %s not found in %s", column, id, table)
	}
	return row, nil
}

// fakeTx buffers rows until commit.
type fakeTx struct {
	pgx.Tx
	store    *fakeStore
	pending  [][]any
	columns  []string
	finished bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.statements = append(t.store.statements, sql)
	if t.store.execErr != nil {
		return pgconn.CommandTag{}, t.store.execErr
	}
	t.columns = insertColumns(sql)
	for start := 0; start+len(t.columns) <= len(args); start += len(t.columns) {
		t.pending = append(t.pending, args[start:start+len(t.columns)])
	}
	return pgconn.NewCommandTag("INSERT 0"), nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.finished = true
	t.store.columns = t.columns
	t.store.inserted = append(t.store.inserted, t.pending...)
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.finished {
		return pgx.ErrTxClosed
	}
	t.finished = true
	t.pending = nil
	return nil
}

var errChunk = errors.New("simulated failure")

// value returns the inserted value of column in row i.
func (f *fakeStore) value(i int, column string) any {
	for j, c := range f.columns {
		if c == column {
			return f.inserted[i][j]
		}
	}
	return nil
}
