//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

// Row is a table row keyed by column name. Columns keeps the order the
// store returned them in.
type Row struct {
	Columns []string
	Values  map[string]any
}

// Has reports whether the row carries the column.
func (r *Row) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// Store runs the simulator's queries. Table and column names are checked
// with schema.ValidIdentifier before they reach SQL text.
type Store struct {
	conn Conn
	qb   sq.StatementBuilderType
}

// NewStore wraps a connection or pool.
func NewStore(conn Conn) *Store {
	return &Store{
		conn: conn,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Exec runs a statement on the underlying connection.
func (s *Store) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}

// Begin starts a transaction on the underlying connection.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.conn.Begin(ctx)
}

// TableColumns lists the columns of table in the current schema, in
// ordinal order. A missing table yields an empty list.
func (s *Store) TableColumns(ctx context.Context, table string) ([]schema.ColumnInfo, error) {
	query, args, err := s.qb.
		Select(
			"column_name::text",
			"data_type::text",
			"COALESCE(column_default::text, '')",
			"is_identity::text = 'YES'",
		).
		From("information_schema.columns").
		Where(sq.Eq{"table_name": table}).
		Where("table_schema = current_schema()").
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, errs.Storage("build column query", err)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Storage("list columns of "+table, err)
	}
	defer rows.Close()

	var columns []schema.ColumnInfo
	for rows.Next() {
		var c schema.ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Default, &c.IsIdentity); err != nil {
			return nil, errs.Storage("scan column of "+table, err)
		}
		columns = append(columns, c)
	}
	return columns, errs.Storage("list columns of "+table, rows.Err())
}

// DistinctValues returns up to limit distinct non-blank values of column.
func (s *Store) DistinctValues(ctx context.Context, table, column string, limit uint64) ([]string, error) {
	if err := schema.ValidateIdentifiers(table, column); err != nil {
		return nil, err
	}

	query, args, err := s.qb.
		Select(column+"::text").
		Distinct().
		From(table).
		Where(sq.NotEq{column: nil}).
		Where("btrim(" + column + "::text) <> ''").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, errs.Storage("build distinct query", err)
	}
	return s.queryStrings(ctx, "distinct "+table+"."+column, query, args...)
}

// MaxNumericID returns the largest value of a numeric column, or 0 for an
// empty table.
func (s *Store) MaxNumericID(ctx context.Context, table, column string) (int64, error) {
	if err := schema.ValidateIdentifiers(table, column); err != nil {
		return 0, err
	}

	query, args, err := s.qb.
		Select("COALESCE(MAX(" + column + "), 0)::bigint").
		From(table).
		ToSql()
	if err != nil {
		return 0, errs.Storage("build max query", err)
	}

	var maxID int64
	if err := s.conn.QueryRow(ctx, query, args...).Scan(&maxID); err != nil {
		return 0, errs.Storage("max "+table+"."+column, err)
	}
	return maxID, nil
}

// ExistingIDs returns the subset of ids already present in column.
func (s *Store) ExistingIDs(ctx context.Context, table, column string, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(ids) == 0 {
		return found, nil
	}
	if err := schema.ValidateIdentifiers(table, column); err != nil {
		return nil, err
	}

	query, args, err := s.qb.
		Select(column + "::text").
		From(table).
		Where(sq.Eq{column + "::text": ids}).
		ToSql()
	if err != nil {
		return nil, errs.Storage("build id lookup", err)
	}

	values, err := s.queryStrings(ctx, "lookup "+table+"."+column, query, args...)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		found[v] = true
	}
	return found, nil
}

// LoadRow returns the first row whose column matches id, compared as
// text. It returns an ErrNotFound when there is none.
func (s *Store) LoadRow(ctx context.Context, table, column, id string) (*Row, error) {
	if err := schema.ValidateIdentifiers(table, column); err != nil {
		return nil, err
	}

	query, args, err := s.qb.
		Select("*").
		From(table).
		Where(sq.Eq{column + "::text": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errs.Storage("build row query", err)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Storage("load "+table+" row", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errs.Storage("load "+table+" row", err)
		}
		return nil, errs.NotFound("%s %s not found in %s", column, id, table)
	}

	values, err := rows.Values()
	if err != nil {
		return nil, errs.Storage("decode "+table+" row", err)
	}

	fields := rows.FieldDescriptions()
	row := &Row{
		Columns: make([]string, len(fields)),
		Values:  make(map[string]any, len(fields)),
	}
	for i, f := range fields {
		row.Columns[i] = f.Name
		row.Values[f.Name] = values[i]
	}
	return row, nil
}

// RandomIDs samples up to limit non-null values of column in random order.
func (s *Store) RandomIDs(ctx context.Context, table, column string, limit uint64) ([]string, error) {
	if err := schema.ValidateIdentifiers(table, column); err != nil {
		return nil, err
	}

	query, args, err := s.qb.
		Select(column + "::text").
		From(table).
		Where(sq.NotEq{column: nil}).
		OrderBy("random()").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, errs.Storage("build sample query", err)
	}
	return s.queryStrings(ctx, "sample "+table+"."+column, query, args...)
}

// CountRows returns the number of rows in table.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	if err := schema.ValidateIdentifiers(table); err != nil {
		return 0, err
	}

	query, args, err := s.qb.Select("count(*)").From(table).ToSql()
	if err != nil {
		return 0, errs.Storage("build count query", err)
	}

	var n int64
	if err := s.conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errs.Storage("count "+table, err)
	}
	return n, nil
}

// TableExists reports whether table exists in the current schema.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_schema = current_schema() AND table_name = $1
        )
    `, table).Scan(&exists)
	if err != nil {
		return false, errs.Storage("check table "+table, err)
	}
	return exists, nil
}

func (s *Store) queryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Storage(op, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.Storage(op, err)
	}
	return values, nil
}
