//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"context"
	"strings"
)

// CategoryColumn is the player column the dynamic category pool is read
// from.
const CategoryColumn = "categoria_frequentada"

// FallbackCategories is used when the store has no categories yet.
var FallbackCategories = []string{
	"Restaurante",
	"Esporte & Fitness",
	"Supermercado & Conveniência",
	"Papelaria",
	"Livraria",
	"Farmácia",
	"Moda",
	"Eletro & Móveis",
	"Cafeteria",
	"Saúde",
}

// ValueSource reads distinct non-empty values of a column.
type ValueSource interface {
	DistinctValues(ctx context.Context, table, column string, limit uint64) ([]string, error)
}

// ExistingCategories returns the categories already present in table,
// or a copy of FallbackCategories when there are none.
func ExistingCategories(ctx context.Context, src ValueSource, table string, limit uint64) ([]string, error) {
	values, err := src.DistinctValues(ctx, table, CategoryColumn, limit)
	if err != nil {
		return nil, err
	}

	cats := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			cats = append(cats, v)
		}
	}
	if len(cats) == 0 {
		return append([]string(nil), FallbackCategories...), nil
	}
	return cats, nil
}
