//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema describes the destination tables: the columns each
// synthesizer expects, the columns actually present in the store and how
// row identifiers are assigned.
package schema

import (
	"context"
	"regexp"
	"strings"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
)

var identifierRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdentifier reports whether s is a plain SQL identifier that can be
// interpolated into a statement without quoting.
func ValidIdentifier(s string) bool {
	return identifierRE.MatchString(s)
}

// ValidateIdentifiers returns an ErrValidation for the first name that is
// not a plain identifier.
func ValidateIdentifiers(names ...string) error {
	for _, n := range names {
		if !ValidIdentifier(n) {
			return errs.Validation("invalid identifier %q", n)
		}
	}
	return nil
}

// Default table names.
const (
	DefaultTransactionsTable = "picmoney_unificada"
	DefaultPlayersTable      = "picmoney_players"
	DefaultIDColumn          = "id_usuario"
)

// PlayerColumns is the expected profile schema, in insert order.
var PlayerColumns = []string{
	"data_nascimento",
	"idade",
	"sexo",
	"cidade_residencial",
	"bairro_residencial",
	"cidade_trabalho",
	"bairro_trabalho",
	"cidade_escola",
	"bairro_escola",
	"sessoes",
	"ultima_sessao",
	"id_usuario",
	"tempo_online",
	"pegou_cupom",
	"categoria_frequentada",
	"zona",
	"data_cadastro",
}

// TransactionColumns is the transaction schema, in insert order.
var TransactionColumns = []string{
	"data_captura",
	"hora",
	"nome_estabelecimento",
	"categoria_estabelecimento",
	"bairro_estabelecimento",
	"id_campanha",
	"id_cupom",
	"tipo_cupom",
	"produto",
	"valor_cupom",
	"valor_compra",
	"repasse_picmoney",
	"local_captura",
	"cep",
	"zona",
}

// Strategy is how row identifiers are assigned.
type Strategy string

const (
	// StrategyAuto means the store assigns identifiers on insert.
	StrategyAuto Strategy = "auto"
	// StrategySequence continues densely from the current maximum.
	StrategySequence Strategy = "sequence"
	// StrategyToken draws random fixed-length alphanumeric tokens.
	StrategyToken Strategy = "token"
)

// ParseClientStrategy parses a configured client-side strategy.
func ParseClientStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySequence, "":
		return StrategySequence, nil
	case StrategyToken:
		return StrategyToken, nil
	default:
		return "", errs.Validation("unknown id strategy %q (want sequence or token)", s)
	}
}

// ColumnInfo is one row of column metadata.
type ColumnInfo struct {
	Name       string
	DataType   string
	Default    string
	IsIdentity bool
}

// Introspector lists the columns of a table in ordinal order.
type Introspector interface {
	TableColumns(ctx context.Context, table string) ([]ColumnInfo, error)
}

var sequenceDefaultRE = regexp.MustCompile(`(?i)nextval\(`)

// IsAutoAssigned reports whether the store fills the column on insert.
func (c ColumnInfo) IsAutoAssigned() bool {
	return c.IsIdentity || sequenceDefaultRE.MatchString(c.Default)
}

// Descriptor is the resolved capability of a destination table.
type Descriptor struct {
	Table      string
	IDColumn   string
	Expected   []string
	Present    []string
	Strategy   Strategy
	IDDataType string

	present map[string]bool
}

// NewDescriptor builds a descriptor from already known columns.
func NewDescriptor(table, idColumn string, expected, present []string, strategy Strategy) *Descriptor {
	d := &Descriptor{
		Table:    table,
		IDColumn: idColumn,
		Expected: expected,
		Present:  present,
		Strategy: strategy,
		present:  make(map[string]bool, len(present)),
	}
	for _, c := range present {
		d.present[c] = true
	}
	return d
}

// Has reports whether the table has the column.
func (d *Descriptor) Has(column string) bool {
	return d.present[column]
}

// HasID reports whether the identifier column exists.
func (d *Descriptor) HasID() bool {
	return d.IDColumn != "" && d.present[d.IDColumn]
}

// Columns returns the expected columns that are present, in expected
// order. The identifier column is left out when the store assigns it.
func (d *Descriptor) Columns() []string {
	cols := make([]string, 0, len(d.Expected))
	for _, c := range d.Expected {
		if !d.present[c] {
			continue
		}
		if c == d.IDColumn && d.Strategy == StrategyAuto {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func isNumericType(t string) bool {
	switch strings.ToLower(t) {
	case "smallint", "integer", "bigint", "numeric":
		return true
	}
	return false
}

func isTextType(t string) bool {
	switch strings.ToLower(t) {
	case "text", "character varying", "character":
		return true
	}
	return false
}

// Resolve introspects table once and decides the identifier strategy: auto
// when the store assigns the identifier, clientStrategy otherwise.
func Resolve(ctx context.Context, in Introspector, table string, expected []string,
	idColumn string, clientStrategy Strategy) (*Descriptor, error) {
	if err := ValidateIdentifiers(table); err != nil {
		return nil, err
	}
	if idColumn != "" {
		if err := ValidateIdentifiers(idColumn); err != nil {
			return nil, err
		}
	}

	columns, err := in.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errs.Configuration("table %s does not exist or has no columns", table)
	}

	present := make([]string, 0, len(columns))
	var idInfo *ColumnInfo
	for i := range columns {
		present = append(present, columns[i].Name)
		if columns[i].Name == idColumn {
			idInfo = &columns[i]
		}
	}

	d := NewDescriptor(table, idColumn, expected, present, clientStrategy)
	if idInfo != nil {
		d.IDDataType = idInfo.DataType
		switch {
		case idInfo.IsAutoAssigned():
			d.Strategy = StrategyAuto
		case clientStrategy == StrategySequence && !isNumericType(idInfo.DataType):
			return nil, errs.Configuration("%s.%s is %s; the sequence strategy needs a numeric column",
				table, idColumn, idInfo.DataType)
		case clientStrategy == StrategyToken && !isTextType(idInfo.DataType):
			return nil, errs.Configuration("%s.%s is %s; the token strategy needs a text column",
				table, idColumn, idInfo.DataType)
		}
	}

	if len(d.Columns()) == 0 {
		return nil, errs.Configuration("table %s has none of the expected columns", table)
	}
	return d, nil
}

// Table keys accepted by Destinations.
const (
	KeyTransactions = "transactions"
	KeyPlayers      = "players"
)

// Destinations maps table keys to configured table names.
type Destinations map[string]string

// DefaultDestinations returns the stock table names.
func DefaultDestinations() Destinations {
	return Destinations{
		KeyTransactions: DefaultTransactionsTable,
		KeyPlayers:      DefaultPlayersTable,
	}
}

// Table resolves a key. Unknown keys and unsafe names are rejected.
func (d Destinations) Table(key string) (string, error) {
	name, ok := d[key]
	if !ok {
		return "", errs.Validation("unknown table key %q", key)
	}
	if err := ValidateIdentifiers(name); err != nil {
		return "", err
	}
	return name, nil
}
