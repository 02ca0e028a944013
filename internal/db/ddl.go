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
	"fmt"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

const transactionsDDL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    data_captura              DATE,
    hora                      TIMESTAMPTZ,
    nome_estabelecimento      TEXT,
    categoria_estabelecimento TEXT,
    bairro_estabelecimento    TEXT,
    id_campanha               TEXT,
    id_cupom                  TEXT,
    tipo_cupom                TEXT,
    produto                   TEXT,
    valor_cupom               NUMERIC(12,2),
    valor_compra              NUMERIC(12,2),
    repasse_picmoney          NUMERIC(12,2),
    local_captura             TEXT,
    cep                       TEXT,
    zona                      TEXT
)`

// Session rows repeat the user's identifier, so it is indexed but not
// unique.
const playersDDL = `
CREATE TABLE IF NOT EXISTS %[1]s (
    data_nascimento       DATE,
    idade                 INTEGER,
    sexo                  TEXT,
    cidade_residencial    TEXT,
    bairro_residencial    TEXT,
    cidade_trabalho       TEXT,
    bairro_trabalho       TEXT,
    cidade_escola         TEXT,
    bairro_escola         TEXT,
    sessoes               INTEGER,
    ultima_sessao         DATE,
    %[2]s %[3]s,
    tempo_online          INTEGER,
    pegou_cupom           TEXT,
    categoria_frequentada TEXT,
    zona                  TEXT,
    data_cadastro         DATE
)`

// IDColumnType returns the column type used for the player identifier
// under the given strategy.
func IDColumnType(strategy schema.Strategy) string {
	switch strategy {
	case schema.StrategySequence:
		return "BIGINT"
	case schema.StrategyToken:
		return "TEXT"
	default:
		return "BIGSERIAL"
	}
}

// CreateTables creates the transactions and players tables if they do not
// exist yet.
func CreateTables(ctx context.Context, conn Conn, transactions, players, idColumn string, strategy schema.Strategy) error {
	if err := schema.ValidateIdentifiers(transactions, players, idColumn); err != nil {
		return err
	}

	statements := []string{
		fmt.Sprintf(transactionsDDL, transactions),
		fmt.Sprintf(playersDDL, players, idColumn, IDColumnType(strategy)),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %[1]s_%[2]s_idx ON %[1]s (%[2]s)", players, idColumn),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %[1]s_data_captura_idx ON %[1]s (data_captura)", transactions),
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return errs.Storage("create schema", err)
		}
	}

	logging.Info().
		Str("transactions", transactions).
		Str("players", players).
		Str("id_strategy", string(strategy)).
		Msg("Schema created")
	return nil
}

// DropTables drops both tables and the metadata table.
func DropTables(ctx context.Context, conn Conn, transactions, players string) error {
	if err := schema.ValidateIdentifiers(transactions, players); err != nil {
		return err
	}
	for _, table := range []string{transactions, players} {
		if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errs.Storage("drop "+table, err)
		}
	}
	if err := DropMetadata(ctx, conn); err != nil {
		return errs.Storage("drop metadata", err)
	}
	return nil
}
