//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package synth builds synthetic transactions, user profiles and user
// sessions and hands them to the batch writer.
package synth

import (
	"context"
	"time"

	"github.com/pgEdge/pgedge-datasim/internal/batch"
	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/db"
)

// Profile columns that are written by name.
const (
	ColBirthDate       = "data_nascimento"
	ColAge             = "idade"
	ColSex             = "sexo"
	ColHomeCity        = "cidade_residencial"
	ColHomeDistrict    = "bairro_residencial"
	ColWorkCity        = "cidade_trabalho"
	ColWorkDistrict    = "bairro_trabalho"
	ColSchoolCity      = "cidade_escola"
	ColSchoolDistrict  = "bairro_escola"
	ColSessions        = "sessoes"
	ColLastSession     = "ultima_sessao"
	ColTimeOnline      = "tempo_online"
	ColTookCoupon      = "pegou_cupom"
	ColCategory        = catalog.CategoryColumn
	ColZone            = "zona"
	ColRegistrationDay = "data_cadastro"
)

// Fixed pools for profile fields.
var (
	City      = "São Paulo"
	Districts = []string{"Bela Vista", "Pinheiros", "Liberdade", "Moema", "Tatuapé", "Jardins", "Santana", "Vila Mariana"}
	Sexes     = []string{"Masculino", "Feminino"}
	YesNo     = []string{"Sim", "Não"}
	Zones     = []string{"Norte", "Sul", "Leste", "Oeste", "Centro"}
)

// Profile field ranges.
const (
	MinAge             = 18
	MaxAge             = 65
	MinTimeOnline      = 5
	MaxTimeOnline      = 180
	RegistrationWindow = 365
	LastSessionSpread  = 180
)

// Bounds on the dynamic category pool.
const (
	UserCategoryLimit    = 2000
	SessionCategoryLimit = 1000
)

// UserStore is what the user synthesizer needs from the store.
type UserStore interface {
	batch.DB
	catalog.ValueSource
	MaxNumericID(ctx context.Context, table, column string) (int64, error)
	ExistingIDs(ctx context.Context, table, column string, ids []string) (map[string]bool, error)
}

// SessionStore is what the session synthesizer needs from the store.
type SessionStore interface {
	batch.DB
	catalog.ValueSource
	LoadRow(ctx context.Context, table, column, id string) (*db.Row, error)
}

var (
	_ UserStore    = (*db.Store)(nil)
	_ SessionStore = (*db.Store)(nil)
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
