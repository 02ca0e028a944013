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
	"strings"
	"time"

	"github.com/pgEdge/pgedge-datasim/internal/batch"
	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/datagen"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

// SessionParams controls one CreateSessions call.
type SessionParams struct {
	UserID      string
	MinSessions int
	MaxSessions int
	// LookbackDays bounds how far back the new last-session date may be.
	LookbackDays int
	ChunkSize    int
}

// Validate checks the numeric parameters. The user id is checked
// separately so a blank id reports NotFound.
func (p SessionParams) Validate() error {
	switch {
	case p.MinSessions < 0 || p.MaxSessions < p.MinSessions:
		return errs.Validation("invalid session range %d..%d", p.MinSessions, p.MaxSessions)
	case p.LookbackDays < 0:
		return errs.Validation("lookback days must not be negative, got %d", p.LookbackDays)
	}
	return nil
}

// SessionSynthesizer appends session rows for existing players.
type SessionSynthesizer struct {
	store SessionStore
	desc  *schema.Descriptor
	rng   *datagen.RNG
	now   Clock
}

// SessionOption configures a SessionSynthesizer.
type SessionOption func(*SessionSynthesizer)

// WithSessionClock overrides the clock.
func WithSessionClock(now Clock) SessionOption {
	return func(s *SessionSynthesizer) { s.now = now }
}

// WithSessionRNG sets the random stream.
func WithSessionRNG(r *datagen.RNG) SessionOption {
	return func(s *SessionSynthesizer) { s.rng = r }
}

// NewSessionSynthesizer creates a synthesizer for the players table
// described by desc.
func NewSessionSynthesizer(store SessionStore, desc *schema.Descriptor, opts ...SessionOption) *SessionSynthesizer {
	s := &SessionSynthesizer{
		store: store,
		desc:  desc,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = datagen.NewRNG(nil)
	}
	return s
}

// Generate loads the user's baseline row and returns the columns and rows
// of between MinSessions and MaxSessions new session rows.
func (s *SessionSynthesizer) Generate(ctx context.Context, p SessionParams) ([]string, [][]any, error) {
	userID := strings.TrimSpace(p.UserID)
	if userID == "" {
		return nil, nil, errs.NotFound("user id is required")
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if !s.desc.HasID() {
		return nil, nil, errs.Configuration("table %s has no %s column", s.desc.Table, s.desc.IDColumn)
	}

	baseline, err := s.store.LoadRow(ctx, s.desc.Table, s.desc.IDColumn, userID)
	if err != nil {
		return nil, nil, err
	}

	// Copy every expected column the baseline actually carries,
	// identifier included.
	columns := make([]string, 0, len(s.desc.Expected))
	for _, c := range s.desc.Expected {
		if baseline.Has(c) {
			columns = append(columns, c)
		}
	}
	if len(columns) == 0 {
		return nil, nil, errs.Configuration("table %s has none of the expected columns", s.desc.Table)
	}

	categories := catalog.FallbackCategories
	if baseline.Has(ColCategory) {
		categories, err = catalog.ExistingCategories(ctx, s.store, s.desc.Table, SessionCategoryLimit)
		if err != nil {
			return nil, nil, err
		}
	}

	r := s.rng
	today := datagen.StartOfDay(s.now())
	count := r.IntBetween(p.MinSessions, p.MaxSessions)
	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		row := make(map[string]any, len(columns))
		for _, c := range columns {
			row[c] = baseline.Values[c]
		}

		if baseline.Has(ColLastSession) {
			row[ColLastSession] = datagen.DateInLastNDays(p.LookbackDays, today, r)
		}
		if baseline.Has(ColTimeOnline) {
			row[ColTimeOnline] = r.IntBetween(MinTimeOnline, MaxTimeOnline)
		}
		if baseline.Has(ColTookCoupon) {
			row[ColTookCoupon] = datagen.PickOne(r, YesNo)
		}
		if baseline.Has(ColCategory) {
			row[ColCategory] = datagen.PickOne(r, categories)
		}
		if baseline.Has(ColZone) {
			row[ColZone] = datagen.PickOne(r, Zones)
		}

		values := make([]any, len(columns))
		for j, c := range columns {
			values[j] = row[c]
		}
		rows = append(rows, values)
	}
	return columns, rows, nil
}

// CreateSessions generates session rows for one user and writes them in a
// single transaction. An unknown user yields ErrNotFound and no insert.
func (s *SessionSynthesizer) CreateSessions(ctx context.Context, p SessionParams) (int, error) {
	columns, rows, err := s.Generate(ctx, p)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := batch.Insert(ctx, s.store, s.desc.Table, columns, rows, p.ChunkSize, batch.Transactional)
	if err != nil {
		return 0, err
	}

	logging.Debug().
		Str("table", s.desc.Table).
		Str("user_id", p.UserID).
		Int("rows", n).
		Msg("Sessions created")
	return n, nil
}
