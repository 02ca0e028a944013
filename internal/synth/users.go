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
	"time"

	"github.com/pgEdge/pgedge-datasim/internal/batch"
	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/datagen"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
)

// DefaultTokenLength is the length of client-generated token identifiers.
const DefaultTokenLength = 12

// maxTokenRounds bounds how often colliding tokens are redrawn.
const maxTokenRounds = 5

// UserSynthesizer creates player profiles shaped by a resolved
// descriptor.
type UserSynthesizer struct {
	store       UserStore
	desc        *schema.Descriptor
	rng         *datagen.RNG
	now         Clock
	tokenLength int
}

// UserOption configures a UserSynthesizer.
type UserOption func(*UserSynthesizer)

// WithUserClock overrides the clock.
func WithUserClock(now Clock) UserOption {
	return func(u *UserSynthesizer) { u.now = now }
}

// WithUserRNG sets the random stream.
func WithUserRNG(r *datagen.RNG) UserOption {
	return func(u *UserSynthesizer) { u.rng = r }
}

// WithTokenLength sets the token length for the token strategy.
func WithTokenLength(n int) UserOption {
	return func(u *UserSynthesizer) {
		if n > 0 {
			u.tokenLength = n
		}
	}
}

// NewUserSynthesizer creates a synthesizer for the players table
// described by desc.
func NewUserSynthesizer(store UserStore, desc *schema.Descriptor, opts ...UserOption) *UserSynthesizer {
	u := &UserSynthesizer{
		store:       store,
		desc:        desc,
		now:         time.Now,
		tokenLength: DefaultTokenLength,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.rng == nil {
		u.rng = datagen.NewRNG(nil)
	}
	return u
}

// Columns returns the columns every generated row carries.
func (u *UserSynthesizer) Columns() []string {
	return u.desc.Columns()
}

// Generate builds count rows projected onto Columns. It reads the current
// identifier state of the table but writes nothing.
func (u *UserSynthesizer) Generate(ctx context.Context, count int) ([][]any, error) {
	if count < 0 {
		return nil, errs.Validation("count must not be negative, got %d", count)
	}
	if count == 0 {
		return nil, nil
	}

	categories := catalog.FallbackCategories
	if u.desc.Has(ColCategory) {
		var err error
		categories, err = catalog.ExistingCategories(ctx, u.store, u.desc.Table, UserCategoryLimit)
		if err != nil {
			return nil, err
		}
	}

	ids, err := u.assignIDs(ctx, count)
	if err != nil {
		return nil, err
	}

	columns := u.Columns()
	today := datagen.StartOfDay(u.now())
	rows := make([][]any, count)
	for i := range rows {
		profile := u.profile(today, categories)
		if ids != nil {
			profile[u.desc.IDColumn] = ids[i]
		}

		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = profile[c]
		}
		rows[i] = row
	}
	return rows, nil
}

// Create generates count profiles and writes them chunk by chunk. Chunks
// written before a failure stay in the table.
func (u *UserSynthesizer) Create(ctx context.Context, count, chunkSize int) (int, error) {
	rows, err := u.Generate(ctx, count)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := batch.Insert(ctx, u.store, u.desc.Table, u.Columns(), rows, chunkSize, batch.NonTransactional)
	if err != nil {
		return n, err
	}

	logging.Info().
		Str("table", u.desc.Table).
		Str("id_strategy", string(u.desc.Strategy)).
		Int("rows", n).
		Msg("Users created")
	return n, nil
}

// profile draws every profile field. Fields the table lacks are drawn
// too, so a seeded stream does not depend on the destination schema.
func (u *UserSynthesizer) profile(today time.Time, categories []string) map[string]any {
	r := u.rng

	registered := datagen.DateInLastNDays(RegistrationWindow, today, r)
	lastSession := registered.AddDate(0, 0, r.IntBetween(0, LastSessionSpread))
	if lastSession.After(today) {
		lastSession = today
	}

	age := r.IntBetween(MinAge, MaxAge)
	sex := datagen.PickOne(r, Sexes)
	home := datagen.PickOne(r, Districts)
	birth := today.AddDate(-age, 0, -r.IntBetween(0, 365))

	return map[string]any{
		ColBirthDate:       birth,
		ColAge:             age,
		ColSex:             sex,
		ColHomeCity:        City,
		ColHomeDistrict:    home,
		ColWorkCity:        City,
		ColWorkDistrict:    datagen.PickOne(r, Districts),
		ColSchoolCity:      City,
		ColSchoolDistrict:  datagen.PickOne(r, Districts),
		ColSessions:        1,
		ColLastSession:     lastSession,
		ColTimeOnline:      r.IntBetween(MinTimeOnline, MaxTimeOnline),
		ColTookCoupon:      datagen.PickOne(r, YesNo),
		ColCategory:        datagen.PickOne(r, categories),
		ColZone:            datagen.PickOne(r, Zones),
		ColRegistrationDay: registered,
	}
}

// assignIDs returns one identifier per row, or nil when the store assigns
// them or the table has no identifier column.
func (u *UserSynthesizer) assignIDs(ctx context.Context, count int) ([]any, error) {
	if !u.desc.HasID() {
		return nil, nil
	}

	switch u.desc.Strategy {
	case schema.StrategyAuto:
		return nil, nil
	case schema.StrategySequence:
		maxID, err := u.store.MaxNumericID(ctx, u.desc.Table, u.desc.IDColumn)
		if err != nil {
			return nil, err
		}
		ids := make([]any, count)
		for i := range ids {
			ids[i] = maxID + 1 + int64(i)
		}
		return ids, nil
	case schema.StrategyToken:
		tokens, err := u.uniqueTokens(ctx, count)
		if err != nil {
			return nil, err
		}
		ids := make([]any, count)
		for i, t := range tokens {
			ids[i] = t
		}
		return ids, nil
	default:
		return nil, errs.Configuration("unknown id strategy %q", u.desc.Strategy)
	}
}

// uniqueTokens draws count tokens that are distinct from each other and
// from every identifier already in the table.
func (u *UserSynthesizer) uniqueTokens(ctx context.Context, count int) ([]string, error) {
	tokens := make([]string, count)
	seen := make(map[string]bool, count)
	pending := make([]int, count)
	for i := range pending {
		pending[i] = i
	}

	for round := 0; round < maxTokenRounds && len(pending) > 0; round++ {
		candidates := make([]string, 0, len(pending))
		for _, i := range pending {
			tok := u.rng.RandomString(u.tokenLength, datagen.Alphanumeric)
			for seen[tok] {
				tok = u.rng.RandomString(u.tokenLength, datagen.Alphanumeric)
			}
			seen[tok] = true
			tokens[i] = tok
			candidates = append(candidates, tok)
		}

		existing, err := u.store.ExistingIDs(ctx, u.desc.Table, u.desc.IDColumn, candidates)
		if err != nil {
			return nil, err
		}

		var retry []int
		for _, i := range pending {
			if existing[tokens[i]] {
				retry = append(retry, i)
			}
		}
		if len(retry) > 0 {
			logging.Debug().
				Int("collisions", len(retry)).
				Int("round", round+1).
				Msg("Redrawing colliding tokens")
		}
		pending = retry
	}

	if len(pending) > 0 {
		return nil, errs.Configuration("could not draw %d unique tokens of length %d",
			len(pending), u.tokenLength)
	}
	return tokens, nil
}
