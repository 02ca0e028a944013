//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen provides the random primitives used by the synthesizers:
// a seedable uniform stream, temporal sampling, postal code sampling and
// currency arithmetic.
package datagen

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// pcgStream is the fixed second word of the PCG state. Only the first word
// comes from the seed, so one seed always maps to one sequence.
const pcgStream = 0x9e3779b97f4a7c15

// Alphanumeric is the character set used for client-generated tokens.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RNG is a uniform float stream backed by gofakeit. Every random decision a
// synthesizer makes goes through one RNG, so a seeded RNG reproduces the
// whole output. An RNG is safe for concurrent use; concurrent callers
// interleave on one stream.
type RNG struct {
	faker  *gofakeit.Faker
	seed   uint32
	seeded bool
}

// DeriveSeed folds a seed input into 32 bits. Numbers are truncated toward
// zero and masked to uint32, strings are summed by character code modulo
// 2^32. It reports false for nil, empty strings and non-finite numbers.
func DeriveSeed(input any) (uint32, bool) {
	switch v := input.(type) {
	case nil:
		return 0, false
	case string:
		return seedFromString(v)
	case float64:
		return seedFromFloat(v)
	case float32:
		return seedFromFloat(float64(v))
	case int:
		return uint32(int64(v)), true
	case int32:
		return uint32(v), true
	case int64:
		return uint32(v), true
	case uint:
		return uint32(v), true
	case uint32:
		return v, true
	case uint64:
		return uint32(v), true
	default:
		return 0, false
	}
}

func seedFromString(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	var sum uint32
	for _, unit := range utf16Units(s) {
		sum += uint32(unit)
	}
	return sum, true
}

func seedFromFloat(f float64) (uint32, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	m := math.Mod(t, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m), true
}

// utf16Units yields the UTF-16 code units of s so that character-code sums
// agree with seeds produced by other tooling for non-BMP input.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

// NewRNG creates an RNG from a seed input. Inputs DeriveSeed rejects produce
// a time-seeded, non-reproducible stream.
func NewRNG(input any) *RNG {
	if seed, ok := DeriveSeed(input); ok {
		return NewRNGWithSeed(seed)
	}
	src := rand.NewPCG(uint64(time.Now().UnixNano()), pcgStream)
	return &RNG{faker: gofakeit.NewFaker(src, true)}
}

// NewRNGWithSeed creates a deterministic RNG.
func NewRNGWithSeed(seed uint32) *RNG {
	src := rand.NewPCG(uint64(seed), pcgStream)
	return &RNG{
		faker:  gofakeit.NewFaker(src, true),
		seed:   seed,
		seeded: true,
	}
}

// ParseSeed interprets a textual seed as configured by users. Decimal
// integers are used as numbers, anything else as a string.
func ParseSeed(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// Seed returns the derived seed and whether the stream is reproducible.
func (r *RNG) Seed() (uint32, bool) {
	return r.seed, r.seeded
}

// Next returns a float in [0,1).
func (r *RNG) Next() float64 {
	return r.faker.Float64()
}

// IntBetween returns an integer in [min, max] inclusive.
func (r *RNG) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(math.Floor(r.Next()*float64(max-min+1)))
}

// FloatBetween returns a float in [min, max).
func (r *RNG) FloatBetween(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// UUID returns a random version 4 UUID drawn from the stream.
func (r *RNG) UUID() string {
	return r.faker.UUID()
}

// Compact12 returns a 12 character identifier cut from a random UUID with
// the separators removed.
func (r *RNG) Compact12() string {
	return Truncate(strings.ReplaceAll(r.UUID(), "-", ""), 12)
}

// RandomString generates a string of the given length from charset.
func (r *RNG) RandomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[int(r.Next()*float64(len(charset)))]
	}
	return string(result)
}

// PickOne returns seq[floor(Next()*len(seq))], or the zero value for an
// empty sequence.
func PickOne[T any](r *RNG, seq []T) T {
	if len(seq) == 0 {
		var zero T
		return zero
	}
	return seq[int(r.Next()*float64(len(seq)))]
}

// Truncate truncates a string to max length if needed.
func Truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
