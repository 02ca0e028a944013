//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package scheduler

import (
	"strings"
	"time"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
)

// OverlapPolicy decides what happens when a trigger fires while its
// previous run is still in flight.
type OverlapPolicy string

const (
	// OverlapSkip drops the new tick and logs it.
	OverlapSkip OverlapPolicy = "skip"
	// OverlapAllow lets ticks of the same trigger run concurrently.
	OverlapAllow OverlapPolicy = "allow"
)

// ParseOverlapPolicy parses a configured policy. Empty means skip.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverlapSkip:
		return OverlapSkip, nil
	case OverlapAllow:
		return OverlapAllow, nil
	default:
		return "", errs.Validation("unknown overlap policy %q (want skip or allow)", s)
	}
}

// Config controls the recurring simulation jobs.
type Config struct {
	Enabled      bool
	SessionsCron string
	UsersCron    string

	// UsersPerRun is how many existing users grow-sessions samples.
	UsersPerRun  int
	MinSessions  int
	MaxSessions  int
	LookbackDays int

	// NewUsers is how many users grow-users creates per tick.
	NewUsers  int
	ChunkSize int

	Overlap    OverlapPolicy
	JobTimeout time.Duration
}

// DefaultConfig returns the stock schedule: sessions every ten minutes,
// users daily at 01:00.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		SessionsCron: "*/10 * * * *",
		UsersCron:    "0 1 * * *",
		UsersPerRun:  10,
		MinSessions:  1,
		MaxSessions:  3,
		LookbackDays: 180,
		NewUsers:     5,
		ChunkSize:    800,
		Overlap:      OverlapSkip,
		JobTimeout:   30 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.SessionsCron) == "" {
		c.SessionsCron = defaults.SessionsCron
	}
	if strings.TrimSpace(c.UsersCron) == "" {
		c.UsersCron = defaults.UsersCron
	}
	if c.UsersPerRun <= 0 {
		c.UsersPerRun = defaults.UsersPerRun
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaults.ChunkSize
	}
	if c.Overlap == "" {
		c.Overlap = defaults.Overlap
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
