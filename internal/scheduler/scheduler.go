//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package scheduler runs the recurring simulation jobs: appending
// sessions for a sample of existing users and creating new users.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

// Job names, used in logs and metric labels.
const (
	JobGrowSessions = "grow-sessions"
	JobGrowUsers    = "grow-users"
)

// IDSource picks random existing user ids.
type IDSource interface {
	RandomIDs(ctx context.Context, table, column string, limit uint64) ([]string, error)
}

// SessionCreator appends sessions for one user.
type SessionCreator interface {
	CreateSessions(ctx context.Context, p synth.SessionParams) (int, error)
}

// UserCreator inserts brand-new users.
type UserCreator interface {
	Create(ctx context.Context, count, chunkSize int) (int, error)
}

var (
	_ SessionCreator = (*synth.SessionSynthesizer)(nil)
	_ UserCreator    = (*synth.UserSynthesizer)(nil)
)

// Deps are the collaborators a Scheduler drives.
type Deps struct {
	IDs      IDSource
	Sessions SessionCreator
	Users    UserCreator
	Metrics  *Metrics

	// PlayersTable and IDColumn locate the users sampled by grow-sessions.
	PlayersTable string
	IDColumn     string
}

type trigger struct {
	name    string
	spec    string
	running atomic.Bool
	run     func(ctx context.Context) (int, error)
}

// Scheduler owns the cron engine and the two simulation triggers.
type Scheduler struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger

	cron     *cron.Cron
	triggers []*trigger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	stopped bool
}

// cronParser accepts standard five-field expressions plus an optional
// leading seconds field and @descriptors.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCron reports whether expr is a usable schedule.
func ValidateCron(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return errs.Configuration("invalid cron expression %q: %v", expr, err)
	}
	return nil
}

// New builds a Scheduler. When cfg.Enabled is set, both cron
// expressions are parsed and registered; a bad expression is a
// configuration error. A disabled scheduler registers nothing.
func New(cfg Config, deps Deps) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	if _, err := ParseOverlapPolicy(string(cfg.Overlap)); err != nil {
		return nil, errs.Configuration("scheduler: %v", err)
	}

	log := logging.Component("scheduler")
	s := &Scheduler{
		cfg:  cfg,
		deps: deps,
		log:  log,
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLogger(cronLogger{log: log}),
			cron.WithChain(cron.Recover(cronLogger{log: log})),
		),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if !cfg.Enabled {
		return s, nil
	}

	if deps.IDs == nil || deps.Sessions == nil || deps.Users == nil {
		return nil, errs.Configuration("scheduler: missing dependencies")
	}

	s.triggers = []*trigger{
		{name: JobGrowSessions, spec: cfg.SessionsCron, run: s.RunSessionsOnce},
		{name: JobGrowUsers, spec: cfg.UsersCron, run: s.RunUsersOnce},
	}
	for _, t := range s.triggers {
		if err := ValidateCron(t.spec); err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		if _, err := s.cron.AddFunc(t.spec, func() { s.fire(t) }); err != nil {
			return nil, errs.Configuration("%s: register %q: %v", t.name, t.spec, err)
		}
	}

	return s, nil
}

// Enabled reports whether jobs are registered.
func (s *Scheduler) Enabled() bool {
	return s.cfg.Enabled
}

// Start begins firing triggers. It is a no-op when disabled. A stopped
// scheduler cannot be restarted.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled {
		s.log.Info().Msg("Simulation jobs disabled")
		return
	}
	if s.stopped {
		s.log.Warn().Msg("Scheduler already stopped, not restarting")
		return
	}
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()

	for _, t := range s.triggers {
		s.log.Info().Str("job", t.name).Str("cron", t.spec).Msg("Simulation job scheduled")
	}
}

// Running reports whether the cron engine is firing triggers.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stop halts the cron engine, cancels in-flight jobs and waits for
// them to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	if !started {
		return nil
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fire runs one tick of t, honoring the overlap policy.
func (s *Scheduler) fire(t *trigger) {
	if s.cfg.Overlap == OverlapSkip {
		if !t.running.CompareAndSwap(false, true) {
			s.deps.Metrics.incJobSkipped(t.name)
			s.log.Warn().Str("job", t.name).Msg("Previous run still in progress, skipping tick")
			return
		}
		defer t.running.Store(false)
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.JobTimeout)
	defer cancel()

	_, _ = s.runJob(ctx, t.name, t.run)
}

// runJob wraps fn with a run id, start and finish logs, metrics and
// panic recovery.
func (s *Scheduler) runJob(ctx context.Context, name string, fn func(context.Context) (int, error)) (rows int, err error) {
	runID := uuid.NewString()
	log := s.log.With().Str("job", name).Str("run_id", runID).Logger()
	started := time.Now()

	s.deps.Metrics.incJobRun(name)
	log.Info().Msg("Job started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
			s.deps.Metrics.incJobError(name, ReasonPanic)
			log.Error().Interface("panic", r).Msg("Job panicked")
		}
		elapsed := time.Since(started)
		s.deps.Metrics.observeDuration(name, elapsed)
	}()

	rows, err = fn(ctx)
	elapsed := time.Since(started)
	if err != nil {
		s.deps.Metrics.incJobError(name, ClassifyError(err))
		log.Error().Err(err).Int64("duration_ms", elapsed.Milliseconds()).Msg("Job failed")
		return rows, err
	}

	s.deps.Metrics.addRows(name, rows)
	log.Info().
		Int("rows", rows).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("Job finished")
	return rows, nil
}

// RunSessionsOnce samples UsersPerRun existing users and appends
// sessions for each. A failure for one user is logged and skipped;
// only failing to pick users fails the run.
func (s *Scheduler) RunSessionsOnce(ctx context.Context) (int, error) {
	ids, err := s.deps.IDs.RandomIDs(ctx, s.deps.PlayersTable, s.deps.IDColumn, uint64(s.cfg.UsersPerRun))
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		s.log.Info().Str("table", s.deps.PlayersTable).Msg("No users to grow sessions for")
		return 0, nil
	}

	total, failures := 0, 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.deps.Sessions.CreateSessions(ctx, synth.SessionParams{
			UserID:       id,
			MinSessions:  s.cfg.MinSessions,
			MaxSessions:  s.cfg.MaxSessions,
			LookbackDays: s.cfg.LookbackDays,
			ChunkSize:    s.cfg.ChunkSize,
		})
		if err != nil {
			failures++
			s.log.Warn().Err(err).Str("user_id", id).Msg("Session growth failed for user")
			continue
		}
		total += n
	}

	s.log.Debug().
		Int("users", len(ids)).
		Int("failures", failures).
		Int("rows", total).
		Msg("Session growth complete")
	return total, nil
}

// RunUsersOnce creates NewUsers players.
func (s *Scheduler) RunUsersOnce(ctx context.Context) (int, error) {
	return s.deps.Users.Create(ctx, s.cfg.NewUsers, s.cfg.ChunkSize)
}
