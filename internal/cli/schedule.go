//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-datasim/internal/logging"
	"github.com/pgEdge/pgedge-datasim/internal/scheduler"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

var (
	schedEnabled     bool
	schedOnce        bool
	schedOverlap     string
	schedMetricsAddr string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Grow sessions and players on cron schedules",
	Long: `Run the simulation jobs on their cron schedules until interrupted with
Ctrl+C:

  grow-sessions - append sessions for a random sample of existing players
  grow-users    - create new players

Jobs only run when scheduler.enabled is set (or ENABLE_SIM_JOBS=true, or
--enabled). With --once both jobs run a single time and the command exits.

Overlap Policies:
  skip  - a tick is dropped while the previous run of the job is active (default)
  allow - ticks of the same job may run concurrently

Example:
  pgedge-datasim schedule --enabled --metrics-addr :9187
  pgedge-datasim schedule --once`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&schedEnabled, "enabled", false,
		"enable the jobs regardless of configuration")
	scheduleCmd.Flags().BoolVar(&schedOnce, "once", false,
		"run each job once and exit")
	scheduleCmd.Flags().StringVar(&schedOverlap, "overlap", "",
		"overlap policy: skip or allow")
	scheduleCmd.Flags().StringVar(&schedMetricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address (e.g. :9187)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if schedEnabled || schedOnce {
		cfg.Scheduler.Enabled = true
	}
	if schedOverlap != "" {
		cfg.Scheduler.Overlap = schedOverlap
	}
	if schedMetricsAddr != "" {
		cfg.Scheduler.MetricsAddr = schedMetricsAddr
	}

	// Validate configuration
	if err := cfg.ValidateSchedule(); err != nil {
		return err
	}

	if !cfg.Scheduler.Enabled {
		logging.Info().Msg("Simulation jobs disabled; set scheduler.enabled or pass --enabled")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	desc, err := resolvePlayers(ctx, store)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sched, err := scheduler.New(cfg.SchedulerConfig(), scheduler.Deps{
		IDs:          store,
		Sessions:     synth.NewSessionSynthesizer(store, desc),
		Users:        newUserSynthesizer(store, desc),
		Metrics:      scheduler.NewMetrics(registry),
		PlayersTable: desc.Table,
		IDColumn:     desc.IDColumn,
	})
	if err != nil {
		return err
	}

	if schedOnce {
		return runJobsOnce(ctx, cmd, sched)
	}

	var server *http.Server
	if cfg.Scheduler.MetricsAddr != "" {
		server = serveMetrics(cfg.Scheduler.MetricsAddr, registry)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sched.Start()
	logging.Info().
		Str("sessions_cron", cfg.Scheduler.SessionsCron).
		Str("users_cron", cfg.Scheduler.UsersCron).
		Str("overlap", cfg.Scheduler.Overlap).
		Msg("Scheduler running")

	sig := <-sigChan
	logging.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("scheduler did not stop cleanly: %w", err)
	}
	return nil
}

func runJobsOnce(ctx context.Context, cmd *cobra.Command, sched *scheduler.Scheduler) error {
	out := cmd.OutOrStdout()
	heading(out, "Summary")

	sessions, err := sched.RunSessionsOnce(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", scheduler.JobGrowSessions, err)
	}
	summaryLine(out, scheduler.JobGrowSessions, sessions)

	users, err := sched.RunUsersOnce(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", scheduler.JobGrowUsers, err)
	}
	summaryLine(out, scheduler.JobGrowUsers, users)
	return nil
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("addr", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return server
}
