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
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pgEdge/pgedge-datasim/internal/errs"
)

// Error reasons used as metric labels.
const (
	ReasonValidation       = "validation"
	ReasonNotFound         = "not_found"
	ReasonStorage          = "storage"
	ReasonConfiguration    = "configuration"
	ReasonDeadlineExceeded = "deadline_exceeded"
	ReasonPanic            = "panic"
	ReasonUnknown          = "unknown"
)

// ClassifyError maps an error to a metric reason label.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case errors.Is(err, errs.ErrValidation):
		return ReasonValidation
	case errors.Is(err, errs.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, errs.ErrStorage):
		return ReasonStorage
	case errors.Is(err, errs.ErrConfiguration):
		return ReasonConfiguration
	default:
		return ReasonUnknown
	}
}

// Metrics holds the scheduler's prometheus collectors.
type Metrics struct {
	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobSkipped  *prometheus.CounterVec
	rowsWritten *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer leaves them unregistered.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datasim_scheduler_job_runs_total",
			Help: "Number of scheduler job runs started.",
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datasim_scheduler_job_errors_total",
			Help: "Number of scheduler job failures by reason.",
		}, []string{"job", "reason"}),
		jobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datasim_scheduler_job_skipped_total",
			Help: "Number of ticks skipped because the previous run was still in flight.",
		}, []string{"job"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datasim_scheduler_rows_inserted_total",
			Help: "Number of rows inserted by scheduler jobs.",
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datasim_scheduler_job_duration_seconds",
			Help:    "Duration of scheduler job runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"job"}),
	}

	if registerer != nil {
		registerer.MustRegister(m.jobRuns, m.jobErrors, m.jobSkipped, m.rowsWritten, m.jobDuration)
	}
	return m
}

func (m *Metrics) incJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *Metrics) incJobError(job, reason string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, reason).Inc()
}

func (m *Metrics) incJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *Metrics) addRows(job string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsWritten.WithLabelValues(job).Add(float64(n))
}

func (m *Metrics) observeDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
