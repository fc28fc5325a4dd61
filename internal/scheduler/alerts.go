// Package scheduler runs the expiration reminder pass on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/prometheus/client_golang/prometheus"
)

// retryDelay is how long the loop waits after failing to compute the next tick.
const retryDelay = 30 * time.Second

// Processor runs one reminder pass and reports how many reminders it recorded.
// Implemented by service.NotificationService.
type Processor interface {
	Process(ctx context.Context) (int, error)
}

// Metrics are the Prometheus collectors of the alert job.
type Metrics struct {
	runs        *prometheus.CounterVec
	created     prometheus.Counter
	lastSuccess prometheus.Gauge
}

// NewMetrics creates the alert job collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_alert_runs_total",
			Help: "Reminder passes by trigger and result.",
		}, []string{"trigger", "result"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "registro_alert_notifications_created_total",
			Help: "Expiration reminders recorded.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "registro_alert_last_success_timestamp_seconds",
			Help: "Unix time of the last successful reminder pass.",
		}),
	}
	reg.MustRegister(m.runs, m.created, m.lastSuccess)
	return m
}

// AlertJob runs a Processor on a cron expression evaluated in a fixed
// timezone. Passes never overlap: a tick that fires while a pass is running
// is skipped, and an on-demand pass waits for the running one.
type AlertJob struct {
	expr    string
	loc     *time.Location
	proc    Processor
	metrics *Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool

	mu sync.Mutex
}

// NewAlertJob validates expr and builds the job.
func NewAlertJob(expr string, loc *time.Location, proc Processor, metrics *Metrics) (*AlertJob, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q", expr)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AlertJob{
		expr:    expr,
		loc:     loc,
		proc:    proc,
		metrics: metrics,
		now:     time.Now,
		sleep:   sleepCtx,
	}, nil
}

// Run blocks, firing the job at every cron tick until ctx is cancelled.
func (j *AlertJob) Run(ctx context.Context) {
	slog.Info("alert job scheduled", "cron", j.expr, "timezone", j.loc.String())
	for {
		next, err := j.next(j.now())
		if err != nil {
			slog.Error("alert job: next tick", "cron", j.expr, "error", err)
			if !j.sleep(ctx, retryDelay) {
				return
			}
			continue
		}
		if !j.sleep(ctx, time.Until(next)) {
			slog.Info("alert job stopped")
			return
		}
		if !j.mu.TryLock() {
			slog.Warn("alert job: previous pass still running, tick skipped")
			continue
		}
		j.run(ctx, "cron")
		j.mu.Unlock()
	}
}

// Process runs one pass on demand and records it in the job metrics.
func (j *AlertJob) Process(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.run(ctx, "manual")
}

func (j *AlertJob) run(ctx context.Context, trigger string) (int, error) {
	start := time.Now()
	n, err := j.proc.Process(ctx)
	if err != nil {
		j.metrics.runs.WithLabelValues(trigger, "error").Inc()
		slog.ErrorContext(ctx, "alert job failed", "trigger", trigger, "error", err)
		return n, err
	}
	j.metrics.runs.WithLabelValues(trigger, "ok").Inc()
	j.metrics.created.Add(float64(n))
	j.metrics.lastSuccess.SetToCurrentTime()
	slog.InfoContext(ctx, "alert job done",
		"trigger", trigger,
		"created", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

// next returns the first tick strictly after now, in the job's timezone.
func (j *AlertJob) next(now time.Time) (time.Time, error) {
	return gronx.NextTickAfter(j.expr, now.In(j.loc), false)
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
