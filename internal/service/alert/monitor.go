package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/config"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/notifier"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/metrics"
)

const (
	TypeEmailFailures = "high_email_failure_rate"
	TypeCronMissed    = "scheduler_liveness"
)

// Monitor tracks consecutive channel failures and scheduler liveness, and
// escalates to the operator address list when thresholds are breached. It is
// constructed once at process start and injected wherever failures are
// recorded; there is no package-level state.
type Monitor struct {
	email       notifier.EmailSender
	adminEmails []string
	cfg         config.AlertConfig
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	clock       func() time.Time

	mu            sync.Mutex
	emailFailures int
	lastCronRun   time.Time
}

func NewMonitor(email notifier.EmailSender, adminEmails []string, cfg config.AlertConfig, m *metrics.Metrics, logger zerolog.Logger) *Monitor {
	return &Monitor{
		email:       email,
		adminEmails: adminEmails,
		cfg:         cfg,
		metrics:     m,
		logger:      logger.With().Str("component", "alert_monitor").Logger(),
		clock:       func() time.Time { return time.Now().UTC() },
		lastCronRun: time.Now().UTC(),
	}
}

// RecordEmailFailure increments the consecutive-failure counter. At the
// threshold it fires one operator alert and resets to zero so a sustained
// outage does not become an alert storm.
func (m *Monitor) RecordEmailFailure(ctx context.Context, cause error) {
	m.mu.Lock()
	m.emailFailures++
	count := m.emailFailures
	breach := count >= m.cfg.EmailFailureThreshold
	if breach {
		m.emailFailures = 0
	}
	m.mu.Unlock()

	if !breach {
		return
	}

	detail := fmt.Sprintf("%d consecutive email failures detected", count)
	if cause != nil {
		detail += fmt.Sprintf("\nLast error: %v", cause)
	}
	m.sendAlert(ctx, TypeEmailFailures, detail)
}

// RecordEmailSuccess resets the consecutive-failure counter.
func (m *Monitor) RecordEmailSuccess() {
	m.mu.Lock()
	m.emailFailures = 0
	m.mu.Unlock()
}

// RecordCronRun marks the scheduler as alive.
func (m *Monitor) RecordCronRun() {
	now := m.clock()
	m.mu.Lock()
	m.lastCronRun = now
	m.mu.Unlock()
	m.metrics.LastTickUnixtime.Set(float64(now.Unix()))
}

// CheckCronHealth fires a liveness alert when the scheduler has not ticked
// within the configured threshold. It runs on its own timer so a fully
// stalled scheduler is still detected.
func (m *Monitor) CheckCronHealth(ctx context.Context) {
	m.mu.Lock()
	last := m.lastCronRun
	m.mu.Unlock()

	elapsed := m.clock().Sub(last)
	if elapsed <= m.cfg.CronMissedThreshold {
		return
	}

	m.sendAlert(ctx, TypeCronMissed, fmt.Sprintf(
		"Reminder scheduler has not completed a tick for %s (last run %s)",
		elapsed.Round(time.Minute), last.Format(time.RFC3339)))
}

// StartLiveness runs the periodic health check until the context is done.
func (m *Monitor) StartLiveness(ctx context.Context) {
	interval := m.cfg.LivenessInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info().Dur("interval", interval).Msg("liveness checker started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("liveness checker stopped")
			return
		case <-ticker.C:
			m.CheckCronHealth(ctx)
		}
	}
}

// EmailFailureCount exposes the counter for tests and the health snapshot.
func (m *Monitor) EmailFailureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emailFailures
}

// LastCronRun returns the time of the last recorded scheduler tick.
func (m *Monitor) LastCronRun() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCronRun
}

// SetClock overrides time lookup in tests.
func (m *Monitor) SetClock(clock func() time.Time) {
	m.clock = clock
}

// sendAlert dispatches to every configured operator address. An empty list
// drops the alert with a warning; alerting has no meta-alerting and failures
// here are never retried.
func (m *Monitor) sendAlert(ctx context.Context, alertType, message string) {
	if len(m.adminEmails) == 0 {
		m.logger.Warn().Str("type", alertType).Msg("no admin emails configured for alerts, dropping")
		return
	}

	m.metrics.OperatorAlerts.WithLabelValues(alertType).Inc()

	body := fmt.Sprintf("MedVault system alert: %s\n\n%s\n\nTime: %s\n\nAction required: please check the MedVault system.",
		alertType, message, m.clock().Format(time.RFC3339))

	for _, addr := range m.adminEmails {
		msg := &notifier.EmailMessage{
			To:      addr,
			Subject: fmt.Sprintf("MedVault Alert: %s", alertType),
			Body:    body,
			Type:    model.MessageTypeAlert,
		}
		if _, err := m.email.Send(ctx, msg); err != nil {
			m.logger.Error().Err(err).Str("recipient", addr).Str("type", alertType).Msg("failed to send operator alert")
			continue
		}
		m.logger.Info().Str("recipient", addr).Str("type", alertType).Msg("operator alert sent")
	}
}
