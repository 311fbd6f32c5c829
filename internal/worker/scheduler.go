package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/config"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/service/alert"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/metrics"
)

const tickLockKey = "medvault:reminder:tick"

// ClassDispatcher runs one reminder class's batch for a given instant.
type ClassDispatcher interface {
	DispatchClass(ctx context.Context, now time.Time, class model.ReminderClass) error
}

// ReminderScheduler drives the recurring reminder pipeline: a coarse hourly
// tick dispatches the three reminder classes, a fine tick logs a health
// snapshot, and a daily condition inside the hourly tick runs retention
// maintenance. Business logic lives in the reminder service; the scheduler
// only decides when to run it, so tests can invoke RunTickOnce directly.
type ReminderScheduler struct {
	dispatch     ClassDispatcher
	appointments repository.AppointmentRepository
	logs         repository.DeliveryLogRepository
	monitor      *alert.Monitor
	lock         TickLock
	cfg          config.SchedulerConfig
	retention    config.RetentionConfig
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	clock        func() time.Time

	inProgress atomic.Bool
}

func NewReminderScheduler(
	dispatch ClassDispatcher,
	appointments repository.AppointmentRepository,
	logs repository.DeliveryLogRepository,
	monitor *alert.Monitor,
	lock TickLock,
	cfg config.SchedulerConfig,
	retention config.RetentionConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ReminderScheduler {
	if lock == nil {
		lock = NewNoopTickLock()
	}
	return &ReminderScheduler{
		dispatch:     dispatch,
		appointments: appointments,
		logs:         logs,
		monitor:      monitor,
		lock:         lock,
		cfg:          cfg,
		retention:    retention,
		metrics:      m,
		logger:       logger.With().Str("component", "reminder_scheduler").Logger(),
		clock:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides time lookup in tests.
func (s *ReminderScheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Start runs the reminder and health tickers until the context is done. A
// tick failure is logged and reported, never fatal; the next tick is the
// recovery mechanism.
func (s *ReminderScheduler) Start(ctx context.Context) {
	reminderTicker := time.NewTicker(s.cfg.ReminderInterval)
	defer reminderTicker.Stop()
	healthTicker := time.NewTicker(s.cfg.HealthInterval)
	defer healthTicker.Stop()

	s.logger.Info().
		Dur("reminder_interval", s.cfg.ReminderInterval).
		Dur("health_interval", s.cfg.HealthInterval).
		Msg("reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-reminderTicker.C:
			if err := s.RunTickOnce(ctx, s.clock()); err != nil {
				s.metrics.TickFailures.Inc()
				s.logger.Error().Err(err).Msg("reminder tick failed")
			}
		case <-healthTicker.C:
			s.healthSnapshot()
		}
	}
}

// RunTickOnce executes one full reminder tick at the given instant. Classes
// are processed furthest-out first so an appointment whose marker was reset
// by an edit is caught in ascending urgency. Only one tick may run at a
// time; an overrunning tick makes the next one a no-op rather than a
// duplicate dispatch.
func (s *ReminderScheduler) RunTickOnce(ctx context.Context, now time.Time) error {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("previous tick still running, skipping")
		return nil
	}
	defer s.inProgress.Store(false)

	acquired, err := s.lock.Acquire(ctx, tickLockKey, s.cfg.TickLease)
	if err != nil {
		return fmt.Errorf("failed to acquire tick lease: %w", err)
	}
	if !acquired {
		s.logger.Warn().Msg("tick lease held elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx, tickLockKey); err != nil {
			s.logger.Warn().Err(err).Msg("failed to release tick lease")
		}
	}()

	timer := prometheus.NewTimer(s.metrics.TickDuration)
	defer timer.ObserveDuration()

	var tickErr error
	for _, class := range model.ReminderClasses {
		if err := s.dispatch.DispatchClass(ctx, now, class); err != nil {
			// Abort only this class's batch; continue with the next class.
			s.logger.Error().Err(err).Str("class", string(class)).Msg("class batch aborted")
			tickErr = err
		}
	}

	if now.Hour() == s.cfg.MaintenanceHour {
		// Maintenance and reminders are independent concerns within the
		// same tick; a pruning failure never blocks dispatch.
		if err := s.runMaintenance(ctx, now); err != nil {
			s.logger.Error().Err(err).Msg("maintenance failed")
		}
	}

	if tickErr != nil {
		// Liveness reflects successful ticks only. A persistently failing
		// dispatch path leaves the timestamp stale so the liveness check
		// escalates to the operators instead of counting silent failures.
		return fmt.Errorf("tick completed with errors: %w", tickErr)
	}
	s.monitor.RecordCronRun()
	return nil
}

// RunMaintenanceOnce prunes appointments past their retention window and
// aged delivery logs.
func (s *ReminderScheduler) RunMaintenanceOnce(ctx context.Context, now time.Time) error {
	return s.runMaintenance(ctx, now)
}

func (s *ReminderScheduler) runMaintenance(ctx context.Context, now time.Time) error {
	aptCutoff := now.AddDate(0, 0, -s.retention.AppointmentDays)
	pruned, err := s.appointments.DeleteOlderThan(ctx, aptCutoff)
	if err != nil {
		return fmt.Errorf("failed to prune appointments: %w", err)
	}
	s.metrics.PrunedRecords.WithLabelValues("appointments").Add(float64(pruned))

	logCutoff := now.AddDate(0, 0, -s.retention.DeliveryLogDays)
	prunedLogs, err := s.logs.DeleteOlderThan(ctx, logCutoff)
	if err != nil {
		return fmt.Errorf("failed to prune delivery logs: %w", err)
	}
	s.metrics.PrunedRecords.WithLabelValues("delivery_logs").Add(float64(prunedLogs))

	s.logger.Info().
		Int64("appointments_pruned", pruned).
		Int64("delivery_logs_pruned", prunedLogs).
		Msg("maintenance completed")
	return nil
}

func (s *ReminderScheduler) healthSnapshot() {
	s.logger.Info().
		Time("last_tick", s.monitor.LastCronRun()).
		Int("consecutive_email_failures", s.monitor.EmailFailureCount()).
		Bool("tick_in_progress", s.inProgress.Load()).
		Msg("scheduler health snapshot")
}
