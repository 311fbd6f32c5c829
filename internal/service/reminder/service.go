package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/notifier"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/service/alert"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/service/preference"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/metrics"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/token"
)

const emailTimeFormat = "Monday, January 2, 2006 at 3:04 PM"

// Service orchestrates per-class reminder dispatch: eligibility, preference
// resolution, channel sends, marker update and alert feedback.
type Service struct {
	appointments repository.AppointmentRepository
	logs         repository.DeliveryLogRepository
	engine       *Engine
	prefs        *preference.Service
	email        notifier.EmailSender
	sms          notifier.SMSSender
	monitor      *alert.Monitor
	tokens       *token.Issuer
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	logs repository.DeliveryLogRepository,
	engine *Engine,
	prefs *preference.Service,
	email notifier.EmailSender,
	sms notifier.SMSSender,
	monitor *alert.Monitor,
	tokens *token.Issuer,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		logs:         logs,
		engine:       engine,
		prefs:        prefs,
		email:        email,
		sms:          sms,
		monitor:      monitor,
		tokens:       tokens,
		metrics:      m,
		logger:       logger.With().Str("component", "reminder_dispatch").Logger(),
	}
}

// DispatchClass runs one reminder class's batch for the given instant. An
// eligibility query failure aborts only this class's batch; per-appointment
// failures are contained and never stop the rest of the batch.
func (s *Service) DispatchClass(ctx context.Context, now time.Time, class model.ReminderClass) error {
	batch, err := s.engine.EligibleForClass(ctx, now, class)
	if err != nil {
		return fmt.Errorf("failed to compute eligibility: %w", err)
	}
	s.metrics.EligibleBatch.WithLabelValues(string(class)).Set(float64(len(batch)))

	for _, apt := range batch {
		if err := s.dispatchOne(ctx, apt, class); err != nil {
			s.logger.Error().Err(err).
				Str("appointment_id", apt.ID.String()).
				Str("class", string(class)).
				Msg("reminder dispatch failed, will retry next tick")
		}
	}
	return nil
}

// dispatchOne sends one appointment's reminder through every enabled channel
// and advances the marker only when at least one channel succeeded. A failed
// dispatch leaves the marker untouched so the appointment is picked up again
// on the next tick; that is the retry mechanism.
func (s *Service) dispatchOne(ctx context.Context, apt *model.Appointment, class model.ReminderClass) error {
	decision, err := s.prefs.Resolve(ctx, apt.UserID, class)
	if err != nil {
		return fmt.Errorf("failed to resolve preferences: %w", err)
	}
	if !decision.SendEmail && !decision.SendSMS {
		s.logger.Debug().
			Str("appointment_id", apt.ID.String()).
			Str("class", string(class)).
			Msg("no channels enabled, skipping")
		return nil
	}

	var emailOK, smsOK bool
	var lastErr error

	if decision.SendEmail {
		if err := s.sendReminderEmail(ctx, apt, class, decision); err != nil {
			lastErr = err
			// Failures are labelled by classified cause so an auth outage is
			// distinguishable from a flaky network on the dashboard.
			s.metrics.ChannelSends.WithLabelValues("email", string(notifier.KindOf(err))).Inc()
			s.monitor.RecordEmailFailure(ctx, err)
		} else {
			emailOK = true
			s.metrics.ChannelSends.WithLabelValues("email", "sent").Inc()
			s.monitor.RecordEmailSuccess()
		}
	}

	if decision.SendSMS {
		ok, err := s.sendReminderSMS(ctx, apt, class, decision)
		if err != nil {
			lastErr = err
			s.metrics.ChannelSends.WithLabelValues("sms", string(notifier.KindOf(err))).Inc()
		} else if ok {
			smsOK = true
			s.metrics.ChannelSends.WithLabelValues("sms", "sent").Inc()
		}
	}

	if !emailOK && !smsOK {
		s.metrics.RemindersFailed.WithLabelValues(string(class)).Inc()
		if lastErr != nil {
			return lastErr
		}
		// Every enabled channel was a no-op (e.g. SMS unconfigured); leave
		// the marker so a later tick can retry once a channel comes up.
		return nil
	}

	updated, err := s.appointments.UpdateReminderMarker(ctx, apt.ID, class)
	if err != nil {
		return fmt.Errorf("failed to advance reminder marker: %w", err)
	}
	if !updated {
		s.logger.Warn().
			Str("appointment_id", apt.ID.String()).
			Str("class", string(class)).
			Msg("marker already advanced by a concurrent tick")
	}
	s.metrics.RemindersSent.WithLabelValues(string(class)).Inc()
	return nil
}

func (s *Service) sendReminderEmail(ctx context.Context, apt *model.Appointment, class model.ReminderClass, d *preference.Decision) error {
	unsubToken, err := s.tokens.Issue(apt.UserID)
	if err != nil {
		// Token issues should never block the reminder itself.
		s.logger.Warn().Err(err).Msg("failed to issue unsubscribe token")
	}

	subject, body := reminderEmailContent(apt, class, d.Timezone)
	aptID := apt.ID
	msg := &notifier.EmailMessage{
		To:               d.EmailAddress,
		Subject:          subject,
		Body:             body,
		Type:             model.MessageTypeForClass(class),
		UserID:           apt.UserID,
		AppointmentID:    &aptID,
		UnsubscribeToken: unsubToken,
	}
	if _, err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

// sendReminderSMS returns (true, nil) only on a confirmed provider accept.
// An unconfigured channel yields (false, nil): a policy no-op, not an error.
func (s *Service) sendReminderSMS(ctx context.Context, apt *model.Appointment, class model.ReminderClass, d *preference.Decision) (bool, error) {
	body := notifier.FormatAppointmentSMS(apt, class, d.Timezone)

	aptID := apt.ID
	entry := &model.DeliveryLog{
		UserID:        apt.UserID,
		AppointmentID: &aptID,
		Recipient:     d.PhoneNumber,
		Subject:       body,
		Type:          model.MessageTypeForClass(class),
		Channel:       model.ChannelSMS,
		Status:        model.DeliveryStatusSending,
	}
	if !s.sms.Enabled() {
		// Nothing will be attempted; don't pollute the audit trail.
		res, _ := s.sms.Send(ctx, d.PhoneNumber, body)
		s.logger.Debug().Str("reason", res.Message).Msg("sms channel disabled")
		return false, nil
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to create sms delivery log entry")
	}

	res, err := s.sms.Send(ctx, d.PhoneNumber, body)
	if err != nil {
		if logErr := s.logs.UpdateStatus(ctx, entry.ID, model.DeliveryStatusFailed, "", err.Error()); logErr != nil {
			s.logger.Warn().Err(logErr).Msg("failed to finalize sms delivery log entry")
		}
		return false, fmt.Errorf("failed to send reminder sms: %w", err)
	}
	if logErr := s.logs.UpdateStatus(ctx, entry.ID, model.DeliveryStatusSent, res.SID, ""); logErr != nil {
		s.logger.Warn().Err(logErr).Msg("failed to finalize sms delivery log entry")
	}
	return res.Success, nil
}

// SendTestReminder dispatches a one-off 1-day-style reminder for operational
// verification, bypassing eligibility and the marker.
func (s *Service) SendTestReminder(ctx context.Context, appointmentID uuid.UUID) error {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	decision, err := s.prefs.Resolve(ctx, apt.UserID, model.ReminderOne)
	if err != nil {
		return fmt.Errorf("failed to resolve preferences: %w", err)
	}
	if decision.EmailAddress == "" {
		return fmt.Errorf("user has no email address on file")
	}

	subject, body := reminderEmailContent(apt, model.ReminderOne, decision.Timezone)
	aptID := apt.ID
	msg := &notifier.EmailMessage{
		To:            decision.EmailAddress,
		Subject:       "[TEST] " + subject,
		Body:          body,
		Type:          model.MessageTypeTest,
		UserID:        apt.UserID,
		AppointmentID: &aptID,
	}
	if _, err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send test reminder: %w", err)
	}
	return nil
}

func reminderEmailContent(apt *model.Appointment, class model.ReminderClass, loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.UTC
	}
	when := apt.Date.In(loc).Format(emailTimeFormat)

	var subject, lead string
	switch class {
	case model.ReminderOne:
		subject = "Appointment Reminder - Tomorrow"
		lead = "This is a friendly reminder that your appointment is tomorrow."
	case model.ReminderThree:
		subject = "Appointment Reminder - 3 Days"
		lead = "Your appointment is coming up in 3 days."
	default:
		subject = "Appointment Reminder - Next Week"
		lead = "You have an appointment scheduled for next week."
	}

	body := fmt.Sprintf(`%s

Appointment details:
- Doctor: Dr. %s
- Date: %s`, lead, apt.Doctor, when)
	if apt.Notes != "" {
		body += fmt.Sprintf("\n- Notes: %s", apt.Notes)
	}
	body += "\n\nPlease arrive 15 minutes early and bring your insurance card."
	return subject, body
}
