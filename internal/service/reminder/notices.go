package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/notifier"
)

// NoticeKind selects the booking lifecycle email sent outside the reminder
// windows.
type NoticeKind string

const (
	NoticeConfirmation NoticeKind = "confirmation"
	NoticeUpdate       NoticeKind = "update"
	NoticeCancellation NoticeKind = "cancellation"
)

// SendBookingNotice emails a confirmation, update or cancellation notice.
// Callers treat failures as soft: booking CRUD must succeed even when the
// accompanying notification cannot be delivered.
func (s *Service) SendBookingNotice(ctx context.Context, apt *model.Appointment, kind NoticeKind) error {
	decision, err := s.prefs.ResolveContact(ctx, apt.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve contact: %w", err)
	}
	if !decision.SendEmail || decision.EmailAddress == "" {
		return nil
	}

	loc := decision.Timezone
	if loc == nil {
		loc = time.UTC
	}
	when := apt.Date.In(loc).Format(emailTimeFormat)

	var subject, lead string
	var msgType model.MessageType
	switch kind {
	case NoticeUpdate:
		subject = "Appointment Updated"
		lead = "Your appointment has been updated. The new details are below."
		msgType = model.MessageTypeUpdate
	case NoticeCancellation:
		subject = "Appointment Cancelled"
		lead = "Your appointment has been cancelled. No further reminders will be sent for it."
		msgType = model.MessageTypeCancellation
	default:
		subject = "Appointment Confirmed"
		lead = "Your appointment has been booked. We'll remind you as the date approaches."
		msgType = model.MessageTypeConfirmation
	}

	body := fmt.Sprintf(`%s

Appointment details:
- Doctor: Dr. %s
- Date: %s`, lead, apt.Doctor, when)
	if apt.Notes != "" {
		body += fmt.Sprintf("\n- Notes: %s", apt.Notes)
	}

	aptID := apt.ID
	msg := &notifier.EmailMessage{
		To:            decision.EmailAddress,
		Subject:       subject,
		Body:          body,
		Type:          msgType,
		UserID:        apt.UserID,
		AppointmentID: &aptID,
	}
	if _, err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s notice: %w", kind, err)
	}
	return nil
}
