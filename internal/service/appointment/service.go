package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/service/reminder"
	apperrors "github.com/Soham-droid-pixel/MedVault2.0/pkg/errors"
)

// BookingNotifier sends the lifecycle emails around appointment CRUD.
type BookingNotifier interface {
	SendBookingNotice(ctx context.Context, apt *model.Appointment, kind reminder.NoticeKind) error
}

type Service struct {
	repo     repository.AppointmentRepository
	notifier BookingNotifier
	logger   zerolog.Logger
}

func NewService(repo repository.AppointmentRepository, notifier BookingNotifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("component", "appointment_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !req.Date.After(time.Now()) {
		return nil, apperrors.BadRequest("appointment date must be in the future", nil)
	}

	apt := &model.Appointment{
		UserID: userID,
		Doctor: req.Doctor,
		Date:   req.Date.UTC(),
		Notes:  req.Notes,
	}
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	// Notification failure never blocks the booking.
	if err := s.notifier.SendBookingNotice(ctx, apt, reminder.NoticeConfirmation); err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("confirmation notice failed")
	}
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Update applies a partial edit. A date change invalidates any reminder
// already sent, so the marker resets to none and the new date's windows
// fire afresh.
func (s *Service) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.UserID != userID {
		return nil, apperrors.Forbidden("appointment does not belong to user", nil)
	}

	if req.Doctor != nil {
		apt.Doctor = *req.Doctor
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.Date != nil && !req.Date.Equal(apt.Date) {
		if !req.Date.After(time.Now()) {
			return nil, apperrors.BadRequest("appointment date must be in the future", nil)
		}
		apt.Date = req.Date.UTC()
		apt.RemindersSent = model.ReminderNone
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if err := s.notifier.SendBookingNotice(ctx, apt, reminder.NoticeUpdate); err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("update notice failed")
	}
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.UserID != userID {
		return apperrors.Forbidden("appointment does not belong to user", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if err := s.notifier.SendBookingNotice(ctx, apt, reminder.NoticeCancellation); err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("cancellation notice failed")
	}
	return nil
}
