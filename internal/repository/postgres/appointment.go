package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	apperrors "github.com/Soham-droid-pixel/MedVault2.0/pkg/errors"
)

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, doctor, date, notes, reminders_sent,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	apt.ID = uuid.New()
	apt.RemindersSent = model.ReminderNone
	apt.CreatedAt = time.Now().UTC()
	apt.UpdatedAt = apt.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.UserID,
		apt.Doctor,
		apt.Date,
		apt.Notes,
		apt.RemindersSent,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, user_id, doctor, date, notes, reminders_sent,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor = $1, date = $2, notes = $3, reminders_sent = $4, updated_at = $5
		WHERE id = $6
	`
	apt.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		apt.Doctor,
		apt.Date,
		apt.Notes,
		apt.RemindersSent,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, doctor, date, notes, reminders_sent,
			   created_at, updated_at
		FROM appointments
		WHERE user_id = $1
		ORDER BY date ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindInWindow(ctx context.Context, from, to time.Time, notMarked model.ReminderClass) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, doctor, date, notes, reminders_sent,
			   created_at, updated_at
		FROM appointments
		WHERE date >= $1
		AND date < $2
		AND reminders_sent != $3
		ORDER BY date ASC, id ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, from, to, notMarked); err != nil {
		return nil, fmt.Errorf("failed to find appointments in window: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateReminderMarker(ctx context.Context, id uuid.UUID, class model.ReminderClass) (bool, error) {
	// Conditional update doubles as the guard against a concurrent tick
	// dispatching the same class.
	query := `
		UPDATE appointments
		SET reminders_sent = $1, updated_at = $2
		WHERE id = $3 AND reminders_sent != $1
	`
	result, err := r.db.ExecContext(ctx, query, class, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update reminder marker: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune appointments: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
