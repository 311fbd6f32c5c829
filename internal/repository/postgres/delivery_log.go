package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

func (r *deliveryLogRepository) Create(ctx context.Context, entry *model.DeliveryLog) error {
	query := `
		INSERT INTO delivery_logs (
			id, user_id, appointment_id, recipient, subject, type, channel,
			status, message_id, error, sent_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()
	if entry.SentAt.IsZero() {
		entry.SentAt = entry.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.AppointmentID,
		entry.Recipient,
		entry.Subject,
		entry.Type,
		entry.Channel,
		entry.Status,
		entry.MessageID,
		entry.Error,
		entry.SentAt,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create delivery log: %w", err)
	}
	return nil
}

func (r *deliveryLogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, messageID, sendErr string) error {
	query := `
		UPDATE delivery_logs
		SET status = $1, message_id = $2, error = $3, sent_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, status, messageID, sendErr, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update delivery log: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delivery log not found")
	}
	return nil
}

func (r *deliveryLogRepository) ListRecent(ctx context.Context, limit, offset int) ([]*model.DeliveryLog, error) {
	query := `
		SELECT id, user_id, appointment_id, recipient, subject, type, channel,
			   status, message_id, error, sent_at, delivered_at, created_at
		FROM delivery_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var logs []*model.DeliveryLog
	if err := r.db.SelectContext(ctx, &logs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list delivery logs: %w", err)
	}
	return logs, nil
}

func (r *deliveryLogRepository) Stats(ctx context.Context) (*model.DeliveryStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'sent') AS sent,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())) AS sent_today,
			COUNT(*) AS total
		FROM delivery_logs
	`
	var stats model.DeliveryStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get delivery stats: %w", err)
	}
	return &stats, nil
}

func (r *deliveryLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM delivery_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune delivery logs: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
