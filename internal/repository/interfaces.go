package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)

	// FindInWindow returns appointments scheduled within [from, to) whose
	// reminder marker differs from the given class, ordered by date then id.
	FindInWindow(ctx context.Context, from, to time.Time, notMarked model.ReminderClass) ([]*model.Appointment, error)

	// UpdateReminderMarker advances the marker only if it still differs from
	// class; returns false when another tick got there first.
	UpdateReminderMarker(ctx context.Context, id uuid.UUID, class model.ReminderClass) (bool, error)

	// DeleteOlderThan prunes appointments whose date precedes cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PreferenceRepository interface {
	// FindByUser returns nil, nil when the user has no stored preferences.
	FindByUser(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error)
	Upsert(ctx context.Context, prefs *model.NotificationPreferences) error
}

type DeliveryLogRepository interface {
	Create(ctx context.Context, entry *model.DeliveryLog) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, messageID, sendErr string) error
	ListRecent(ctx context.Context, limit, offset int) ([]*model.DeliveryLog, error)
	Stats(ctx context.Context) (*model.DeliveryStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserRepository interface {
	// Get returns nil, nil when the account no longer exists.
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
}
