package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

// preferenceRow flattens the nested preference blocks onto one table row.
type preferenceRow struct {
	ID                 uuid.UUID `db:"id"`
	UserID             uuid.UUID `db:"user_id"`
	EmailEnabled       bool      `db:"email_enabled"`
	EmailSevenDay      bool      `db:"email_seven_day"`
	EmailThreeDay      bool      `db:"email_three_day"`
	EmailOneDay        bool      `db:"email_one_day"`
	EmailReminderTime  string    `db:"email_reminder_time"`
	SMSEnabled         bool      `db:"sms_enabled"`
	SMSPhoneNumber     string    `db:"sms_phone_number"`
	SMSSevenDay        bool      `db:"sms_seven_day"`
	SMSThreeDay        bool      `db:"sms_three_day"`
	SMSOneDay          bool      `db:"sms_one_day"`
	AllowEmailSharing  bool      `db:"allow_email_sharing"`
	AllowLinkSharing   bool      `db:"allow_link_sharing"`
	DefaultShareExpiry int       `db:"default_share_expiry"`
	Timezone           string    `db:"timezone"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (row *preferenceRow) toModel() *model.NotificationPreferences {
	return &model.NotificationPreferences{
		ID:     row.ID,
		UserID: row.UserID,
		EmailReminders: model.EmailReminderPrefs{
			Enabled: row.EmailEnabled,
			ReminderDays: model.ReminderDays{
				SevenDay: row.EmailSevenDay,
				ThreeDay: row.EmailThreeDay,
				OneDay:   row.EmailOneDay,
			},
			ReminderTime: row.EmailReminderTime,
		},
		SMSReminders: model.SMSReminderPrefs{
			Enabled:     row.SMSEnabled,
			PhoneNumber: row.SMSPhoneNumber,
			ReminderDays: model.ReminderDays{
				SevenDay: row.SMSSevenDay,
				ThreeDay: row.SMSThreeDay,
				OneDay:   row.SMSOneDay,
			},
		},
		RecordSharing: model.RecordSharingPrefs{
			AllowEmailSharing:  row.AllowEmailSharing,
			AllowLinkSharing:   row.AllowLinkSharing,
			DefaultShareExpiry: row.DefaultShareExpiry,
		},
		Timezone:  row.Timezone,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *preferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	query := `
		SELECT id, user_id, email_enabled, email_seven_day, email_three_day,
			   email_one_day, email_reminder_time, sms_enabled, sms_phone_number,
			   sms_seven_day, sms_three_day, sms_one_day, allow_email_sharing,
			   allow_link_sharing, default_share_expiry, timezone,
			   created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`
	var row preferenceRow
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find preferences: %w", err)
	}
	return row.toModel(), nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, prefs *model.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (
			id, user_id, email_enabled, email_seven_day, email_three_day,
			email_one_day, email_reminder_time, sms_enabled, sms_phone_number,
			sms_seven_day, sms_three_day, sms_one_day, allow_email_sharing,
			allow_link_sharing, default_share_expiry, timezone,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (user_id) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			email_seven_day = EXCLUDED.email_seven_day,
			email_three_day = EXCLUDED.email_three_day,
			email_one_day = EXCLUDED.email_one_day,
			email_reminder_time = EXCLUDED.email_reminder_time,
			sms_enabled = EXCLUDED.sms_enabled,
			sms_phone_number = EXCLUDED.sms_phone_number,
			sms_seven_day = EXCLUDED.sms_seven_day,
			sms_three_day = EXCLUDED.sms_three_day,
			sms_one_day = EXCLUDED.sms_one_day,
			allow_email_sharing = EXCLUDED.allow_email_sharing,
			allow_link_sharing = EXCLUDED.allow_link_sharing,
			default_share_expiry = EXCLUDED.default_share_expiry,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at
	`
	prefs.UpdatedAt = time.Now().UTC()
	if prefs.ID == uuid.Nil {
		prefs.ID = uuid.New()
		prefs.CreatedAt = prefs.UpdatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		prefs.ID,
		prefs.UserID,
		prefs.EmailReminders.Enabled,
		prefs.EmailReminders.ReminderDays.SevenDay,
		prefs.EmailReminders.ReminderDays.ThreeDay,
		prefs.EmailReminders.ReminderDays.OneDay,
		prefs.EmailReminders.ReminderTime,
		prefs.SMSReminders.Enabled,
		prefs.SMSReminders.PhoneNumber,
		prefs.SMSReminders.ReminderDays.SevenDay,
		prefs.SMSReminders.ReminderDays.ThreeDay,
		prefs.SMSReminders.ReminderDays.OneDay,
		prefs.RecordSharing.AllowEmailSharing,
		prefs.RecordSharing.AllowLinkSharing,
		prefs.RecordSharing.DefaultShareExpiry,
		prefs.Timezone,
		prefs.CreatedAt,
		prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}
