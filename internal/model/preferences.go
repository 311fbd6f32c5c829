package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderDays holds the per-window toggles for one channel.
type ReminderDays struct {
	SevenDay bool `db:"seven_day" json:"sevenDay"`
	ThreeDay bool `db:"three_day" json:"threeDay"`
	OneDay   bool `db:"one_day" json:"oneDay"`
}

// Enabled reports whether the toggle matching the given class is on.
func (d ReminderDays) Enabled(class ReminderClass) bool {
	switch class {
	case ReminderSeven:
		return d.SevenDay
	case ReminderThree:
		return d.ThreeDay
	case ReminderOne:
		return d.OneDay
	}
	return false
}

type EmailReminderPrefs struct {
	Enabled      bool         `json:"enabled"`
	ReminderDays ReminderDays `json:"reminderDays"`
	// ReminderTime is advisory only; the scheduler runs hourly and does not
	// guarantee exact-time delivery.
	ReminderTime string `json:"reminderTime"`
}

type SMSReminderPrefs struct {
	Enabled      bool         `json:"enabled"`
	PhoneNumber  string       `json:"phoneNumber,omitempty"`
	ReminderDays ReminderDays `json:"reminderDays"`
}

type RecordSharingPrefs struct {
	AllowEmailSharing  bool `json:"allowEmailSharing"`
	AllowLinkSharing   bool `json:"allowLinkSharing"`
	DefaultShareExpiry int  `json:"defaultShareExpiry"`
}

// NotificationPreferences is one-to-one with a user and created lazily on
// first access with the defaults below.
type NotificationPreferences struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	EmailReminders EmailReminderPrefs `json:"emailReminders"`
	SMSReminders   SMSReminderPrefs   `json:"smsReminders"`
	RecordSharing  RecordSharingPrefs `json:"recordSharing"`
	Timezone       string             `json:"timezone"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// DefaultPreferences returns the documented defaults: email on for all
// windows, SMS off with only the closer windows pre-enabled for when the
// user turns it on.
func DefaultPreferences(userID uuid.UUID) *NotificationPreferences {
	now := time.Now().UTC()
	return &NotificationPreferences{
		ID:     uuid.New(),
		UserID: userID,
		EmailReminders: EmailReminderPrefs{
			Enabled:      true,
			ReminderDays: ReminderDays{SevenDay: true, ThreeDay: true, OneDay: true},
			ReminderTime: "09:00",
		},
		SMSReminders: SMSReminderPrefs{
			Enabled:      false,
			ReminderDays: ReminderDays{SevenDay: false, ThreeDay: true, OneDay: true},
		},
		RecordSharing: RecordSharingPrefs{
			AllowEmailSharing:  true,
			AllowLinkSharing:   true,
			DefaultShareExpiry: 7,
		},
		Timezone:  "UTC",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type UpdatePreferencesRequest struct {
	EmailReminders *EmailReminderPrefs `json:"emailReminders"`
	SMSReminders   *SMSReminderPrefs   `json:"smsReminders"`
	RecordSharing  *RecordSharingPrefs `json:"recordSharing"`
	Timezone       *string             `json:"timezone"`
}
