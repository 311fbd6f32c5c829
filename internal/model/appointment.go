package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderClass names a pre-appointment notice tier by how far ahead it fires.
type ReminderClass string

const (
	ReminderNone  ReminderClass = "none"
	ReminderSeven ReminderClass = "7day"
	ReminderThree ReminderClass = "3day"
	ReminderOne   ReminderClass = "1day"
)

// ReminderClasses lists the dispatchable classes in processing order. The
// scheduler walks them furthest-out first so an appointment whose marker was
// reset by an edit is caught in ascending urgency rather than skipped.
var ReminderClasses = []ReminderClass{ReminderSeven, ReminderThree, ReminderOne}

// DaysAhead returns how many calendar days before the appointment the class fires.
func (c ReminderClass) DaysAhead() int {
	switch c {
	case ReminderSeven:
		return 7
	case ReminderThree:
		return 3
	case ReminderOne:
		return 1
	default:
		return 0
	}
}

func (c ReminderClass) Valid() bool {
	switch c {
	case ReminderNone, ReminderSeven, ReminderThree, ReminderOne:
		return true
	}
	return false
}

type Appointment struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	Doctor        string        `db:"doctor" json:"doctor"`
	Date          time.Time     `db:"date" json:"date"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	RemindersSent ReminderClass `db:"reminders_sent" json:"reminders_sent"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

type CreateAppointmentRequest struct {
	Doctor string    `json:"doctor" binding:"required,max=200"`
	Date   time.Time `json:"date" binding:"required"`
	Notes  string    `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Doctor *string    `json:"doctor"`
	Date   *time.Time `json:"date"`
	Notes  *string    `json:"notes"`
}
