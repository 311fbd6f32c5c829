package notifier

import (
	"fmt"
	"time"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

const smsTimeFormat = "Jan 2, 3:04 PM"

// FormatAppointmentSMS builds the fixed short-form message for a reminder
// class. SMS bodies stay under one segment where possible, so these are
// deliberately terse.
func FormatAppointmentSMS(apt *model.Appointment, class model.ReminderClass, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	when := apt.Date.In(loc).Format(smsTimeFormat)

	switch class {
	case model.ReminderOne:
		return fmt.Sprintf("MedVault: Your appointment with Dr. %s is TOMORROW at %s. Please arrive 15 min early.", apt.Doctor, when)
	case model.ReminderThree:
		return fmt.Sprintf("MedVault: Reminder - Your appointment with Dr. %s is in 3 days (%s). Prepare your questions!", apt.Doctor, when)
	case model.ReminderSeven:
		return fmt.Sprintf("MedVault: You have an appointment with Dr. %s next week on %s. Mark your calendar!", apt.Doctor, when)
	default:
		return fmt.Sprintf("MedVault: Appointment reminder - Dr. %s on %s", apt.Doctor, when)
	}
}
