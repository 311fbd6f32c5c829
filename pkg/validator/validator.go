package validator

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate    = validator.New()
	hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// ReminderTime checks the advisory HH:MM preferred send time.
func ReminderTime(v string) error {
	if !hhmmPattern.MatchString(v) {
		return fmt.Errorf("time must be in HH:MM format")
	}
	return nil
}

// Timezone checks the preference timezone against the tz database.
func Timezone(v string) error {
	if _, err := time.LoadLocation(v); err != nil {
		return fmt.Errorf("unknown timezone %q", v)
	}
	return nil
}

// PhoneNumber checks an SMS destination in E.164 form.
func PhoneNumber(v string) error {
	if err := validate.Var(v, "e164"); err != nil {
		return fmt.Errorf("phone number must be in E.164 format")
	}
	return nil
}
