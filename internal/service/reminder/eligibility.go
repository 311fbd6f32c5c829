package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
)

// urgentHorizon is the rolling window for the 1-day pass. Appointments
// booked or rescheduled less than a day out would miss their calendar-day
// bucket entirely, so anything within the next 25 hours qualifies.
const urgentHorizon = 25 * time.Hour

// Engine computes which appointments qualify for a reminder class at a given
// instant. Eligibility is recomputed from the appointment date plus the
// reminder marker on every tick; there is no materialized schedule.
type Engine struct {
	repo   repository.AppointmentRepository
	logger zerolog.Logger
}

func NewEngine(repo repository.AppointmentRepository, logger zerolog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		logger: logger.With().Str("component", "eligibility_engine").Logger(),
	}
}

// EligibleForClass returns the appointments falling in the class's window
// whose marker is not already at that class, ordered by date then id.
//
// For 7day and 3day the window is the whole calendar day exactly N days
// ahead. For 1day the calendar-day bucket and the 25-hour urgent pass are
// folded into one range checked against the single marker, so the two
// passes can never both fire for the same appointment.
func (e *Engine) EligibleForClass(ctx context.Context, now time.Time, class model.ReminderClass) ([]*model.Appointment, error) {
	if class == model.ReminderNone {
		return nil, fmt.Errorf("cannot compute eligibility for class %q", class)
	}

	from, to := windowForClass(now, class)
	appointments, err := e.repo.FindInWindow(ctx, from, to, class)
	if err != nil {
		return nil, fmt.Errorf("eligibility query for class %s: %w", class, err)
	}

	// The store orders by date then id already; re-sort to keep the
	// guarantee independent of the backing implementation.
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].Date.Equal(appointments[j].Date) {
			return appointments[i].ID.String() < appointments[j].ID.String()
		}
		return appointments[i].Date.Before(appointments[j].Date)
	})

	e.logger.Debug().
		Str("class", string(class)).
		Time("from", from).
		Time("to", to).
		Int("eligible", len(appointments)).
		Msg("eligibility window computed")
	return appointments, nil
}

// windowForClass returns the half-open [from, to) range for a class.
func windowForClass(now time.Time, class model.ReminderClass) (time.Time, time.Time) {
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if class == model.ReminderOne {
		// Union of the next-day calendar bucket and the urgent rolling
		// window. The bucket always starts inside the urgent window, so the
		// union is one contiguous range starting at "now" (past
		// appointments are never eligible).
		bucketEnd := startOfDay.AddDate(0, 0, 2)
		urgentEnd := now.Add(urgentHorizon)
		if bucketEnd.After(urgentEnd) {
			return now, bucketEnd
		}
		return now, urgentEnd
	}

	from := startOfDay.AddDate(0, 0, class.DaysAhead())
	return from, from.AddDate(0, 0, 1)
}
