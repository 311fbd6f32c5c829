package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

func TestWindowForClass(t *testing.T) {
	// Mid-morning, so the 1-day calendar bucket dominates the urgent window.
	now := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		now   time.Time
		class model.ReminderClass
		from  time.Time
		to    time.Time
	}{
		{
			name:  "seven day bucket",
			now:   now,
			class: model.ReminderSeven,
			from:  time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
			to:    time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "three day bucket",
			now:   now,
			class: model.ReminderThree,
			from:  time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
			to:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "one day starts at now and covers tomorrow",
			now:   now,
			class: model.ReminderOne,
			from:  now,
			to:    time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "one day late at night extends past the bucket",
			now:   time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
			class: model.ReminderOne,
			from:  time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
			to:    time.Date(2026, 3, 12, 0, 30, 0, 0, time.UTC),
		},
		{
			name:  "non-utc instant is normalized",
			now:   time.Date(2026, 3, 10, 15, 30, 0, 0, time.FixedZone("EST", -5*3600)),
			class: model.ReminderThree,
			from:  time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
			to:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := windowForClass(tt.now, tt.class)
			assert.True(t, from.Equal(tt.from), "from = %s, want %s", from, tt.from)
			assert.True(t, to.Equal(tt.to), "to = %s, want %s", to, tt.to)
		})
	}
}

func TestEligibleForClassRejectsNone(t *testing.T) {
	engine := NewEngine(newFakeAppointmentRepo(), zerolog.Nop())

	_, err := engine.EligibleForClass(context.Background(), time.Now(), model.ReminderNone)
	require.Error(t, err)
}

func TestEligibleForClassQueryError(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.findErr = fmt.Errorf("connection refused")
	engine := NewEngine(repo, zerolog.Nop())

	_, err := engine.EligibleForClass(context.Background(), time.Now(), model.ReminderSeven)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7day")
}

func TestEligibleForClassPassesWindowAndMarker(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	repo := newFakeAppointmentRepo()
	engine := NewEngine(repo, zerolog.Nop())

	_, err := engine.EligibleForClass(context.Background(), now, model.ReminderSeven)
	require.NoError(t, err)

	require.Len(t, repo.windowCalls, 1)
	call := repo.windowCalls[0]
	assert.Equal(t, model.ReminderSeven, call.notMarked)
	assert.True(t, call.from.Equal(time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)))
	assert.True(t, call.to.Equal(time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)))
}

func TestEligibleForClassSortsByDateThenID(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	late := &model.Appointment{ID: uuid.New(), Date: time.Date(2026, 3, 11, 16, 0, 0, 0, time.UTC)}
	early := &model.Appointment{ID: uuid.New(), Date: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)}

	repo := newFakeAppointmentRepo()
	repo.findResult = []*model.Appointment{late, early}
	engine := NewEngine(repo, zerolog.Nop())

	batch, err := engine.EligibleForClass(context.Background(), now, model.ReminderOne)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, early.ID, batch[0].ID)
	assert.Equal(t, late.ID, batch[1].ID)
}

func TestEligibleForClassMarkerExcluded(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)

	fresh := &model.Appointment{ID: uuid.New(), Date: tomorrow, RemindersSent: model.ReminderThree}
	done := &model.Appointment{ID: uuid.New(), Date: tomorrow, RemindersSent: model.ReminderOne}
	repo := newFakeAppointmentRepo(fresh, done)
	engine := NewEngine(repo, zerolog.Nop())

	batch, err := engine.EligibleForClass(context.Background(), now, model.ReminderOne)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, fresh.ID, batch[0].ID)
}

func TestEligibleForClassShortNoticeBooking(t *testing.T) {
	// Booked 20 hours out, after today's calendar-day pass would have run.
	// The rolling window still picks it up on the next tick.
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	apt := &model.Appointment{ID: uuid.New(), Date: now.Add(20 * time.Hour)}
	repo := newFakeAppointmentRepo(apt)
	engine := NewEngine(repo, zerolog.Nop())

	batch, err := engine.EligibleForClass(context.Background(), now, model.ReminderOne)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, apt.ID, batch[0].ID)
}

func TestEligibleForClassPastAppointmentExcluded(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	apt := &model.Appointment{ID: uuid.New(), Date: now.Add(-2 * time.Hour)}
	repo := newFakeAppointmentRepo(apt)
	engine := NewEngine(repo, zerolog.Nop())

	batch, err := engine.EligibleForClass(context.Background(), now, model.ReminderOne)
	require.NoError(t, err)
	assert.Empty(t, batch)
}
