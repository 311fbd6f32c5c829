package preference

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

type fakePrefRepo struct {
	prefs   map[uuid.UUID]*model.NotificationPreferences
	findErr error
	upserts int
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{prefs: make(map[uuid.UUID]*model.NotificationPreferences)}
}

func (r *fakePrefRepo) FindByUser(_ context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.prefs[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePrefRepo) Upsert(_ context.Context, prefs *model.NotificationPreferences) error {
	r.upserts++
	cp := *prefs
	r.prefs[prefs.UserID] = &cp
	return nil
}

type fakeUserRepo struct {
	users  map[uuid.UUID]*model.User
	getErr error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func TestResolveDefaultsEmailAllClasses(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	svc := NewService(newFakePrefRepo(), newFakeUserRepo(user), zerolog.Nop())

	for _, class := range model.ReminderClasses {
		d, err := svc.Resolve(context.Background(), user.ID, class)
		require.NoError(t, err)
		assert.True(t, d.SendEmail, "class %s", class)
		assert.Equal(t, "pat@example.com", d.EmailAddress)
		assert.False(t, d.SendSMS, "sms defaults off")
	}
}

func TestResolveMissingUserSendsNothing(t *testing.T) {
	svc := NewService(newFakePrefRepo(), newFakeUserRepo(), zerolog.Nop())

	d, err := svc.Resolve(context.Background(), uuid.New(), model.ReminderOne)
	require.NoError(t, err)
	assert.False(t, d.SendEmail)
	assert.False(t, d.SendSMS)
}

func TestResolveUserLookupError(t *testing.T) {
	users := newFakeUserRepo()
	users.getErr = fmt.Errorf("connection refused")
	svc := NewService(newFakePrefRepo(), users, zerolog.Nop())

	_, err := svc.Resolve(context.Background(), uuid.New(), model.ReminderOne)
	require.Error(t, err)
}

func TestResolveDisabledEmailBlocksAllClasses(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.EmailReminders.Enabled = false
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	for _, class := range model.ReminderClasses {
		d, err := svc.Resolve(context.Background(), user.ID, class)
		require.NoError(t, err)
		assert.False(t, d.SendEmail, "class %s", class)
	}
}

func TestResolvePerWindowToggle(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.EmailReminders.ReminderDays = model.ReminderDays{OneDay: true}
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderSeven)
	require.NoError(t, err)
	assert.False(t, d.SendEmail)

	d, err = svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	assert.True(t, d.SendEmail)
}

func TestResolveSMSNeedsPhoneNumber(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.SMSReminders.Enabled = true
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	assert.False(t, d.SendSMS)
}

func TestResolveSMSEnabledWithPhone(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.SMSReminders.Enabled = true
	prefs.SMSReminders.PhoneNumber = "+15551234567"
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	// Defaults pre-enable only the closer windows for SMS.
	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderSeven)
	require.NoError(t, err)
	assert.False(t, d.SendSMS)

	d, err = svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	assert.True(t, d.SendSMS)
	assert.Equal(t, "+15551234567", d.PhoneNumber)
}

func TestResolveLookupFailureFallsBackToDefaults(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	repo.findErr = fmt.Errorf("timeout")
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	assert.True(t, d.SendEmail)
}

func TestResolveTimezone(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.Timezone = "America/New_York"
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	require.NotNil(t, d.Timezone)
	assert.Equal(t, "America/New_York", d.Timezone.String())
}

func TestResolveContactIgnoresWindowToggles(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.EmailReminders.ReminderDays = model.ReminderDays{}
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.ResolveContact(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, d.SendEmail)
	assert.Equal(t, "pat@example.com", d.EmailAddress)
}

func TestResolveContactHonoursChannelOptOut(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	prefs := model.DefaultPreferences(user.ID)
	prefs.EmailReminders.Enabled = false
	repo.prefs[user.ID] = prefs
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.ResolveContact(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, d.SendEmail)
	assert.Empty(t, d.EmailAddress)
}

func TestResolveContactMissingUser(t *testing.T) {
	svc := NewService(newFakePrefRepo(), newFakeUserRepo(), zerolog.Nop())

	d, err := svc.ResolveContact(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, d.SendEmail)
}

func TestGetForUserCreatesDefaultsLazily(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	prefs, err := svc.GetForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, prefs.EmailReminders.Enabled)
	assert.Equal(t, "09:00", prefs.EmailReminders.ReminderTime)
	assert.Equal(t, 1, repo.upserts)

	// Second read returns the stored record without another create.
	_, err = svc.GetForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)
}

func TestDisableEmailRemindersInvalidatesResolve(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	// Prime the resolver cache with the defaults.
	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	require.True(t, d.SendEmail)

	prefs, err := svc.DisableEmailReminders(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, prefs.EmailReminders.Enabled)

	d, err = svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	assert.False(t, d.SendEmail)
}

func TestUpdateValidation(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	badTZ := "Mars/Olympus"

	tests := []struct {
		name string
		req  *model.UpdatePreferencesRequest
	}{
		{
			name: "bad reminder time",
			req: &model.UpdatePreferencesRequest{
				EmailReminders: &model.EmailReminderPrefs{Enabled: true, ReminderTime: "9:00"},
			},
		},
		{
			name: "bad phone number",
			req: &model.UpdatePreferencesRequest{
				SMSReminders: &model.SMSReminderPrefs{Enabled: true, PhoneNumber: "555-1234"},
			},
		},
		{
			name: "bad timezone",
			req:  &model.UpdatePreferencesRequest{Timezone: &badTZ},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakePrefRepo(), newFakeUserRepo(user), zerolog.Nop())
			_, err := svc.Update(context.Background(), user.ID, tt.req)
			require.Error(t, err)
		})
	}
}

func TestUpdatePartial(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	tz := "Europe/Berlin"
	prefs, err := svc.Update(context.Background(), user.ID, &model.UpdatePreferencesRequest{Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", prefs.Timezone)
	assert.True(t, prefs.EmailReminders.Enabled, "untouched sections keep their values")
}

func TestUpdateInvalidatesResolveCache(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	repo := newFakePrefRepo()
	svc := NewService(repo, newFakeUserRepo(user), zerolog.Nop())

	d, err := svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	require.True(t, d.SendEmail)

	_, err = svc.Update(context.Background(), user.ID, &model.UpdatePreferencesRequest{
		EmailReminders: &model.EmailReminderPrefs{Enabled: false},
	})
	require.NoError(t, err)

	d, err = svc.Resolve(context.Background(), user.ID, model.ReminderOne)
	require.NoError(t, err)
	assert.False(t, d.SendEmail)
}
