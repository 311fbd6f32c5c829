package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/notifier"
)

type windowCall struct {
	from, to  time.Time
	notMarked model.ReminderClass
}

type markerCall struct {
	id    uuid.UUID
	class model.ReminderClass
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	windowCalls  []windowCall
	markerCalls  []markerCall
	findErr      error
	markerErr    error
	findResult   []*model.Appointment // overrides filtering when set
}

func newFakeAppointmentRepo(apts ...*model.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	for _, apt := range apts {
		if apt.ID == uuid.Nil {
			apt.ID = uuid.New()
		}
		r.appointments[apt.ID] = apt
	}
	return r
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	cp := *apt
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.UserID == userID {
			cp := *apt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindInWindow(_ context.Context, from, to time.Time, notMarked model.ReminderClass) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windowCalls = append(r.windowCalls, windowCall{from: from, to: to, notMarked: notMarked})
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.findResult != nil {
		return r.findResult, nil
	}
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.RemindersSent == notMarked {
			continue
		}
		if !apt.Date.Before(from) && apt.Date.Before(to) {
			cp := *apt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateReminderMarker(_ context.Context, id uuid.UUID, class model.ReminderClass) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markerCalls = append(r.markerCalls, markerCall{id: id, class: class})
	if r.markerErr != nil {
		return false, r.markerErr
	}
	apt, ok := r.appointments[id]
	if !ok || apt.RemindersSent == class {
		return false, nil
	}
	apt.RemindersSent = class
	return true, nil
}

func (r *fakeAppointmentRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, apt := range r.appointments {
		if apt.Date.Before(cutoff) {
			delete(r.appointments, id)
			n++
		}
	}
	return n, nil
}

type statusUpdate struct {
	id        uuid.UUID
	status    model.DeliveryStatus
	messageID string
	sendErr   string
}

type fakeDeliveryLogRepo struct {
	mu      sync.Mutex
	entries []*model.DeliveryLog
	updates []statusUpdate
}

func (r *fakeDeliveryLogRepo) Create(_ context.Context, entry *model.DeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeDeliveryLogRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.DeliveryStatus, messageID, sendErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, statusUpdate{id: id, status: status, messageID: messageID, sendErr: sendErr})
	return nil
}

func (r *fakeDeliveryLogRepo) ListRecent(_ context.Context, limit, offset int) ([]*model.DeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.entries) {
		end = len(r.entries)
	}
	return r.entries[offset:end], nil
}

func (r *fakeDeliveryLogRepo) Stats(context.Context) (*model.DeliveryStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &model.DeliveryStats{TotalCount: int64(len(r.entries))}, nil
}

func (r *fakeDeliveryLogRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakePreferenceRepo struct {
	mu      sync.Mutex
	prefs   map[uuid.UUID]*model.NotificationPreferences
	findErr error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{prefs: make(map[uuid.UUID]*model.NotificationPreferences)}
}

func (r *fakePreferenceRepo) FindByUser(_ context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakePreferenceRepo) Upsert(_ context.Context, prefs *model.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *prefs
	r.prefs[prefs.UserID] = &cp
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type fakeEmailSender struct {
	mu         sync.Mutex
	sent       []*notifier.EmailMessage
	failErr    error
	failFor    map[string]error // per-recipient failures
	configured bool
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{configured: true}
}

func (s *fakeEmailSender) Send(_ context.Context, msg *notifier.EmailMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return "", s.failErr
	}
	if err, ok := s.failFor[msg.To]; ok {
		return "", err
	}
	cp := *msg
	s.sent = append(s.sent, &cp)
	return fmt.Sprintf("<%d@medvault>", len(s.sent)), nil
}

func (s *fakeEmailSender) Configured() bool { return s.configured }

func (s *fakeEmailSender) sentTo(addr string) []*notifier.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*notifier.EmailMessage
	for _, m := range s.sent {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}

type fakeSMSSender struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []string
}

func (s *fakeSMSSender) Send(_ context.Context, to, body string) (*notifier.SMSResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return &notifier.SMSResult{Success: false, Message: "SMS service not available"}, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, to+": "+body)
	return &notifier.SMSResult{Success: true, SID: fmt.Sprintf("SM%04d", len(s.sent))}, nil
}

func (s *fakeSMSSender) Enabled() bool { return s.enabled }

func (s *fakeSMSSender) Status() notifier.SMSStatus {
	return notifier.SMSStatus{Enabled: s.enabled}
}
