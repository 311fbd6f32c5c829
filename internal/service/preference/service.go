package preference

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/validator"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Decision is the resolver's answer for one user and reminder class.
type Decision struct {
	SendEmail    bool
	EmailAddress string
	SendSMS      bool
	PhoneNumber  string
	Timezone     *time.Location
}

type Service struct {
	repo     repository.PreferenceRepository
	userRepo repository.UserRepository
	cache    *gocache.Cache
	logger   zerolog.Logger
}

func NewService(repo repository.PreferenceRepository, userRepo repository.UserRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		cache:    gocache.New(cacheTTL, cacheCleanup),
		logger:   logger.With().Str("component", "preference_resolver").Logger(),
	}
}

// Resolve decides which channels fire for a user and reminder class. A
// missing user record means "do not send"; a missing preference record means
// the documented defaults. Lookup failures degrade to defaults rather than
// blocking the reminder.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, class model.ReminderClass) (*Decision, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.logger.Warn().Str("user_id", userID.String()).Msg("user not found, skipping reminder")
		return &Decision{Timezone: time.UTC}, nil
	}

	prefs, err := s.getPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("preference lookup failed, using defaults")
		prefs = model.DefaultPreferences(userID)
	}

	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		loc = time.UTC
	}

	d := &Decision{Timezone: loc}
	if prefs.EmailReminders.Enabled && prefs.EmailReminders.ReminderDays.Enabled(class) {
		d.SendEmail = true
		d.EmailAddress = user.Email
	}
	if prefs.SMSReminders.Enabled && prefs.SMSReminders.ReminderDays.Enabled(class) && prefs.SMSReminders.PhoneNumber != "" {
		d.SendSMS = true
		d.PhoneNumber = prefs.SMSReminders.PhoneNumber
	}
	return d, nil
}

// ResolveContact returns the user's email address and timezone for
// transactional booking notices. These are gated on the channel-wide email
// toggle only; the per-window reminder toggles never suppress lifecycle mail.
func (s *Service) ResolveContact(ctx context.Context, userID uuid.UUID) (*Decision, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return &Decision{Timezone: time.UTC}, nil
	}

	prefs, err := s.getPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("preference lookup failed, using defaults")
		prefs = model.DefaultPreferences(userID)
	}

	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		loc = time.UTC
	}

	d := &Decision{Timezone: loc}
	if prefs.EmailReminders.Enabled {
		d.SendEmail = true
		d.EmailAddress = user.Email
	}
	return d, nil
}

// GetForUser returns the user's preferences, creating the defaults on first
// access.
func (s *Service) GetForUser(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	prefs, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}
	if prefs == nil {
		prefs = model.DefaultPreferences(userID)
		if err := s.repo.Upsert(ctx, prefs); err != nil {
			return nil, fmt.Errorf("failed to create default preferences: %w", err)
		}
	}
	s.cache.Set(userID.String(), prefs, cacheTTL)
	return prefs, nil
}

// DisableEmailReminders turns the email channel off entirely. It backs the
// one-click unsubscribe link in reminder email footers.
func (s *Service) DisableEmailReminders(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	prefs, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs.EmailReminders.Enabled = false
	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to disable email reminders: %w", err)
	}
	s.cache.Delete(userID.String())
	return prefs, nil
}

// Update applies a partial preference update and invalidates the cache.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req *model.UpdatePreferencesRequest) (*model.NotificationPreferences, error) {
	prefs, err := s.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EmailReminders != nil {
		if req.EmailReminders.ReminderTime != "" {
			if err := validator.ReminderTime(req.EmailReminders.ReminderTime); err != nil {
				return nil, err
			}
		}
		prefs.EmailReminders = *req.EmailReminders
	}
	if req.SMSReminders != nil {
		if req.SMSReminders.Enabled && req.SMSReminders.PhoneNumber != "" {
			if err := validator.PhoneNumber(req.SMSReminders.PhoneNumber); err != nil {
				return nil, err
			}
		}
		prefs.SMSReminders = *req.SMSReminders
	}
	if req.RecordSharing != nil {
		prefs.RecordSharing = *req.RecordSharing
	}
	if req.Timezone != nil {
		if err := validator.Timezone(*req.Timezone); err != nil {
			return nil, err
		}
		prefs.Timezone = *req.Timezone
	}

	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	s.cache.Delete(userID.String())
	return prefs, nil
}

func (s *Service) getPreferences(ctx context.Context, userID uuid.UUID) (*model.NotificationPreferences, error) {
	if cached, ok := s.cache.Get(userID.String()); ok {
		if prefs, ok := cached.(*model.NotificationPreferences); ok {
			return prefs, nil
		}
	}

	prefs, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = model.DefaultPreferences(userID)
	}
	s.cache.Set(userID.String(), prefs, cacheTTL)
	return prefs, nil
}
