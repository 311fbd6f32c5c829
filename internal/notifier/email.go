package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/config"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
)

const sendTimeout = 30 * time.Second

// EmailMessage is one outbound email plus the metadata recorded in the
// delivery log.
type EmailMessage struct {
	To            string
	Subject       string
	Body          string
	Type          model.MessageType
	UserID        uuid.UUID
	AppointmentID *uuid.UUID
	// UnsubscribeToken, when set, is appended to the footer link.
	UnsubscribeToken string
}

type EmailSender interface {
	// Send delivers the message and returns the provider message id. A
	// delivery log entry is written before the attempt and finalized after,
	// so crashes mid-send still leave a trace.
	Send(ctx context.Context, msg *EmailMessage) (string, error)
	Configured() bool
}

type smtpSender struct {
	cfg     config.EmailConfig
	dialer  *gomail.Dialer
	logRepo repository.DeliveryLogRepository
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewEmailSender(cfg config.EmailConfig, logRepo repository.DeliveryLogRepository, logger zerolog.Logger) EmailSender {
	return &smtpSender{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		logRepo: logRepo,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger.With().Str("component", "email_sender").Logger(),
	}
}

func (s *smtpSender) Configured() bool {
	return s.cfg.Configured()
}

func (s *smtpSender) Send(ctx context.Context, msg *EmailMessage) (string, error) {
	entry := &model.DeliveryLog{
		ID:            uuid.New(),
		UserID:        msg.UserID,
		AppointmentID: msg.AppointmentID,
		Recipient:     msg.To,
		Subject:       msg.Subject,
		Type:          msg.Type,
		Channel:       model.ChannelEmail,
		Status:        model.DeliveryStatusSending,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		// The log is for observability; a log write failure must not block
		// the actual send.
		s.logger.Warn().Err(err).Str("recipient", msg.To).Msg("failed to create delivery log entry")
	}

	messageID, err := s.send(ctx, msg)
	if err != nil {
		if logErr := s.logRepo.UpdateStatus(ctx, entry.ID, model.DeliveryStatusFailed, "", err.Error()); logErr != nil {
			s.logger.Warn().Err(logErr).Msg("failed to finalize delivery log entry")
		}
		return "", err
	}

	if logErr := s.logRepo.UpdateStatus(ctx, entry.ID, model.DeliveryStatusSent, messageID, ""); logErr != nil {
		s.logger.Warn().Err(logErr).Msg("failed to finalize delivery log entry")
	}
	return messageID, nil
}

func (s *smtpSender) send(ctx context.Context, msg *EmailMessage) (string, error) {
	if !s.cfg.Configured() {
		return "", newChannelError(model.ChannelEmail, ErrConfigMissing,
			fmt.Errorf("email credentials not configured"))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", newChannelError(model.ChannelEmail, ErrNetwork, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.User, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	messageID := fmt.Sprintf("<%s@medvault>", uuid.New().String())
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", msg.Body)
	m.AddAlternative("text/html", renderHTML(msg))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return "", classifySMTPError(err)
		}
		return messageID, nil
	case <-time.After(sendTimeout):
		return "", newChannelError(model.ChannelEmail, ErrNetwork,
			fmt.Errorf("send timed out after %s", sendTimeout))
	case <-ctx.Done():
		return "", newChannelError(model.ChannelEmail, ErrNetwork, ctx.Err())
	}
}

func classifySMTPError(err error) *ChannelError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "535") ||
		strings.Contains(msg, "auth") ||
		strings.Contains(msg, "username and password not accepted"):
		return newChannelError(model.ChannelEmail, ErrAuthentication, err)
	default:
		return newChannelError(model.ChannelEmail, ErrNetwork, err)
	}
}

// renderHTML wraps the plain-text body in the standard branded template.
func renderHTML(msg *EmailMessage) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa;">`)
	b.WriteString(`<div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">`)
	b.WriteString(`<h1 style="color: white; margin: 0; font-size: 24px;">MedVault Health</h1></div>`)
	b.WriteString(`<div style="background: white; padding: 30px; border-radius: 0 0 10px 10px;">`)
	b.WriteString(fmt.Sprintf(`<h2 style="color: #2c3e50; margin-top: 0;">%s</h2>`, htmlEscape(msg.Subject)))
	b.WriteString(fmt.Sprintf(`<div style="line-height: 1.6; color: #34495e; white-space: pre-line;">%s</div>`, htmlEscape(msg.Body)))
	b.WriteString(`<div style="margin-top: 30px; padding: 20px; background: #f8f9fa; border-radius: 8px; border-left: 4px solid #667eea;">`)
	b.WriteString(`<p style="margin: 0; font-size: 14px; color: #7f8c8d;">This is an automated reminder from MedVault Health. Please do not reply to this email.</p>`)
	if msg.UnsubscribeToken != "" {
		b.WriteString(fmt.Sprintf(`<p style="margin: 10px 0 0; font-size: 12px;"><a href="https://medvault.health/unsubscribe?token=%s">Manage notification preferences</a></p>`, msg.UnsubscribeToken))
	}
	b.WriteString(`</div></div>`)
	b.WriteString(fmt.Sprintf(`<div style="text-align: center; margin-top: 20px; color: #7f8c8d; font-size: 12px;">&copy; %d MedVault Health. All rights reserved.</div>`, time.Now().Year()))
	b.WriteString(`</div>`)
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
