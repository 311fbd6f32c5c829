package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/config"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

// SMSResult reports the outcome of an SMS attempt. Success is false without
// an error when the channel is not configured; SMS is optional and its
// absence must never break the reminder flow.
type SMSResult struct {
	Success bool   `json:"success"`
	SID     string `json:"sid,omitempty"`
	Message string `json:"message,omitempty"`
}

// SMSStatus is the masked diagnostic view exposed by the admin API. It only
// indicates presence of credentials, never their values.
type SMSStatus struct {
	Enabled          bool   `json:"enabled"`
	AccountSIDSet    bool   `json:"account_sid_set"`
	AuthTokenSet     bool   `json:"auth_token_set"`
	FromNumberMasked string `json:"from_number,omitempty"`
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) (*SMSResult, error)
	Enabled() bool
	Status() SMSStatus
}

// NewSMSSender selects the real Twilio adapter when credentials are complete
// and the no-op adapter otherwise.
func NewSMSSender(cfg config.SMSConfig, logger zerolog.Logger) SMSSender {
	if !cfg.Configured() {
		logger.Warn().
			Bool("account_sid_set", cfg.AccountSID != "").
			Bool("auth_token_set", cfg.AuthToken != "").
			Bool("from_number_set", cfg.FromNumber != "").
			Msg("twilio credentials incomplete, SMS disabled")
		return &disabledSMS{cfg: cfg}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	logger.Info().Str("from_number", maskNumber(cfg.FromNumber)).Msg("sms sender initialized")
	return &twilioSMS{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "sms_sender").Logger(),
	}
}

type twilioSMS struct {
	cfg    config.SMSConfig
	client *twilio.RestClient
	logger zerolog.Logger
}

func (s *twilioSMS) Enabled() bool { return true }

func (s *twilioSMS) Send(ctx context.Context, to, body string) (*SMSResult, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.cfg.FromNumber)
	params.SetBody(body)

	type sendResult struct {
		msg *twilioapi.ApiV2010Message
		err error
	}
	resCh := make(chan sendResult, 1)
	go func() {
		msg, err := s.client.Api.CreateMessage(params)
		resCh <- sendResult{msg: msg, err: err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, newChannelError(model.ChannelSMS, ErrNetwork, res.err)
		}
		sid := ""
		if res.msg != nil && res.msg.Sid != nil {
			sid = *res.msg.Sid
		}
		s.logger.Info().Str("to", maskNumber(to)).Str("sid", sid).Msg("sms sent")
		return &SMSResult{Success: true, SID: sid}, nil
	case <-time.After(sendTimeout):
		return nil, newChannelError(model.ChannelSMS, ErrNetwork,
			fmt.Errorf("send timed out after %s", sendTimeout))
	case <-ctx.Done():
		return nil, newChannelError(model.ChannelSMS, ErrNetwork, ctx.Err())
	}
}

func (s *twilioSMS) Status() SMSStatus {
	return SMSStatus{
		Enabled:          true,
		AccountSIDSet:    true,
		AuthTokenSet:     true,
		FromNumberMasked: maskNumber(s.cfg.FromNumber),
	}
}

// disabledSMS is the capability's no-op implementation.
type disabledSMS struct {
	cfg config.SMSConfig
}

func (s *disabledSMS) Enabled() bool { return false }

func (s *disabledSMS) Send(_ context.Context, _, _ string) (*SMSResult, error) {
	return &SMSResult{Success: false, Message: "SMS service not available"}, nil
}

func (s *disabledSMS) Status() SMSStatus {
	return SMSStatus{
		Enabled:       false,
		AccountSIDSet: s.cfg.AccountSID != "",
		AuthTokenSet:  s.cfg.AuthToken != "",
	}
}

func maskNumber(n string) string {
	if len(n) <= 4 {
		return "****"
	}
	return "****" + n[len(n)-4:]
}
