package notifier

import (
	"errors"
	"fmt"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
)

// ErrorKind classifies why a channel send failed.
type ErrorKind string

const (
	ErrAuthentication ErrorKind = "authentication_failure"
	ErrNetwork        ErrorKind = "network_failure"
	ErrConfigMissing  ErrorKind = "configuration_missing"
)

// ChannelError carries the classified cause of a provider failure.
type ChannelError struct {
	Kind    ErrorKind
	Channel model.DeliveryChannel
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Channel, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Channel, e.Kind)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

func newChannelError(channel model.DeliveryChannel, kind ErrorKind, err error) *ChannelError {
	return &ChannelError{Kind: kind, Channel: channel, Err: err}
}

// KindOf extracts the classified kind from an error chain, defaulting to
// network failure for anything unclassified.
func KindOf(err error) ErrorKind {
	var cerr *ChannelError
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ErrNetwork
}
