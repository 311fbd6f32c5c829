package model

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusSending DeliveryStatus = "sending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

type DeliveryChannel string

const (
	ChannelEmail DeliveryChannel = "email"
	ChannelSMS   DeliveryChannel = "sms"
)

// MessageType classifies what a delivery log entry was for. Reminder classes
// reuse their own names so the audit trail reads the same as the marker.
type MessageType string

const (
	MessageTypeConfirmation MessageType = "confirmation"
	MessageTypeUpdate       MessageType = "update"
	MessageTypeCancellation MessageType = "cancellation"
	MessageTypeSevenDay     MessageType = "7day"
	MessageTypeThreeDay     MessageType = "3day"
	MessageTypeOneDay       MessageType = "1day"
	MessageTypeAlert        MessageType = "alert"
	MessageTypeTest         MessageType = "test"
)

// MessageTypeForClass maps a reminder class to its delivery log type.
func MessageTypeForClass(class ReminderClass) MessageType {
	switch class {
	case ReminderSeven:
		return MessageTypeSevenDay
	case ReminderThree:
		return MessageTypeThreeDay
	default:
		return MessageTypeOneDay
	}
}

// DeliveryLog is an append-only record of one notification attempt. An entry
// is created with status "sending" before the provider call and finalized to
// "sent" or "failed" afterwards, so every attempt is observable even if the
// process dies mid-send.
type DeliveryLog struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	Recipient     string          `db:"recipient" json:"recipient"`
	Subject       string          `db:"subject" json:"subject"`
	Type          MessageType     `db:"type" json:"type"`
	Channel       DeliveryChannel `db:"channel" json:"channel"`
	Status        DeliveryStatus  `db:"status" json:"status"`
	MessageID     string          `db:"message_id" json:"message_id,omitempty"`
	Error         string          `db:"error" json:"error,omitempty"`
	SentAt        time.Time       `db:"sent_at" json:"sent_at"`
	DeliveredAt   *time.Time      `db:"delivered_at" json:"delivered_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// DeliveryStats aggregates log counts for the admin dashboard.
type DeliveryStats struct {
	Sent       int64 `db:"sent" json:"sent"`
	Failed     int64 `db:"failed" json:"failed"`
	SentToday  int64 `db:"sent_today" json:"sent_today"`
	TotalCount int64 `db:"total" json:"total"`
}
