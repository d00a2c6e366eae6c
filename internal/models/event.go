package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents what prompted a notification
type Channel string

const (
	ChannelBirthday  Channel = "Birthday"
	ChannelExpiry    Channel = "Expiry"
	ChannelWhatsApp  Channel = "WhatsApp"
	ChannelScheduled Channel = "Scheduled"
	ChannelBulk      Channel = "Bulk"
)

// Status represents the recorded outcome of a notification attempt.
// Besides the fixed values below, arbitrary error text is a valid status.
type Status string

const (
	StatusSent          Status = "Sent"
	StatusFailed        Status = "Failed"
	StatusRedirected    Status = "Redirected"
	StatusPending       Status = "Pending"
	StatusLinkGenerated Status = "Link Generated"
)

// NotificationEvent is one logged attempt to contact a recipient.
// Events are append-only within a session and never mutated or deleted.
type NotificationEvent struct {
	ID      uuid.UUID `json:"id"`
	Date    time.Time `json:"date"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Channel Channel   `json:"type"`
	Status  Status    `json:"status"`
}
