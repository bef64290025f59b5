package entity

import (
	"time"

	"github.com/fanoutlabs/herald/internal/pkg/valueobject"
)

// Payload is one logical notification request before fan-out to recipients.
//
// The ID correlates every delivery log entry produced from this payload.
type Payload struct {
	ID           string
	Priority     Priority
	Subject      string
	Body         string
	TemplateData map[string]string
	Recipients   []Recipient
	Metadata     valueobject.JSONMap
	GroupID      string
}

// Recipient is one (address, channel) delivery target within a payload.
type Recipient struct {
	Value       string
	DisplayName string
	Channel     Channel
}

// CreateDeliveryLog carries the first write of a delivery log entry.
//
// Subject and Body are the processed (post-template) snapshot.
type CreateDeliveryLog struct {
	ID            int64
	CorrelationID string
	GroupID       string
	Recipient     string
	DisplayName   string
	Channel       Channel
	Priority      Priority
	Subject       string
	Body          string
	Metadata      valueobject.JSONMap
	IsCancelled   bool
	ErrorMessage  string
}

// DeliveryLog is the durable record of one delivery attempt to one recipient.
type DeliveryLog struct {
	ID            int64
	CorrelationID string
	GroupID       string
	Recipient     string
	DisplayName   string
	Channel       Channel
	Priority      Priority
	Subject       string
	Body          string
	Metadata      valueobject.JSONMap
	IsSuccess     bool
	IsCancelled   bool
	ErrorMessage  string
	RetryCount    int32
	NextRetryAt   *time.Time
	CreatedAt     time.Time
	SentAt        *time.Time
}

// RealtimeMessage is a rendered notification pushed to connected realtime
// clients.
type RealtimeMessage struct {
	CorrelationID string              `json:"correlation_id"`
	Recipient     string              `json:"recipient"`
	DisplayName   string              `json:"display_name,omitempty"`
	Subject       string              `json:"subject"`
	Body          string              `json:"body"`
	Metadata      valueobject.JSONMap `json:"metadata,omitempty"`
	SentAt        time.Time           `json:"sent_at"`
}

// DeliveryEvent is a per-attempt notification published to live monitors.
type DeliveryEvent struct {
	LogID         int64     `json:"log_id"`
	CorrelationID string    `json:"correlation_id"`
	GroupID       string    `json:"group_id,omitempty"`
	Channel       string    `json:"channel"`
	Recipient     string    `json:"recipient"`
	IsSuccess     bool      `json:"is_success"`
	IsCancelled   bool      `json:"is_cancelled"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	RetryCount    int32     `json:"retry_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}
