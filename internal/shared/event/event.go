// Package event defines the broker topics and message shapes shared between
// modules and external producers/consumers.
package event

// Destinations (topics/subjects) used on the broker.
const (
	// DispatchDestination carries inbound dispatch requests.
	DispatchDestination = "notification.dispatch"
	// DeliveryEventDestination carries per-attempt delivery events.
	DeliveryEventDestination = "notification.delivery-event"
)

// Consumer names per destination.
const (
	DispatchConsumerNotification = "notification.dispatch.herald"
)

// DispatchRecipient is one delivery target inside a DispatchMessage.
type DispatchRecipient struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name,omitempty"`
	Channel     string `json:"channel"`
}

// DispatchMessage mirrors the HTTP dispatch payload for broker producers.
type DispatchMessage struct {
	Priority     string              `json:"priority,omitempty"`
	Subject      string              `json:"subject"`
	Body         string              `json:"body"`
	TemplateData map[string]string   `json:"template_data,omitempty"`
	Recipients   []DispatchRecipient `json:"recipients"`
	Metadata     map[string]any      `json:"metadata,omitempty"`
	GroupID      string              `json:"group_id,omitempty"`
}
