package sender

import (
	"context"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/stream"
	"github.com/fanoutlabs/herald/internal/pkg/clock"
)

// Realtime pushes rendered notifications to connected stream clients.
type Realtime struct {
	hub   *stream.Hub[entity.RealtimeMessage]
	clock clock.Clocker
}

// NewRealtime constructs the realtime channel adapter.
func NewRealtime(hub *stream.Hub[entity.RealtimeMessage], clk clock.Clocker) *Realtime {
	return &Realtime{hub: hub, clock: clk}
}

// Send publishes the message to the realtime hub. Delivery is best effort;
// clients that are not connected simply miss the message.
func (r *Realtime) Send(_ context.Context, req Request) error {
	r.hub.Publish(entity.RealtimeMessage{
		CorrelationID: req.CorrelationID,
		Recipient:     req.Recipient,
		DisplayName:   req.DisplayName,
		Subject:       req.Subject,
		Body:          req.Body,
		Metadata:      req.Metadata,
		SentAt:        r.clock.Now(),
	})
	return nil
}
