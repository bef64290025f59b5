package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
	"github.com/fanoutlabs/herald/internal/notification/templating"
)

// RunWorker drains the priority queues until ctx is done. It is the single
// consumer of the queue set; when every tier is empty it sleeps briefly
// before polling again.
func (s *Usecase) RunWorker(ctx context.Context) error {
	slog.InfoContext(ctx, "delivery worker started", "idle_sleep", s.idleSleep.String())

	timer := time.NewTimer(s.idleSleep)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "delivery worker stopped", "pending", s.queues.Len())
			return nil
		default:
		}

		payload := s.queues.TryDequeue()
		if payload == nil {
			timer.Reset(s.idleSleep)
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "delivery worker stopped", "pending", s.queues.Len())
				return nil
			case <-timer.C:
			}
			continue
		}

		s.processPayload(ctx, payload)
	}
}

// processPayload templates the payload once, then delivers it to each
// recipient. A failure on one recipient never blocks the others.
func (s *Usecase) processPayload(ctx context.Context, p *entity.Payload) {
	ctx, span := s.startSpan(ctx, "processPayload")
	defer span.End()

	if s.isCancelled(ctx, p.GroupID) {
		s.recordCancelled(ctx, p)
		return
	}

	subject := templating.Process(p.Subject, p.TemplateData)
	body := templating.Process(p.Body, p.TemplateData)

	for _, rcpt := range p.Recipients {
		snd, ok := s.senders.Resolve(rcpt.Channel)
		if !ok {
			slog.WarnContext(ctx, "no sender registered for channel, skipping recipient",
				"channel", rcpt.Channel.String(),
				"recipient", rcpt.Value,
				"payload_id", p.ID,
			)
			continue
		}

		logID := s.uid.Generate()
		if s.repoDB != nil {
			err := s.repoDB.CreateEntry(ctx, entity.CreateDeliveryLog{
				ID:            logID,
				CorrelationID: p.ID,
				GroupID:       p.GroupID,
				Recipient:     rcpt.Value,
				DisplayName:   rcpt.DisplayName,
				Channel:       rcpt.Channel,
				Priority:      p.Priority,
				Subject:       subject,
				Body:          body,
				Metadata:      p.Metadata,
			})
			if err != nil {
				slog.ErrorContext(ctx, "failed to create delivery log entry",
					"error", err, "payload_id", p.ID, "recipient", rcpt.Value)
			}
		}

		sendErr := s.sendWithRecover(ctx, snd, sender.Request{
			CorrelationID: p.ID,
			Recipient:     rcpt.Value,
			DisplayName:   rcpt.DisplayName,
			Subject:       subject,
			Body:          body,
			Metadata:      p.Metadata,
		})

		errMsg := ""
		if sendErr != nil {
			errMsg = entity.DeliveryFailedMessage
			slog.ErrorContext(ctx, "delivery attempt failed",
				"error", sendErr,
				"channel", rcpt.Channel.String(),
				"recipient", rcpt.Value,
				"payload_id", p.ID,
			)
		}

		if s.repoDB != nil {
			if err := s.repoDB.UpdateOutcome(ctx, logID, sendErr == nil, errMsg); err != nil {
				slog.ErrorContext(ctx, "failed to update delivery log outcome",
					"error", err, "log_id", logID)
			}
		}

		s.publishEvent(ctx, entity.DeliveryEvent{
			LogID:         logID,
			CorrelationID: p.ID,
			GroupID:       p.GroupID,
			Channel:       rcpt.Channel.String(),
			Recipient:     rcpt.Value,
			IsSuccess:     sendErr == nil,
			ErrorMessage:  errMsg,
			OccurredAt:    s.clock.Now(),
		})
	}
}

// isCancelled consults only the cache. Cache errors degrade to "not
// cancelled" so an unavailable cache never stalls delivery.
func (s *Usecase) isCancelled(ctx context.Context, groupID string) bool {
	if groupID == "" || s.cache == nil {
		return false
	}

	cancelled, err := s.cache.IsGroupCancelled(ctx, groupID)
	if err != nil {
		slog.WarnContext(ctx, "cancellation check failed, proceeding with delivery",
			"error", err, "group_id", groupID)
		return false
	}
	return cancelled
}

// recordCancelled writes a terminal cancelled entry per recipient so the
// audit trail shows the payload was dropped, not lost.
func (s *Usecase) recordCancelled(ctx context.Context, p *entity.Payload) {
	slog.InfoContext(ctx, "payload group cancelled, skipping delivery",
		"payload_id", p.ID, "group_id", p.GroupID)

	for _, rcpt := range p.Recipients {
		logID := s.uid.Generate()
		if s.repoDB != nil {
			err := s.repoDB.CreateEntry(ctx, entity.CreateDeliveryLog{
				ID:            logID,
				CorrelationID: p.ID,
				GroupID:       p.GroupID,
				Recipient:     rcpt.Value,
				DisplayName:   rcpt.DisplayName,
				Channel:       rcpt.Channel,
				Priority:      p.Priority,
				Subject:       p.Subject,
				Body:          p.Body,
				Metadata:      p.Metadata,
				IsCancelled:   true,
				ErrorMessage:  entity.CancelledMessage,
			})
			if err != nil {
				slog.ErrorContext(ctx, "failed to create cancelled delivery log entry",
					"error", err, "payload_id", p.ID, "recipient", rcpt.Value)
			}
		}

		s.publishEvent(ctx, entity.DeliveryEvent{
			LogID:         logID,
			CorrelationID: p.ID,
			GroupID:       p.GroupID,
			Channel:       rcpt.Channel.String(),
			Recipient:     rcpt.Value,
			IsCancelled:   true,
			ErrorMessage:  entity.CancelledMessage,
			OccurredAt:    s.clock.Now(),
		})
	}
}

// sendWithRecover contains sender panics so one misbehaving adapter cannot
// take down the worker loop.
func (s *Usecase) sendWithRecover(ctx context.Context, snd sender.Sender, req sender.Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()

	return snd.Send(ctx, req)
}

// publishEvent fans the event out to the in-process monitor hub and, when a
// broker is configured, to the delivery event topic.
func (s *Usecase) publishEvent(ctx context.Context, evt entity.DeliveryEvent) {
	if s.monitor != nil {
		s.monitor.Publish(evt)
	}

	if s.events != nil {
		if err := s.events.PublishDeliveryEvent(ctx, evt); err != nil {
			slog.WarnContext(ctx, "failed to publish delivery event",
				"error", err, "log_id", evt.LogID)
		}
	}
}
