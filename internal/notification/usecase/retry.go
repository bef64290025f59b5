package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
)

// RunRetryScheduler periodically re-attempts failed deliveries until ctx is
// done. Without a store there is nothing to retry, so the loop still runs
// but every cycle is a no-op.
func (s *Usecase) RunRetryScheduler(ctx context.Context) error {
	slog.InfoContext(ctx, "retry scheduler started",
		"interval", s.retryInterval.String(), "max_retry_count", s.maxRetryCount)

	ticker := time.NewTicker(s.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "retry scheduler stopped")
			return nil
		case <-ticker.C:
			s.retryCycle(ctx)
		}
	}
}

// retryCycle re-sends every eligible entry using the stored post-template
// snapshot. One entry failing never aborts the rest of the batch.
func (s *Usecase) retryCycle(ctx context.Context) {
	if s.repoDB == nil {
		return
	}

	ctx, span := s.startSpan(ctx, "retryCycle")
	defer span.End()

	entries, err := s.repoDB.QueryRetryEligible(ctx, s.maxRetryCount)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query retry-eligible entries", "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	slog.InfoContext(ctx, "retrying failed deliveries", "count", len(entries))

	for _, entry := range entries {
		s.retryEntry(ctx, entry)
	}
}

func (s *Usecase) retryEntry(ctx context.Context, entry entity.DeliveryLog) {
	// The durable group-cancel write is async, so an entry can become
	// cancelled between the eligibility query and this attempt.
	cancelled, err := s.repoDB.IsEntryOrGroupCancelled(ctx, entry.ID, entry.GroupID)
	if err != nil {
		slog.WarnContext(ctx, "cancellation recheck failed, proceeding with retry",
			"error", err, "log_id", entry.ID)
	} else if cancelled {
		slog.InfoContext(ctx, "entry cancelled, skipping retry",
			"log_id", entry.ID, "group_id", entry.GroupID)
		return
	}

	snd, ok := s.senders.Resolve(entry.Channel)
	if !ok {
		slog.WarnContext(ctx, "no sender registered for channel, skipping retry",
			"channel", entry.Channel.String(), "log_id", entry.ID)
		return
	}

	sendErr := s.sendWithRecover(ctx, snd, sender.Request{
		CorrelationID: entry.CorrelationID,
		Recipient:     entry.Recipient,
		DisplayName:   entry.DisplayName,
		Subject:       entry.Subject,
		Body:          entry.Body,
		Metadata:      entry.Metadata,
	})

	errMsg := ""
	retryCount := entry.RetryCount
	if sendErr != nil {
		errMsg = entity.RetryFailedMessage
		retryCount++
		slog.WarnContext(ctx, "retry attempt failed",
			"error", sendErr,
			"channel", entry.Channel.String(),
			"recipient", entry.Recipient,
			"log_id", entry.ID,
			"retry_count", retryCount,
		)
	}

	if err := s.repoDB.UpdateOutcome(ctx, entry.ID, sendErr == nil, errMsg); err != nil {
		slog.ErrorContext(ctx, "failed to update delivery log outcome after retry",
			"error", err, "log_id", entry.ID)
	}

	s.publishEvent(ctx, entity.DeliveryEvent{
		LogID:         entry.ID,
		CorrelationID: entry.CorrelationID,
		GroupID:       entry.GroupID,
		Channel:       entry.Channel.String(),
		Recipient:     entry.Recipient,
		IsSuccess:     sendErr == nil,
		ErrorMessage:  errMsg,
		RetryCount:    retryCount,
		OccurredAt:    s.clock.Now(),
	})
}
