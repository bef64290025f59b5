package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/fanoutlabs/herald/internal/pkg/goerror"
	"github.com/sethvargo/go-retry"
)

type CancelGroupInput struct {
	GroupID string `validate:"required"`
	TTL     time.Duration
}

// CancelGroup marks a group cancelled in the cache, then durably marks its
// pending delivery log entries in the background. The cache write is the
// authoritative fast path; payloads already picked up by the worker may
// still deliver.
func (s *Usecase) CancelGroup(ctx context.Context, in CancelGroupInput) error {
	ctx, span := s.startSpan(ctx, "CancelGroup")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if s.cache == nil {
		return goerror.NewBusiness("cancellation cache is not configured", goerror.CodeNotFound)
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = s.cancelTTL
	}

	if err := s.cache.SetGroupCancelled(ctx, in.GroupID, ttl); err != nil {
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "group cancelled", "group_id", in.GroupID, "ttl", ttl.String())

	if s.repoDB != nil {
		s.markGroupCancelledAsync(ctx, in.GroupID)
	}

	return nil
}

// markGroupCancelledAsync persists the cancellation without holding up the
// caller. The background context survives the request so a client hang-up
// cannot drop the durable write.
func (s *Usecase) markGroupCancelledAsync(ctx context.Context, groupID string) {
	s.routine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		backoff := retry.WithCappedDuration(10*time.Second, retry.NewFibonacci(500*time.Millisecond))

		err := retry.Do(ctx, retry.WithMaxRetries(5, backoff), func(ctx context.Context) error {
			if err := s.repoDB.MarkGroupCancelled(ctx, groupID); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to durably mark group cancelled",
				"error", err, "group_id", groupID)
		}
		return nil
	})
}

// IsGroupCancelled reports the cache's view of the group. A blank group id
// is never cancelled.
func (s *Usecase) IsGroupCancelled(ctx context.Context, groupID string) (bool, error) {
	ctx, span := s.startSpan(ctx, "IsGroupCancelled")
	defer span.End()

	if groupID == "" || s.cache == nil {
		return false, nil
	}

	cancelled, err := s.cache.IsGroupCancelled(ctx, groupID)
	if err != nil {
		return false, goerror.NewServer(err)
	}
	return cancelled, nil
}
