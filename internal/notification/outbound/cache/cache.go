// Package cache is the redis-backed fast path for group cancellation checks.
package cache

import (
	"context"
	"time"

	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const cancelKeyPrefix = "herald:cancel:"

// Redis stores cancelled group ids as TTL-bounded keys.
type Redis struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

// NewRedis constructs the cancellation cache.
func NewRedis(client *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (c *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("notification.outbound.cache").Start(ctx, name)
}

func (c *Redis) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SetGroupCancelled marks the group cancelled for the given duration.
func (c *Redis) SetGroupCancelled(ctx context.Context, groupID string, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SetGroupCancelled")
	defer func() { c.endSpan(span, err) }()

	err = c.client.Set(ctx, cancelKeyPrefix+groupID, "1", ttl).Err()
	return err
}

// IsGroupCancelled reports whether the group currently has a live
// cancellation key.
func (c *Redis) IsGroupCancelled(ctx context.Context, groupID string) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "IsGroupCancelled")
	defer func() { c.endSpan(span, err) }()

	n, err := c.client.Exists(ctx, cancelKeyPrefix+groupID).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
