package db

import (
	"context"

	"github.com/fanoutlabs/herald/internal/notification/entity"
)

func (s *DB) CreateEntry(ctx context.Context, in entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateEntry")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_delivery_logs
			(id, correlation_id, group_id, recipient, display_name, channel,
			 priority, subject, body, metadata, is_success, is_cancelled,
			 error_message, retry_count, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, $11, $12, 0, now())`,
		in.ID, in.CorrelationID, in.GroupID, in.Recipient, in.DisplayName,
		in.Channel.String(), in.Priority.String(), in.Subject, in.Body,
		in.Metadata, in.IsCancelled, in.ErrorMessage,
	)
	return s.mapError(err)
}

// UpdateOutcome records the result of one delivery attempt.
//
// Success is idempotent: it never touches retry_count, so replaying a
// success cannot change the backoff bookkeeping. Failure increments
// retry_count and pushes next_retry_at out linearly with the new count.
func (s *DB) UpdateOutcome(ctx context.Context, id int64, success bool, errorMessage string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateOutcome")
	defer func() { s.endSpan(span, err) }()

	if success {
		_, err = s.conn.Exec(ctx, `
			UPDATE notification_delivery_logs
			SET is_success = TRUE, error_message = '', sent_at = now(), next_retry_at = NULL
			WHERE id = $1`,
			id,
		)
		return s.mapError(err)
	}

	_, err = s.conn.Exec(ctx, `
		UPDATE notification_delivery_logs
		SET is_success = FALSE,
			error_message = $2,
			retry_count = retry_count + 1,
			next_retry_at = now() + make_interval(secs => $3 * (retry_count + 1))
		WHERE id = $1`,
		id, errorMessage, s.backoff.Seconds(),
	)
	return s.mapError(err)
}

func (s *DB) MarkGroupCancelled(ctx context.Context, groupID string) (err error) {
	ctx, span := s.startSpan(ctx, "MarkGroupCancelled")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notification_delivery_logs
		SET is_cancelled = TRUE, error_message = $2
		WHERE group_id = $1 AND is_success = FALSE AND is_cancelled = FALSE`,
		groupID, entity.CancelledMessage,
	)
	return s.mapError(err)
}
