package db

import (
	"context"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const deliveryLogColumns = `
	id, correlation_id, group_id, recipient, display_name, channel, priority,
	subject, body, metadata, is_success, is_cancelled, error_message,
	retry_count, next_retry_at, created_at, sent_at`

func scanDeliveryLog(row pgx.Row) (entity.DeliveryLog, error) {
	var (
		item        entity.DeliveryLog
		channel     string
		priority    string
		nextRetryAt pgtype.Timestamptz
		sentAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&item.ID, &item.CorrelationID, &item.GroupID, &item.Recipient,
		&item.DisplayName, &channel, &priority, &item.Subject, &item.Body,
		&item.Metadata, &item.IsSuccess, &item.IsCancelled, &item.ErrorMessage,
		&item.RetryCount, &nextRetryAt, &item.CreatedAt, &sentAt,
	)
	if err != nil {
		return entity.DeliveryLog{}, err
	}

	item.Channel = entity.ChannelFromString(channel)
	item.Priority = entity.PriorityFromString(priority)
	if nextRetryAt.Valid {
		item.NextRetryAt = &nextRetryAt.Time
	}
	if sentAt.Valid {
		item.SentAt = &sentAt.Time
	}
	return item, nil
}

func (s *DB) collectDeliveryLogs(rows pgx.Rows) ([]entity.DeliveryLog, error) {
	defer rows.Close()

	var items []entity.DeliveryLog
	for rows.Next() {
		item, err := scanDeliveryLog(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *DB) QueryRetryEligible(ctx context.Context, maxRetryCount int32) (_ []entity.DeliveryLog, err error) {
	ctx, span := s.startSpan(ctx, "QueryRetryEligible")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+deliveryLogColumns+`
		FROM notification_delivery_logs
		WHERE is_success = FALSE
		  AND is_cancelled = FALSE
		  AND retry_count < $1
		  AND (next_retry_at IS NULL OR next_retry_at <= now())
		ORDER BY created_at`,
		maxRetryCount,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := s.collectDeliveryLogs(rows)
	return items, s.mapError(err)
}

func (s *DB) IsEntryOrGroupCancelled(ctx context.Context, id int64, groupID string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "IsEntryOrGroupCancelled")
	defer func() { s.endSpan(span, err) }()

	var cancelled bool
	err = s.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notification_delivery_logs
			WHERE is_cancelled = TRUE
			  AND (id = $1 OR (group_id <> '' AND group_id = $2))
		)`,
		id, groupID,
	).Scan(&cancelled)
	if err != nil {
		return false, s.mapError(err)
	}

	return cancelled, nil
}

func (s *DB) ListByDateRange(ctx context.Context, from, to time.Time) (_ []entity.DeliveryLog, err error) {
	ctx, span := s.startSpan(ctx, "ListByDateRange")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+deliveryLogColumns+`
		FROM notification_delivery_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`,
		from, to,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := s.collectDeliveryLogs(rows)
	return items, s.mapError(err)
}
