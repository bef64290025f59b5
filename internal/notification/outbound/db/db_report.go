package db

import (
	"context"

	"github.com/fanoutlabs/herald/internal/notification/entity"
)

func (s *DB) Summary(ctx context.Context) (_ entity.DeliverySummary, err error) {
	ctx, span := s.startSpan(ctx, "Summary")
	defer func() { s.endSpan(span, err) }()

	summary := entity.DeliverySummary{ByChannel: map[string]int64{}}

	err = s.conn.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE is_success),
			count(*) FILTER (WHERE NOT is_success AND NOT is_cancelled AND retry_count >= $1),
			count(*) FILTER (WHERE NOT is_success AND NOT is_cancelled AND retry_count < $1),
			count(*) FILTER (WHERE is_cancelled)
		FROM notification_delivery_logs`,
		s.maxRetry,
	).Scan(&summary.Total, &summary.Success, &summary.Failed, &summary.Pending, &summary.Cancelled)
	if err != nil {
		return entity.DeliverySummary{}, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT channel, count(*)
		FROM notification_delivery_logs
		GROUP BY channel`)
	if err != nil {
		return entity.DeliverySummary{}, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel string
		var count int64
		if err = rows.Scan(&channel, &count); err != nil {
			return entity.DeliverySummary{}, s.mapError(err)
		}
		summary.ByChannel[channel] = count
	}
	if err = rows.Err(); err != nil {
		return entity.DeliverySummary{}, s.mapError(err)
	}

	return summary, nil
}

func (s *DB) DailyCounts(ctx context.Context, days int) (_ []entity.DailyDeliveryCount, err error) {
	ctx, span := s.startSpan(ctx, "DailyCounts")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT
			date_trunc('day', created_at) AS day,
			count(*),
			count(*) FILTER (WHERE is_success),
			count(*) FILTER (WHERE NOT is_success AND NOT is_cancelled)
		FROM notification_delivery_logs
		WHERE created_at >= now() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day`,
		days,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.DailyDeliveryCount
	for rows.Next() {
		var item entity.DailyDeliveryCount
		if err = rows.Scan(&item.Date, &item.Total, &item.Success, &item.Failed); err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

func (s *DB) GroupStats(ctx context.Context, groupID string) (_ entity.GroupDeliveryStats, err error) {
	ctx, span := s.startSpan(ctx, "GroupStats")
	defer func() { s.endSpan(span, err) }()

	stats := entity.GroupDeliveryStats{GroupID: groupID}

	err = s.conn.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE is_success),
			count(*) FILTER (WHERE NOT is_success AND NOT is_cancelled AND retry_count >= $2),
			count(*) FILTER (WHERE NOT is_success AND NOT is_cancelled AND retry_count < $2),
			count(*) FILTER (WHERE is_cancelled)
		FROM notification_delivery_logs
		WHERE group_id = $1`,
		groupID, s.maxRetry,
	).Scan(&stats.Total, &stats.Success, &stats.Failed, &stats.Pending, &stats.Cancelled)
	if err != nil {
		return entity.GroupDeliveryStats{}, s.mapError(err)
	}

	return stats, nil
}
