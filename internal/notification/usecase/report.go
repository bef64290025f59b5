package usecase

import (
	"context"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/goerror"
)

const defaultDailyReportDays = 7

// Summary aggregates delivery outcomes across the whole log.
func (s *Usecase) Summary(ctx context.Context) (entity.DeliverySummary, error) {
	ctx, span := s.startSpan(ctx, "Summary")
	defer span.End()

	if s.repoDB == nil {
		return entity.DeliverySummary{}, goerror.NewBusiness("delivery log storage is not configured", goerror.CodeNotFound)
	}

	summary, err := s.repoDB.Summary(ctx)
	if err != nil {
		return entity.DeliverySummary{}, err
	}
	return summary, nil
}

// DailyCounts returns per-day delivery totals for the last days days. A
// non-positive days falls back to one week.
func (s *Usecase) DailyCounts(ctx context.Context, days int) ([]entity.DailyDeliveryCount, error) {
	ctx, span := s.startSpan(ctx, "DailyCounts")
	defer span.End()

	if s.repoDB == nil {
		return nil, goerror.NewBusiness("delivery log storage is not configured", goerror.CodeNotFound)
	}

	if days <= 0 {
		days = defaultDailyReportDays
	}

	counts, err := s.repoDB.DailyCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// GroupStats aggregates delivery outcomes for one group.
func (s *Usecase) GroupStats(ctx context.Context, groupID string) (entity.GroupDeliveryStats, error) {
	ctx, span := s.startSpan(ctx, "GroupStats")
	defer span.End()

	if groupID == "" {
		return entity.GroupDeliveryStats{}, goerror.NewInvalidInput(nil, "group_id", "group id is required")
	}

	if s.repoDB == nil {
		return entity.GroupDeliveryStats{}, goerror.NewBusiness("delivery log storage is not configured", goerror.CodeNotFound)
	}

	stats, err := s.repoDB.GroupStats(ctx, groupID)
	if err != nil {
		return entity.GroupDeliveryStats{}, err
	}
	return stats, nil
}
