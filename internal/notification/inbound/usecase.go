package inbound

import (
	"context"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/usecase"
)

type ucDispatcher interface {
	Dispatch(ctx context.Context, in usecase.DispatchInput) (string, error)
	CancelGroup(ctx context.Context, in usecase.CancelGroupInput) error
	IsGroupCancelled(ctx context.Context, groupID string) (bool, error)
}

type ucReporter interface {
	Summary(ctx context.Context) (entity.DeliverySummary, error)
	DailyCounts(ctx context.Context, days int) ([]entity.DailyDeliveryCount, error)
	GroupStats(ctx context.Context, groupID string) (entity.GroupDeliveryStats, error)
	Export(ctx context.Context, in usecase.ExportInput) (usecase.ExportOutput, error)
}

type ucStream interface {
	SubscribeDeliveryEvents(ctx context.Context) <-chan entity.DeliveryEvent
	SubscribeRealtime(ctx context.Context) <-chan entity.RealtimeMessage
}

type uc interface {
	ucDispatcher
	ucReporter
	ucStream
}
