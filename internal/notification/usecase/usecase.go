package usecase

import (
	"context"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
	"github.com/fanoutlabs/herald/internal/notification/queue"
	"github.com/fanoutlabs/herald/internal/notification/stream"
	"github.com/fanoutlabs/herald/internal/pkg/clock"
	"github.com/fanoutlabs/herald/internal/pkg/config"
	"github.com/fanoutlabs/herald/internal/pkg/goroutine"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/fanoutlabs/herald/internal/pkg/storage"
	"github.com/fanoutlabs/herald/internal/pkg/uid"
	"github.com/fanoutlabs/herald/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultIdleSleep     = 100 * time.Millisecond
	defaultRetryInterval = 5 * time.Minute
	defaultBackoffUnit   = 5 * time.Minute
	defaultMaxRetryCount = int32(3)
	defaultCancelTTL     = time.Hour
)

// store is the delivery log persistence contract. A nil store degrades the
// pipeline to best-effort delivery: no audit trail and no retries.
type store interface {
	CreateEntry(ctx context.Context, in entity.CreateDeliveryLog) error
	UpdateOutcome(ctx context.Context, id int64, success bool, errorMessage string) error
	QueryRetryEligible(ctx context.Context, maxRetryCount int32) ([]entity.DeliveryLog, error)
	MarkGroupCancelled(ctx context.Context, groupID string) error
	IsEntryOrGroupCancelled(ctx context.Context, id int64, groupID string) (bool, error)

	Summary(ctx context.Context) (entity.DeliverySummary, error)
	DailyCounts(ctx context.Context, days int) ([]entity.DailyDeliveryCount, error)
	GroupStats(ctx context.Context, groupID string) (entity.GroupDeliveryStats, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]entity.DeliveryLog, error)
}

// cancelCache is the fast-path cancellation check consulted on every
// dequeued payload.
type cancelCache interface {
	SetGroupCancelled(ctx context.Context, groupID string, ttl time.Duration) error
	IsGroupCancelled(ctx context.Context, groupID string) (bool, error)
}

// eventPublisher forwards per-attempt delivery events to the broker.
type eventPublisher interface {
	PublishDeliveryEvent(ctx context.Context, evt entity.DeliveryEvent) error
}

type Usecase struct {
	queues    *queue.Set
	senders   *sender.Registry
	repoDB    store
	cache     cancelCache
	events    eventPublisher
	monitor   *stream.Hub[entity.DeliveryEvent]
	realtime  *stream.Hub[entity.RealtimeMessage]
	blob      storage.Storage
	cfg       config.Config
	uid       uid.NumberID
	uuid      uid.StringID
	oid       uid.StringID
	clock     clock.Clocker
	validator validator.Validator
	routine   *goroutine.Manager
	ins       instrument.Instrumentation

	idleSleep     time.Duration
	retryInterval time.Duration
	maxRetryCount int32
	cancelTTL     time.Duration
	exportBucket  string
}

type Dependency struct {
	Queues     *queue.Set
	Senders    *sender.Registry
	RepoDB     store
	Cache      cancelCache
	Events     eventPublisher
	Monitor    *stream.Hub[entity.DeliveryEvent]
	Realtime   *stream.Hub[entity.RealtimeMessage]
	Storage    storage.Storage
	Config     config.Config
	UID        uid.NumberID
	UUID       uid.StringID
	OID        uid.StringID
	Clock      clock.Clocker
	Validator  validator.Validator
	Goroutine  *goroutine.Manager
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	uc := &Usecase{
		queues:    dep.Queues,
		senders:   dep.Senders,
		repoDB:    dep.RepoDB,
		cache:     dep.Cache,
		events:    dep.Events,
		monitor:   dep.Monitor,
		realtime:  dep.Realtime,
		blob:      dep.Storage,
		cfg:       dep.Config,
		uid:       dep.UID,
		uuid:      dep.UUID,
		oid:       dep.OID,
		clock:     dep.Clock,
		validator: dep.Validator,
		routine:   dep.Goroutine,
		ins:       dep.Instrument,

		idleSleep:     defaultIdleSleep,
		retryInterval: defaultRetryInterval,
		maxRetryCount: defaultMaxRetryCount,
		cancelTTL:     defaultCancelTTL,
	}

	if dep.Config != nil {
		if v := dep.Config.GetSecond("modules.notification.retry_interval_seconds"); v > 0 {
			uc.retryInterval = v
		}
		if v := dep.Config.GetInt32("modules.notification.max_retry_count"); v > 0 {
			uc.maxRetryCount = v
		}
		if v := dep.Config.GetMinute("modules.notification.cancel_ttl_minutes"); v > 0 {
			uc.cancelTTL = v
		}
		uc.exportBucket = dep.Config.GetString("storage.bucket")
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// SubscribeDeliveryEvents registers a live monitor stream closed when ctx is
// done.
func (s *Usecase) SubscribeDeliveryEvents(ctx context.Context) <-chan entity.DeliveryEvent {
	return s.monitor.Subscribe(ctx)
}

// SubscribeRealtime registers a realtime message stream closed when ctx is
// done.
func (s *Usecase) SubscribeRealtime(ctx context.Context) <-chan entity.RealtimeMessage {
	return s.realtime.Subscribe(ctx)
}
