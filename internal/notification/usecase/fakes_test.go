package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
	"github.com/fanoutlabs/herald/internal/notification/queue"
	"github.com/fanoutlabs/herald/internal/notification/stream"
	"github.com/fanoutlabs/herald/internal/pkg/goroutine"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/fanoutlabs/herald/internal/pkg/validator"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type seqNumberID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqNumberID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fixedStringID struct {
	id string
}

func (f fixedStringID) Generate() string { return f.id }

// fakeStore is an in-memory store mirroring the SQL outcome semantics,
// including the incremented retry count on failure.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[int64]*entity.DeliveryLog
	backoff time.Duration
	now     func() time.Time

	createErr error
	queryErr  error
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		rows:    make(map[int64]*entity.DeliveryLog),
		backoff: 5 * time.Minute,
		now:     now,
	}
}

func (f *fakeStore) CreateEntry(_ context.Context, in entity.CreateDeliveryLog) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[in.ID] = &entity.DeliveryLog{
		ID:            in.ID,
		CorrelationID: in.CorrelationID,
		GroupID:       in.GroupID,
		Recipient:     in.Recipient,
		DisplayName:   in.DisplayName,
		Channel:       in.Channel,
		Priority:      in.Priority,
		Subject:       in.Subject,
		Body:          in.Body,
		Metadata:      in.Metadata,
		IsCancelled:   in.IsCancelled,
		ErrorMessage:  in.ErrorMessage,
		CreatedAt:     f.now(),
	}
	return nil
}

func (f *fakeStore) UpdateOutcome(_ context.Context, id int64, success bool, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return errors.New("row not found")
	}

	if success {
		now := f.now()
		row.IsSuccess = true
		row.ErrorMessage = ""
		row.SentAt = &now
		row.NextRetryAt = nil
		return nil
	}

	row.IsSuccess = false
	row.ErrorMessage = errorMessage
	next := f.now().Add(f.backoff * time.Duration(row.RetryCount+1))
	row.RetryCount++
	row.NextRetryAt = &next
	return nil
}

func (f *fakeStore) QueryRetryEligible(_ context.Context, maxRetryCount int32) ([]entity.DeliveryLog, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.DeliveryLog
	now := f.now()
	for _, row := range f.rows {
		if row.IsSuccess || row.IsCancelled || row.RetryCount >= maxRetryCount {
			continue
		}
		if row.NextRetryAt != nil && row.NextRetryAt.After(now) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeStore) MarkGroupCancelled(_ context.Context, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.GroupID == groupID && !row.IsSuccess && !row.IsCancelled {
			row.IsCancelled = true
			row.ErrorMessage = entity.CancelledMessage
		}
	}
	return nil
}

func (f *fakeStore) IsEntryOrGroupCancelled(_ context.Context, id int64, groupID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if !row.IsCancelled {
			continue
		}
		if row.ID == id || (groupID != "" && row.GroupID == groupID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Summary(_ context.Context) (entity.DeliverySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sum := entity.DeliverySummary{ByChannel: make(map[string]int64)}
	for _, row := range f.rows {
		sum.Total++
		switch {
		case row.IsCancelled:
			sum.Cancelled++
		case row.IsSuccess:
			sum.Success++
		default:
			sum.Pending++
		}
		sum.ByChannel[row.Channel.String()]++
	}
	return sum, nil
}

func (f *fakeStore) DailyCounts(_ context.Context, _ int) ([]entity.DailyDeliveryCount, error) {
	return nil, nil
}

func (f *fakeStore) GroupStats(_ context.Context, groupID string) (entity.GroupDeliveryStats, error) {
	return entity.GroupDeliveryStats{GroupID: groupID}, nil
}

func (f *fakeStore) ListByDateRange(_ context.Context, from, to time.Time) ([]entity.DeliveryLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.DeliveryLog
	for _, row := range f.rows {
		if row.CreatedAt.Before(from) || row.CreatedAt.After(to) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeStore) row(id int64) *entity.DeliveryLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return nil
	}
	cp := *row
	return &cp
}

func (f *fakeStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeCache struct {
	mu        sync.Mutex
	cancelled map[string]bool
	setErr    error
	checkErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{cancelled: make(map[string]bool)}
}

func (f *fakeCache) SetGroupCancelled(_ context.Context, groupID string, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}

	f.mu.Lock()
	f.cancelled[groupID] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeCache) IsGroupCancelled(_ context.Context, groupID string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled[groupID], nil
}

type fakeSender struct {
	mu       sync.Mutex
	requests []sender.Request
	err      error
	panicMsg string
}

func (f *fakeSender) Send(_ context.Context, req sender.Request) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.err
}

func (f *fakeSender) sent() []sender.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sender.Request(nil), f.requests...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []entity.DeliveryEvent
	err    error
}

func (f *fakePublisher) PublishDeliveryEvent(_ context.Context, evt entity.DeliveryEvent) error {
	f.mu.Lock()
	f.events = append(f.events, evt)
	f.mu.Unlock()
	return f.err
}

func (f *fakePublisher) published() []entity.DeliveryEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.DeliveryEvent(nil), f.events...)
}

type ucFixture struct {
	uc     *Usecase
	store  *fakeStore
	cache  *fakeCache
	events *fakePublisher
	clock  *fakeClock
}

func newFixture(t interface{ Fatalf(string, ...any) }) *ucFixture {
	clk := &fakeClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}
	st := newFakeStore(clk.Now)
	ca := newFakeCache()
	ev := &fakePublisher{}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator: %v", err)
	}

	uc := NewNotification(Dependency{
		Queues:     queue.NewSet(),
		Senders:    sender.NewRegistry(),
		RepoDB:     st,
		Cache:      ca,
		Events:     ev,
		Monitor:    stream.NewHub[entity.DeliveryEvent](),
		Realtime:   stream.NewHub[entity.RealtimeMessage](),
		UID:        &seqNumberID{},
		UUID:       fixedStringID{id: "payload-1"},
		OID:        fixedStringID{id: "export-1"},
		Clock:      clk,
		Validator:  v10,
		Goroutine:  goroutine.NewManager(10),
		Instrument: instrument.NewNoop(),
	})

	return &ucFixture{uc: uc, store: st, cache: ca, events: ev, clock: clk}
}
