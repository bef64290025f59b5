package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
	"github.com/fanoutlabs/herald/internal/notification/queue"
	"github.com/fanoutlabs/herald/internal/notification/stream"
	"github.com/fanoutlabs/herald/internal/pkg/goroutine"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
)

func TestProcessPayloadDeliversToEachRecipient(t *testing.T) {
	f := newFixture(t)

	email := &fakeSender{}
	sms := &fakeSender{}
	f.uc.senders.Register(entity.ChannelEmail, email)
	f.uc.senders.Register(entity.ChannelSMS, sms)

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:           "p-1",
		Subject:      "Hello {{name}}",
		Body:         "Your code is {{code}}",
		TemplateData: map[string]string{"Name": "Ada", "code": "1234"},
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
			{Value: "+15550100", Channel: entity.ChannelSMS},
		},
	})

	if got := email.sent(); len(got) != 1 || got[0].Subject != "Hello Ada" || got[0].Body != "Your code is 1234" {
		t.Fatalf("email requests = %+v, want one templated request", got)
	}
	if got := sms.sent(); len(got) != 1 || got[0].Recipient != "+15550100" {
		t.Fatalf("sms requests = %+v, want one request", got)
	}

	if f.store.len() != 2 {
		t.Fatalf("store rows = %d, want 2", f.store.len())
	}
	for id := int64(1); id <= 2; id++ {
		row := f.store.row(id)
		if row == nil || !row.IsSuccess || row.ErrorMessage != "" || row.SentAt == nil {
			t.Fatalf("row %d = %+v, want successful outcome", id, row)
		}
	}

	events := f.events.published()
	if len(events) != 2 {
		t.Fatalf("published events = %d, want 2", len(events))
	}
	for _, evt := range events {
		if !evt.IsSuccess || evt.CorrelationID != "p-1" {
			t.Fatalf("event = %+v, want success for p-1", evt)
		}
	}
}

func TestProcessPayloadRoutingMissSkipsRecipient(t *testing.T) {
	f := newFixture(t)

	email := &fakeSender{}
	f.uc.senders.Register(entity.ChannelEmail, email)

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-2",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "chat-1", Channel: entity.ChannelTelegram},
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
		},
	})

	// The unroutable recipient leaves no trace: no log row, no event.
	if f.store.len() != 1 {
		t.Fatalf("store rows = %d, want 1", f.store.len())
	}
	if got := f.events.published(); len(got) != 1 {
		t.Fatalf("published events = %d, want 1", len(got))
	}
	if got := email.sent(); len(got) != 1 {
		t.Fatalf("email requests = %d, want 1", len(got))
	}
}

func TestProcessPayloadFailureRecordsOutcome(t *testing.T) {
	f := newFixture(t)

	f.uc.senders.Register(entity.ChannelEmail, &fakeSender{err: errors.New("smtp down")})

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-3",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
		},
	})

	row := f.store.row(1)
	if row == nil {
		t.Fatal("expected a delivery log row")
	}
	if row.IsSuccess || row.ErrorMessage != entity.DeliveryFailedMessage {
		t.Fatalf("row = %+v, want failed with %q", row, entity.DeliveryFailedMessage)
	}
	if row.RetryCount != 1 || row.NextRetryAt == nil {
		t.Fatalf("row = %+v, want retry scheduled", row)
	}

	want := f.clock.now.Add(5 * time.Minute)
	if !row.NextRetryAt.Equal(want) {
		t.Fatalf("NextRetryAt = %v, want %v", row.NextRetryAt, want)
	}
}

func TestProcessPayloadPanicContained(t *testing.T) {
	f := newFixture(t)

	email := &fakeSender{}
	f.uc.senders.Register(entity.ChannelSMS, &fakeSender{panicMsg: "boom"})
	f.uc.senders.Register(entity.ChannelEmail, email)

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-4",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "+15550100", Channel: entity.ChannelSMS},
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
		},
	})

	if got := email.sent(); len(got) != 1 {
		t.Fatalf("email requests = %d, want delivery to continue after panic", len(got))
	}

	row := f.store.row(1)
	if row == nil || row.IsSuccess || row.ErrorMessage != entity.DeliveryFailedMessage {
		t.Fatalf("row = %+v, want panicked attempt recorded as failure", row)
	}
}

func TestProcessPayloadCancelledGroup(t *testing.T) {
	f := newFixture(t)

	email := &fakeSender{}
	f.uc.senders.Register(entity.ChannelEmail, email)

	if err := f.cache.SetGroupCancelled(context.Background(), "grp-1", time.Hour); err != nil {
		t.Fatalf("SetGroupCancelled: %v", err)
	}

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-5",
		GroupID: "grp-1",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
			{Value: "bob@example.com", Channel: entity.ChannelEmail},
		},
	})

	if got := email.sent(); len(got) != 0 {
		t.Fatalf("email requests = %d, want none for cancelled group", len(got))
	}

	if f.store.len() != 2 {
		t.Fatalf("store rows = %d, want terminal row per recipient", f.store.len())
	}
	for id := int64(1); id <= 2; id++ {
		row := f.store.row(id)
		if row == nil || !row.IsCancelled || row.ErrorMessage != entity.CancelledMessage {
			t.Fatalf("row %d = %+v, want cancelled with %q", id, row, entity.CancelledMessage)
		}
	}
}

func TestProcessPayloadCacheErrorProceeds(t *testing.T) {
	f := newFixture(t)
	f.cache.checkErr = errors.New("redis down")

	email := &fakeSender{}
	f.uc.senders.Register(entity.ChannelEmail, email)

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-6",
		GroupID: "grp-2",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
		},
	})

	if got := email.sent(); len(got) != 1 {
		t.Fatalf("email requests = %d, want delivery despite cache error", len(got))
	}
}

func TestProcessPayloadWithoutStore(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	email := &fakeSender{}

	reg := sender.NewRegistry()
	reg.Register(entity.ChannelEmail, email)

	uc := NewNotification(Dependency{
		Queues:     queue.NewSet(),
		Senders:    reg,
		Monitor:    stream.NewHub[entity.DeliveryEvent](),
		Realtime:   stream.NewHub[entity.RealtimeMessage](),
		UID:        &seqNumberID{},
		UUID:       fixedStringID{id: "p"},
		Clock:      clk,
		Goroutine:  goroutine.NewManager(10),
		Instrument: instrument.NewNoop(),
	})

	uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-7",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
		},
	})

	if got := email.sent(); len(got) != 1 {
		t.Fatalf("email requests = %d, want best-effort delivery without store", len(got))
	}
}

func TestRunWorkerDrainsQueueInPriorityOrder(t *testing.T) {
	f := newFixture(t)

	email := &fakeSender{}
	f.uc.senders.Register(entity.ChannelEmail, email)

	for _, p := range []*entity.Payload{
		{ID: "low", Priority: entity.PriorityLow, Subject: "s", Body: "b",
			Recipients: []entity.Recipient{{Value: "a@example.com", Channel: entity.ChannelEmail}}},
		{ID: "urgent", Priority: entity.PriorityUrgent, Subject: "s", Body: "b",
			Recipients: []entity.Recipient{{Value: "b@example.com", Channel: entity.ChannelEmail}}},
	} {
		f.uc.queues.Enqueue(p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := f.uc.RunWorker(ctx); err != nil {
			t.Errorf("RunWorker: %v", err)
		}
	}()

	deadline := time.After(2 * time.Second)
	for len(email.sent()) < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("worker delivered %d payloads, want 2", len(email.sent()))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	got := email.sent()
	if got[0].CorrelationID != "urgent" || got[1].CorrelationID != "low" {
		t.Fatalf("delivery order = [%s %s], want urgent before low",
			got[0].CorrelationID, got[1].CorrelationID)
	}
}
