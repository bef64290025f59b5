package stream

import (
	"context"
	"testing"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
)

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := NewHub[entity.DeliveryEvent]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := h.Subscribe(ctx)
	second := h.Subscribe(ctx)

	h.Publish(entity.DeliveryEvent{CorrelationID: "p1", Channel: "email"})

	for _, ch := range []<-chan entity.DeliveryEvent{first, second} {
		select {
		case evt := <-ch:
			if evt.CorrelationID != "p1" {
				t.Fatalf("event correlation id = %s, want p1", evt.CorrelationID)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestHubUnsubscribeOnContextDone(t *testing.T) {
	h := NewHub[entity.DeliveryEvent]()

	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx)

	if got := h.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	if got := h.Len(); got != 0 {
		t.Fatalf("Len after cancel = %d, want 0", got)
	}
}

func TestHubPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	h := NewHub[entity.DeliveryEvent]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscriber never reads; buffer fills and further events are dropped.
	h.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for range 100 {
			h.Publish(entity.DeliveryEvent{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
