package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
)

func seedFailedRow(t *testing.T, f *ucFixture, snd *fakeSender) {
	t.Helper()

	f.uc.senders.Register(entity.ChannelEmail, snd)
	snd.err = errors.New("smtp down")

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-retry",
		GroupID: "grp-r",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
		},
	})

	row := f.store.row(1)
	if row == nil || row.IsSuccess || row.RetryCount != 1 {
		t.Fatalf("seed row = %+v, want one failed attempt", row)
	}
}

func TestRetryCycleSucceeds(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	// The row becomes eligible once its backoff window has passed.
	f.clock.now = f.clock.now.Add(10 * time.Minute)
	snd.err = nil

	f.uc.retryCycle(context.Background())

	row := f.store.row(1)
	if row == nil || !row.IsSuccess || row.ErrorMessage != "" || row.SentAt == nil {
		t.Fatalf("row = %+v, want successful retry outcome", row)
	}
	if row.NextRetryAt != nil {
		t.Fatalf("NextRetryAt = %v, want cleared after success", row.NextRetryAt)
	}
}

func TestRetryCycleFailureIncrementsCount(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	f.clock.now = f.clock.now.Add(10 * time.Minute)

	f.uc.retryCycle(context.Background())

	row := f.store.row(1)
	if row == nil || row.IsSuccess {
		t.Fatalf("row = %+v, want still failed", row)
	}
	if row.RetryCount != 2 || row.ErrorMessage != entity.RetryFailedMessage {
		t.Fatalf("row = %+v, want retry count 2 and %q", row, entity.RetryFailedMessage)
	}

	// Linear backoff: the second failure schedules two backoff units out.
	want := f.clock.now.Add(10 * time.Minute)
	if row.NextRetryAt == nil || !row.NextRetryAt.Equal(want) {
		t.Fatalf("NextRetryAt = %v, want %v", row.NextRetryAt, want)
	}
}

func TestRetryCycleRespectsBackoffWindow(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	snd.err = nil
	sentBefore := len(snd.sent())

	// Still inside the backoff window, nothing is eligible.
	f.uc.retryCycle(context.Background())

	if got := len(snd.sent()); got != sentBefore {
		t.Fatalf("sender calls = %d, want %d before backoff expires", got, sentBefore)
	}
}

func TestRetryCycleStopsAtMaxRetries(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	for range 2 {
		f.clock.now = f.clock.now.Add(time.Hour)
		f.uc.retryCycle(context.Background())
	}

	row := f.store.row(1)
	if row == nil || row.RetryCount != 3 {
		t.Fatalf("row = %+v, want retry count at max", row)
	}

	// A further cycle finds nothing eligible.
	f.clock.now = f.clock.now.Add(time.Hour)
	snd.err = nil
	sentBefore := len(snd.sent())

	f.uc.retryCycle(context.Background())

	if got := len(snd.sent()); got != sentBefore {
		t.Fatalf("sender calls = %d, want no attempts past max retries", got)
	}
}

func TestRetryCycleSkipsCancelledEntries(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	if err := f.store.MarkGroupCancelled(context.Background(), "grp-r"); err != nil {
		t.Fatalf("MarkGroupCancelled: %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Hour)
	snd.err = nil
	sentBefore := len(snd.sent())

	f.uc.retryCycle(context.Background())

	if got := len(snd.sent()); got != sentBefore {
		t.Fatalf("sender calls = %d, want cancelled entries skipped", got)
	}
}

func TestRetryCycleSkipsEntryInCancelledGroup(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	// A sibling row carrying the cancelled flag marks the whole group even
	// when the eligible row itself was not rewritten yet.
	if err := f.store.CreateEntry(context.Background(), entity.CreateDeliveryLog{
		ID:            2,
		CorrelationID: "p-retry",
		GroupID:       "grp-r",
		Recipient:     "bob@example.com",
		Channel:       entity.ChannelEmail,
		IsCancelled:   true,
		ErrorMessage:  entity.CancelledMessage,
	}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Hour)
	snd.err = nil
	sentBefore := len(snd.sent())

	f.uc.retryCycle(context.Background())

	if got := len(snd.sent()); got != sentBefore {
		t.Fatalf("sender calls = %d, want group-cancelled entry skipped", got)
	}
	if row := f.store.row(1); row == nil || row.RetryCount != 1 {
		t.Fatalf("row = %+v, want untouched after skip", row)
	}
}

func TestRetryCycleRoutingMissSkipsEntry(t *testing.T) {
	f := newFixture(t)
	snd := &fakeSender{}
	seedFailedRow(t, f, snd)

	// Simulate the sender being deregistered between attempts.
	f.uc.senders = sender.NewRegistry()

	f.clock.now = f.clock.now.Add(time.Hour)
	f.uc.retryCycle(context.Background())

	row := f.store.row(1)
	if row == nil || row.RetryCount != 1 {
		t.Fatalf("row = %+v, want untouched when channel is unroutable", row)
	}
}

func TestRetryCycleWithoutStoreIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.uc.repoDB = nil

	f.uc.retryCycle(context.Background())
}
