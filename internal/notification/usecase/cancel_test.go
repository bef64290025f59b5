package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/goerror"
)

func TestCancelGroup(t *testing.T) {
	f := newFixture(t)

	snd := &fakeSender{err: errors.New("down")}
	seedFailedRow(t, f, snd)

	err := f.uc.CancelGroup(context.Background(), CancelGroupInput{GroupID: "grp-r"})
	if err != nil {
		t.Fatalf("CancelGroup: %v", err)
	}

	cancelled, err := f.cache.IsGroupCancelled(context.Background(), "grp-r")
	if err != nil || !cancelled {
		t.Fatalf("IsGroupCancelled = (%v, %v), want cached cancellation", cancelled, err)
	}

	// The durable write runs in the background.
	if err := f.uc.routine.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	row := f.store.row(1)
	if row == nil || !row.IsCancelled || row.ErrorMessage != entity.CancelledMessage {
		t.Fatalf("row = %+v, want durably cancelled", row)
	}
}

func TestCancelGroupBlankGroupID(t *testing.T) {
	f := newFixture(t)

	err := f.uc.CancelGroup(context.Background(), CancelGroupInput{GroupID: ""})
	if err == nil {
		t.Fatal("CancelGroup with blank group id = nil error, want validation error")
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Type() != goerror.TypeValidation {
		t.Fatalf("error = %v, want validation type", err)
	}
}

func TestCancelGroupCacheWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.cache.setErr = errors.New("redis down")

	err := f.uc.CancelGroup(context.Background(), CancelGroupInput{GroupID: "grp-x"})
	if err == nil {
		t.Fatal("CancelGroup = nil error, want cache failure surfaced")
	}
}

func TestCancelGroupDefaultTTL(t *testing.T) {
	f := newFixture(t)

	if err := f.uc.CancelGroup(context.Background(), CancelGroupInput{GroupID: "grp-ttl", TTL: -time.Minute}); err != nil {
		t.Fatalf("CancelGroup: %v", err)
	}

	cancelled, err := f.uc.IsGroupCancelled(context.Background(), "grp-ttl")
	if err != nil || !cancelled {
		t.Fatalf("IsGroupCancelled = (%v, %v), want true", cancelled, err)
	}
}

func TestIsGroupCancelledBlankGroup(t *testing.T) {
	f := newFixture(t)
	f.cache.checkErr = errors.New("should not be consulted")

	cancelled, err := f.uc.IsGroupCancelled(context.Background(), "")
	if err != nil || cancelled {
		t.Fatalf("IsGroupCancelled(\"\") = (%v, %v), want (false, nil)", cancelled, err)
	}
}

func TestIsGroupCancelledCacheOnly(t *testing.T) {
	f := newFixture(t)

	// A cancellation present only in the store is invisible to the check.
	if err := f.store.CreateEntry(context.Background(), entity.CreateDeliveryLog{
		ID: 99, GroupID: "grp-db", Recipient: "a@example.com",
		Channel: entity.ChannelEmail, IsCancelled: true,
	}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	cancelled, err := f.uc.IsGroupCancelled(context.Background(), "grp-db")
	if err != nil || cancelled {
		t.Fatalf("IsGroupCancelled = (%v, %v), want cache-only false", cancelled, err)
	}
}
