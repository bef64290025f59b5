package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fanoutlabs/herald/internal/notification/entity"
)

func TestSummary(t *testing.T) {
	f := newFixture(t)

	f.uc.senders.Register(entity.ChannelEmail, &fakeSender{})
	f.uc.senders.Register(entity.ChannelSMS, &fakeSender{err: errors.New("down")})

	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-sum",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
			{Value: "+15550100", Channel: entity.ChannelSMS},
		},
	})

	sum, err := f.uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if sum.Total != 2 || sum.Success != 1 || sum.Pending != 1 {
		t.Fatalf("summary = %+v, want 2 total, 1 success, 1 pending", sum)
	}
	if sum.ByChannel["email"] != 1 || sum.ByChannel["sms"] != 1 {
		t.Fatalf("by channel = %v", sum.ByChannel)
	}
}

func TestSummaryWithoutStore(t *testing.T) {
	f := newFixture(t)
	f.uc.repoDB = nil

	if _, err := f.uc.Summary(context.Background()); err == nil {
		t.Fatal("Summary without store = nil error, want business error")
	}
}

func TestGroupStatsRequiresGroupID(t *testing.T) {
	f := newFixture(t)

	if _, err := f.uc.GroupStats(context.Background(), ""); err == nil {
		t.Fatal("GroupStats with blank id = nil error, want validation error")
	}
}

func TestDailyCountsDefaultsDays(t *testing.T) {
	f := newFixture(t)

	if _, err := f.uc.DailyCounts(context.Background(), 0); err != nil {
		t.Fatalf("DailyCounts: %v", err)
	}
}
