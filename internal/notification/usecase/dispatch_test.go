package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/goerror"
)

func TestDispatch(t *testing.T) {
	f := newFixture(t)

	id, err := f.uc.Dispatch(context.Background(), DispatchInput{
		Priority: "urgent",
		Subject:  "Hello {{name}}",
		Body:     "body",
		Recipients: []DispatchRecipientInput{
			{Value: "ada@example.com", Channel: "email"},
			{Value: "+15550100", Channel: "SMS"},
		},
		GroupID: "grp-1",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if id != "payload-1" {
		t.Fatalf("Dispatch id = %q, want payload-1", id)
	}

	p := f.uc.queues.TryDequeue()
	if p == nil {
		t.Fatal("expected a queued payload")
	}
	if p.Priority != entity.PriorityUrgent || p.GroupID != "grp-1" {
		t.Fatalf("payload = %+v, want urgent priority and group grp-1", p)
	}
	if len(p.Recipients) != 2 || p.Recipients[1].Channel != entity.ChannelSMS {
		t.Fatalf("recipients = %+v, want email and sms", p.Recipients)
	}

	// Templates are deferred to the delivery worker.
	if p.Subject != "Hello {{name}}" {
		t.Fatalf("subject = %q, want raw template", p.Subject)
	}
}

func TestDispatchDeduplicatesRecipients(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Dispatch(context.Background(), DispatchInput{
		Subject: "s",
		Body:    "b",
		Recipients: []DispatchRecipientInput{
			{Value: "ada@example.com", Channel: "email"},
			{Value: "ada@example.com", Channel: "Email"},
			{Value: "ada@example.com", Channel: "sms"},
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	p := f.uc.queues.TryDequeue()
	if p == nil || len(p.Recipients) != 2 {
		t.Fatalf("payload = %+v, want duplicate (value, channel) pair collapsed", p)
	}
}

func TestDispatchDefaultsToNormalPriority(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Dispatch(context.Background(), DispatchInput{
		Subject: "s",
		Body:    "b",
		Recipients: []DispatchRecipientInput{
			{Value: "ada@example.com", Channel: "email"},
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	p := f.uc.queues.TryDequeue()
	if p == nil || p.Priority != entity.PriorityNormal {
		t.Fatalf("payload = %+v, want normal priority", p)
	}
}

func TestDispatchValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   DispatchInput
	}{
		{
			name: "missing subject",
			in: DispatchInput{
				Body: "b",
				Recipients: []DispatchRecipientInput{
					{Value: "ada@example.com", Channel: "email"},
				},
			},
		},
		{
			name: "no recipients",
			in:   DispatchInput{Subject: "s", Body: "b"},
		},
		{
			name: "unknown channel",
			in: DispatchInput{
				Subject: "s",
				Body:    "b",
				Recipients: []DispatchRecipientInput{
					{Value: "ada@example.com", Channel: "carrier-pigeon"},
				},
			},
		},
		{
			name: "unknown priority",
			in: DispatchInput{
				Priority: "asap",
				Subject:  "s",
				Body:     "b",
				Recipients: []DispatchRecipientInput{
					{Value: "ada@example.com", Channel: "email"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Dispatch(context.Background(), tt.in)
			if err == nil {
				t.Fatal("Dispatch = nil error, want validation error")
			}

			var gerr *goerror.Error
			if !errors.As(err, &gerr) || gerr.Type() != goerror.TypeValidation {
				t.Fatalf("error = %v, want validation type", err)
			}

			if got := f.uc.queues.Len(); got != 0 {
				t.Fatalf("queue length = %d, want nothing enqueued", got)
			}
		})
	}
}
