package usecase

import (
	"context"
	"log/slog"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/goerror"
	"github.com/fanoutlabs/herald/internal/pkg/valueobject"
	"github.com/samber/lo"
)

type DispatchRecipientInput struct {
	Value       string `validate:"required"`
	DisplayName string
	Channel     string `validate:"required,channel"`
}

type DispatchInput struct {
	Priority     string `validate:"omitempty,priority"`
	Subject      string `validate:"required"`
	Body         string `validate:"required"`
	TemplateData map[string]string
	Recipients   []DispatchRecipientInput `validate:"required,min=1,dive"`
	Metadata     valueobject.JSONMap
	GroupID      string
}

// Dispatch validates the request and enqueues one payload for the delivery
// worker. It is fire-and-forget: the returned id correlates later log
// entries, not a delivery result.
func (s *Usecase) Dispatch(ctx context.Context, in DispatchInput) (string, error) {
	ctx, span := s.startSpan(ctx, "Dispatch")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	recipients := lo.UniqBy(in.Recipients, func(r DispatchRecipientInput) string {
		return entity.ChannelFromString(r.Channel).String() + "|" + r.Value
	})

	payload := &entity.Payload{
		ID:           s.uuid.Generate(),
		Priority:     entity.PriorityFromString(in.Priority),
		Subject:      in.Subject,
		Body:         in.Body,
		TemplateData: in.TemplateData,
		Recipients: lo.Map(recipients, func(r DispatchRecipientInput, _ int) entity.Recipient {
			return entity.Recipient{
				Value:       r.Value,
				DisplayName: r.DisplayName,
				Channel:     entity.ChannelFromString(r.Channel),
			}
		}),
		Metadata: in.Metadata,
		GroupID:  in.GroupID,
	}

	s.queues.Enqueue(payload)

	slog.InfoContext(ctx, "notification payload queued",
		"payload_id", payload.ID,
		"priority", payload.Priority.String(),
		"recipients", len(payload.Recipients),
		"group_id", payload.GroupID,
	)

	return payload.ID, nil
}
