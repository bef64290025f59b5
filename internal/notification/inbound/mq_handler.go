package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/fanoutlabs/herald/internal/notification/usecase"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/fanoutlabs/herald/internal/pkg/messaging"
	"github.com/fanoutlabs/herald/internal/pkg/uid"
	"github.com/fanoutlabs/herald/internal/pkg/valueobject"
	"github.com/fanoutlabs/herald/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, attrs map[string]string) context.Context {
	if cID, ok := attrs[keyOfCorrelationID]; ok && cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// DispatchNotification consumes dispatch requests published by other services.
func (h *MQHandler) DispatchNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Attributes())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "DispatchNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: notification dispatch", "msg_body", string(body))

	var payload event.DispatchMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of notification dispatch",
			"msg_body", string(body), "error", err)
		return nil
	}

	recipients := make([]usecase.DispatchRecipientInput, 0, len(payload.Recipients))
	for _, rcpt := range payload.Recipients {
		recipients = append(recipients, usecase.DispatchRecipientInput{
			Value:       rcpt.Value,
			DisplayName: rcpt.DisplayName,
			Channel:     rcpt.Channel,
		})
	}

	if _, err := h.uc.Dispatch(ctx, usecase.DispatchInput{
		Priority:     payload.Priority,
		Subject:      payload.Subject,
		Body:         payload.Body,
		TemplateData: payload.TemplateData,
		Recipients:   recipients,
		Metadata:     valueobject.JSONMap(payload.Metadata),
		GroupID:      payload.GroupID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch consumed notification",
			"msg_body", string(body), "error", err)
		return err
	}

	return nil
}
