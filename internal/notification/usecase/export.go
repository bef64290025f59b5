package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/goerror"
	"github.com/fanoutlabs/herald/internal/pkg/storage"
)

const exportPresignExpiry = 15 * time.Minute

type ExportInput struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required"`
}

type ExportOutput struct {
	URL     string
	Key     string
	Entries int
}

// Export writes the delivery log entries in [From, To] as a CSV object and
// returns a presigned download URL.
func (s *Usecase) Export(ctx context.Context, in ExportInput) (ExportOutput, error) {
	ctx, span := s.startSpan(ctx, "Export")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return ExportOutput{}, goerror.NewInvalidInput(err)
	}
	if in.To.Before(in.From) {
		return ExportOutput{}, goerror.NewInvalidInput(nil, "to", "must not be before from")
	}

	if s.repoDB == nil {
		return ExportOutput{}, goerror.NewBusiness("delivery log storage is not configured", goerror.CodeNotFound)
	}
	if s.blob == nil {
		return ExportOutput{}, goerror.NewBusiness("object storage is not configured", goerror.CodeNotFound)
	}

	entries, err := s.repoDB.ListByDateRange(ctx, in.From, in.To)
	if err != nil {
		return ExportOutput{}, err
	}

	buf, err := encodeDeliveryLogCSV(entries)
	if err != nil {
		return ExportOutput{}, goerror.NewServer(err)
	}

	bucket := s.exportBucket
	key := fmt.Sprintf("exports/delivery-logs-%s-%s-%s.csv",
		in.From.Format("20060102"), in.To.Format("20060102"), s.oid.Generate())

	if _, err := s.blob.PutObject(ctx, bucket, key, buf, storage.PutOptions{
		Size:        int64(buf.Len()),
		ContentType: "text/csv",
	}); err != nil {
		return ExportOutput{}, goerror.NewServer(err)
	}

	url, err := s.blob.PresignGet(ctx, bucket, key, exportPresignExpiry)
	if err != nil {
		return ExportOutput{}, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "delivery log export created",
		"key", key, "entries", len(entries))

	return ExportOutput{URL: url, Key: key, Entries: len(entries)}, nil
}

func encodeDeliveryLogCSV(entries []entity.DeliveryLog) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"id", "correlation_id", "group_id", "recipient", "display_name",
		"channel", "priority", "subject", "is_success", "is_cancelled",
		"error_message", "retry_count", "created_at", "sent_at",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		sentAt := ""
		if e.SentAt != nil {
			sentAt = e.SentAt.Format(time.RFC3339)
		}

		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.CorrelationID,
			e.GroupID,
			e.Recipient,
			e.DisplayName,
			e.Channel.String(),
			e.Priority.String(),
			e.Subject,
			strconv.FormatBool(e.IsSuccess),
			strconv.FormatBool(e.IsCancelled),
			e.ErrorMessage,
			strconv.FormatInt(int64(e.RetryCount), 10),
			e.CreatedAt.Format(time.RFC3339),
			sentAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf, w.Error()
}
