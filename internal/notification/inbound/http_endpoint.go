package inbound

import (
	"context"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/usecase"
	"github.com/fanoutlabs/herald/internal/pkg/idempotency"
	"github.com/fanoutlabs/herald/internal/pkg/router"
)

const headerIdempotencyKey = "Idempotency-Key"

type HTTPEndpoint struct {
	uc   uc
	idem *idempotency.StateTracker
}

// Dispatch accepts a notification request and queues it for delivery.
// @Summary Dispatch notification
// @Description Validates and queues a notification for asynchronous delivery.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Optional idempotency key"
// @Param request body DispatchRequest true "Dispatch payload"
// @Success 200 {object} router.successResponse{data=DispatchResponse} "Queued payload id"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications [post]
func (h *HTTPEndpoint) Dispatch(r *router.Request) (any, error) {
	var req DispatchRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	recipients := make([]usecase.DispatchRecipientInput, 0, len(req.Recipients))
	for _, rcpt := range req.Recipients {
		recipients = append(recipients, usecase.DispatchRecipientInput{
			Value:       rcpt.Value,
			DisplayName: rcpt.DisplayName,
			Channel:     rcpt.Channel,
		})
	}

	in := usecase.DispatchInput{
		Priority:     req.Priority,
		Subject:      req.Subject,
		Body:         req.Body,
		TemplateData: req.TemplateData,
		Recipients:   recipients,
		Metadata:     req.Metadata,
		GroupID:      req.GroupID,
	}

	var id string
	idemKey := r.Header.Get(headerIdempotencyKey)
	if idemKey != "" && h.idem != nil {
		err := h.idem.Exec(r.Context(), idemKey, func(ctx context.Context) error {
			var dErr error
			id, dErr = h.uc.Dispatch(ctx, in)
			return dErr
		})
		if err != nil {
			return nil, err
		}
		return DispatchResponse{ID: id}, nil
	}

	id, err := h.uc.Dispatch(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return DispatchResponse{ID: id}, nil
}

// CancelGroup marks a notification group as cancelled.
// @Summary Cancel notification group
// @Description Marks every pending notification in the group as cancelled.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body CancelGroupRequest true "Cancellation payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/cancel [post]
func (h *HTTPEndpoint) CancelGroup(r *router.Request) (any, error) {
	var req CancelGroupRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.CancelGroup(r.Context(), usecase.CancelGroupInput{
		GroupID: req.GroupID,
		TTL:     time.Duration(req.TTLMinutes) * time.Minute,
	})
}

// IsGroupCancelled reports whether a group is cancelled.
// @Summary Check group cancellation
// @Description Returns the cached cancellation state of a group.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} router.successResponse{data=GroupCancelledResponse} "Cancellation state"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/groups/{id}/cancelled [get]
func (h *HTTPEndpoint) IsGroupCancelled(r *router.Request) (any, error) {
	groupID := r.GetParam("id")

	cancelled, err := h.uc.IsGroupCancelled(r.Context(), groupID)
	if err != nil {
		return nil, err
	}

	return GroupCancelledResponse{GroupID: groupID, Cancelled: cancelled}, nil
}

// Summary returns aggregate delivery statistics.
// @Summary Delivery summary
// @Description Returns delivery outcome totals across the whole log.
// @Tags Report
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=SummaryResponse} "Delivery summary"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/reports/summary [get]
func (h *HTTPEndpoint) Summary(r *router.Request) (any, error) {
	sum, err := h.uc.Summary(r.Context())
	if err != nil {
		return nil, err
	}

	return SummaryResponse{
		Total:     sum.Total,
		Success:   sum.Success,
		Failed:    sum.Failed,
		Pending:   sum.Pending,
		Cancelled: sum.Cancelled,
		ByChannel: sum.ByChannel,
	}, nil
}

// DailyCounts returns per-day delivery totals.
// @Summary Daily delivery counts
// @Description Returns per-day delivery totals for the requested window.
// @Tags Report
// @Security BearerAuth
// @Produce json
// @Param days query int false "Number of days (default 7)"
// @Success 200 {object} router.successResponse{data=DailyCountsResponse} "Daily counts"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/reports/daily [get]
func (h *HTTPEndpoint) DailyCounts(r *router.Request) (any, error) {
	days, err := r.GetQueryInt("days")
	if err != nil {
		return nil, err
	}

	counts, err := h.uc.DailyCounts(r.Context(), days)
	if err != nil {
		return nil, err
	}

	resp := make([]DailyCountResponse, 0, len(counts))
	for _, c := range counts {
		resp = append(resp, DailyCountResponse{
			Date:    c.Date,
			Total:   c.Total,
			Success: c.Success,
			Failed:  c.Failed,
		})
	}

	return DailyCountsResponse{Days: resp}, nil
}

// GroupStats returns delivery statistics for one group.
// @Summary Group delivery stats
// @Description Returns delivery outcome totals for one notification group.
// @Tags Report
// @Security BearerAuth
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} router.successResponse{data=GroupStatsResponse} "Group stats"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/reports/groups/{id} [get]
func (h *HTTPEndpoint) GroupStats(r *router.Request) (any, error) {
	stats, err := h.uc.GroupStats(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return GroupStatsResponse{
		GroupID:   stats.GroupID,
		Total:     stats.Total,
		Success:   stats.Success,
		Failed:    stats.Failed,
		Pending:   stats.Pending,
		Cancelled: stats.Cancelled,
	}, nil
}

// Export exports delivery logs as CSV.
// @Summary Export delivery logs
// @Description Exports delivery log entries in the date range to object storage and returns a download URL.
// @Tags Report
// @Security BearerAuth
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} router.successResponse{data=ExportResponse} "Export location"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/reports/export [get]
func (h *HTTPEndpoint) Export(r *router.Request) (any, error) {
	from, err := r.GetQueryDate("from", time.DateOnly)
	if err != nil {
		return nil, err
	}
	to, err := r.GetQueryDate("to", time.DateOnly)
	if err != nil {
		return nil, err
	}

	// The range is inclusive of the whole end day.
	out, err := h.uc.Export(r.Context(), usecase.ExportInput{
		From: from,
		To:   to.Add(24*time.Hour - time.Nanosecond),
	})
	if err != nil {
		return nil, err
	}

	return ExportResponse{URL: out.URL, Key: out.Key, Entries: out.Entries}, nil
}
