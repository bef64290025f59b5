package inbound

import (
	"net/http"

	"github.com/fanoutlabs/herald/internal/pkg/idempotency"
	"github.com/fanoutlabs/herald/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, idem *idempotency.StateTracker) {
	end := &HTTPEndpoint{uc: uc, idem: idem}

	r.POST("/api/v1/notifications", end.Dispatch)
	r.POST("/api/v1/notifications/cancel", end.CancelGroup)
	r.GET("/api/v1/notifications/groups/:id/cancelled", end.IsGroupCancelled)

	r.GET("/api/v1/notifications/reports/summary", end.Summary)
	r.GET("/api/v1/notifications/reports/daily", end.DailyCounts)
	r.GET("/api/v1/notifications/reports/groups/:id", end.GroupStats)
	r.GET("/api/v1/notifications/reports/export", end.Export)

	r.GETRaw("/api/v1/notifications/stream", http.HandlerFunc(end.StreamDeliveryEvents))
	r.GETRaw("/api/v1/notifications/realtime", http.HandlerFunc(end.StreamRealtime))
}
