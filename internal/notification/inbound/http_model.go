package inbound

import (
	"time"

	"github.com/fanoutlabs/herald/internal/pkg/valueobject"
)

type DispatchRecipientRequest struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
	Channel     string `json:"channel"`
}

type DispatchRequest struct {
	Priority     string                     `json:"priority"`
	Subject      string                     `json:"subject"`
	Body         string                     `json:"body"`
	TemplateData map[string]string          `json:"template_data"`
	Recipients   []DispatchRecipientRequest `json:"recipients"`
	Metadata     valueobject.JSONMap        `json:"metadata" swaggertype:"object"`
	GroupID      string                     `json:"group_id"`
}

type DispatchResponse struct {
	ID string `json:"id"`
}

type CancelGroupRequest struct {
	GroupID    string `json:"group_id"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type GroupCancelledResponse struct {
	GroupID   string `json:"group_id"`
	Cancelled bool   `json:"cancelled"`
}

type SummaryResponse struct {
	Total     int64            `json:"total"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	Pending   int64            `json:"pending"`
	Cancelled int64            `json:"cancelled"`
	ByChannel map[string]int64 `json:"by_channel"`
}

type DailyCountResponse struct {
	Date    time.Time `json:"date"`
	Total   int64     `json:"total"`
	Success int64     `json:"success"`
	Failed  int64     `json:"failed"`
}

type DailyCountsResponse struct {
	Days []DailyCountResponse `json:"days"`
}

type GroupStatsResponse struct {
	GroupID   string `json:"group_id"`
	Total     int64  `json:"total"`
	Success   int64  `json:"success"`
	Failed    int64  `json:"failed"`
	Pending   int64  `json:"pending"`
	Cancelled int64  `json:"cancelled"`
}

type ExportResponse struct {
	URL     string `json:"url"`
	Key     string `json:"key"`
	Entries int    `json:"entries"`
}
