package entity

import "time"

type DeliverySummary struct {
	Total     int64
	Success   int64
	Failed    int64
	Pending   int64
	Cancelled int64
	ByChannel map[string]int64
}

type DailyDeliveryCount struct {
	Date    time.Time
	Total   int64
	Success int64
	Failed  int64
}

type GroupDeliveryStats struct {
	GroupID   string
	Total     int64
	Success   int64
	Failed    int64
	Pending   int64
	Cancelled int64
}
