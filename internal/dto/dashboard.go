package dto

import "time"

// DashboardSummary captures the aggregated admin dashboard payload.
type DashboardSummary struct {
	Date            string              `json:"date"`
	TodayTotal      int                 `json:"today_total"`
	TodayCompleted  int                 `json:"today_completed"`
	UpcomingCount   int                 `json:"upcoming_count"`
	StatusBreakdown map[string]int      `json:"status_breakdown"`
	TopServices     []ServiceBookingRow `json:"top_services"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// ServiceBookingRow is one row of the busiest-services table.
type ServiceBookingRow struct {
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	Bookings    int    `json:"bookings"`
}
