package analytics

import "time"

// Dashboard is the admin overview rollup.
type Dashboard struct {
	TotalRevenue    float64        `json:"total_revenue"`
	PaidBookings    int64          `json:"paid_bookings"`
	PendingHolds    int64          `json:"pending_holds"`
	ActiveShows     int64          `json:"active_shows"`
	RegisteredUsers int64          `json:"registered_users"`
	TopShows        []ShowRevenue  `json:"top_shows"`
	DailyRevenue    []DailyRevenue `json:"daily_revenue"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// ShowRevenue ranks a show by confirmed revenue.
type ShowRevenue struct {
	ShowID   string  `json:"show_id"`
	MovieID  string  `json:"movie_id"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}

// DailyRevenue is one day of confirmed revenue.
type DailyRevenue struct {
	Day      string  `json:"day"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}
