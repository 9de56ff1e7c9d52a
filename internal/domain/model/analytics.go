package model

type DailyBookingCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ServiceRevenue struct {
	Service string `json:"service"`
	Revenue int64  `json:"revenue"`
}

type TodaySummary struct {
	Bookings       int   `json:"bookings"`
	Revenue        int64 `json:"revenue"`
	PendingActions int   `json:"pendingActions"`
}

type HeroMetrics struct {
	TotalBookings  int     `json:"totalBookings"`
	MonthlyRevenue int64   `json:"monthlyRevenue"`
	CompletionRate float64 `json:"completionRate"`
}
