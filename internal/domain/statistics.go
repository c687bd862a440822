package domain

import "github.com/shopspring/decimal"

// Statistics aggregates ticket counts and booked revenue. TotalRevenue sums
// fares of BOOKED tickets only; TotalTickets is the derived sum of the three
// status counts.
type Statistics struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalTickets int64           `json:"totalTickets"`
	Booked       int64           `json:"booked"`
	Cancelled    int64           `json:"cancelled"`
	Completed    int64           `json:"completed"`
}
