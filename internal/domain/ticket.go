package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "BOOKED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
	TicketStatusCompleted TicketStatus = "COMPLETED"
)

// Ticket is the aggregate for one seat reservation. Cancelled and completed
// tickets are never deleted; history stays queryable.
type Ticket struct {
	ID               string
	PassengerName    string
	Route            string
	SeatNumber       string
	DepartureTime    time.Time
	Fare             decimal.Decimal
	Status           TicketStatus
	BookingTimestamp time.Time
	BookedBy         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CANCELLED and COMPLETED are terminal states.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusBooked:    {TicketStatusCancelled, TicketStatusCompleted},
	TicketStatusCancelled: {},
	TicketStatusCompleted: {},
}

// CanTransition reports whether moving from current to next is a legal
// status change.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is permitted.
func (s TicketStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}
