package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/bus-booking-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketBooked    EventType = "ticket_booked"
	EventTicketCancelled EventType = "ticket_cancelled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketBookedPayload payload.
type TicketBookedPayload struct {
	PassengerName string          `json:"passenger_name"`
	Route         string          `json:"route"`
	SeatNumber    string          `json:"seat_number"`
	DepartureTime time.Time       `json:"departure_time"`
	Fare          decimal.Decimal `json:"fare"`
}

// TicketCancelledPayload payload.
type TicketCancelledPayload struct {
	Route      string              `json:"route"`
	SeatNumber string              `json:"seat_number"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
}
