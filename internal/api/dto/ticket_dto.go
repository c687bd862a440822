package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/bus-booking-service/internal/domain"
)

// BookTicketRequest payload.
type BookTicketRequest struct {
	PassengerName string          `json:"passengerName"`
	Route         string          `json:"route"`
	SeatNumber    string          `json:"seatNumber"`
	DepartureTime string          `json:"departureTime"`
	Fare          decimal.Decimal `json:"fare"`
}

// TicketResponse is the wire representation of a ticket.
type TicketResponse struct {
	ID               string              `json:"id"`
	PassengerName    string              `json:"passengerName"`
	Route            string              `json:"route"`
	SeatNumber       string              `json:"seatNumber"`
	DepartureTime    time.Time           `json:"departureTime"`
	Fare             decimal.Decimal     `json:"fare"`
	Status           domain.TicketStatus `json:"status"`
	BookingTimestamp time.Time           `json:"bookingTimestamp"`
	BookedBy         string              `json:"bookedBy"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               ticket.ID,
		PassengerName:    ticket.PassengerName,
		Route:            ticket.Route,
		SeatNumber:       ticket.SeatNumber,
		DepartureTime:    ticket.DepartureTime,
		Fare:             ticket.Fare,
		Status:           ticket.Status,
		BookingTimestamp: ticket.BookingTimestamp,
		BookedBy:         ticket.BookedBy,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
}

// NewTicketListResponse maps a slice of domain tickets preserving order.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
