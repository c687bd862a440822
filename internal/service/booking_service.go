package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/bus-booking-service/internal/domain"
	"github.com/spec-kit/bus-booking-service/internal/events"
	"github.com/spec-kit/bus-booking-service/internal/observability"
	"github.com/spec-kit/bus-booking-service/internal/repository"
	apperrors "github.com/spec-kit/bus-booking-service/pkg/util"
)

// BookingService coordinates booking, listing and cancellation workflows.
type BookingService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// BookingInput describes a booking request.
type BookingInput struct {
	PassengerName string
	Route         string
	SeatNumber    string
	DepartureTime time.Time
	Fare          decimal.Decimal
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// Book validates the input and persists a BOOKED ticket attributed to the
// acting user. Seat uniqueness is enforced by the store at insert time; there
// is no read-then-write window between the conflict check and the create.
func (s *BookingService) Book(ctx context.Context, actingUserID string, input BookingInput) (*domain.Ticket, error) {
	if err := validateBookingInput(&input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		PassengerName:    input.PassengerName,
		Route:            input.Route,
		SeatNumber:       input.SeatNumber,
		DepartureTime:    input.DepartureTime.UTC(),
		Fare:             input.Fare,
		Status:           domain.TicketStatusBooked,
		BookingTimestamp: time.Now().UTC(),
		BookedBy:         actingUserID,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			s.metrics.RecordSeatConflict()
			return nil, apperrors.NewConflict("this seat is already booked for the selected route and departure time")
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordBooking()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketBooked,
		TicketID: ticket.ID,
		ActorID:  actingUserID,
		Payload: events.TicketBookedPayload{
			PassengerName: ticket.PassengerName,
			Route:         ticket.Route,
			SeatNumber:    ticket.SeatNumber,
			DepartureTime: ticket.DepartureTime,
			Fare:          ticket.Fare,
		},
	})
	return ticket, nil
}

// ListAll returns every ticket, newest booking first.
func (s *BookingService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// ListByRoute returns tickets matching the route exactly, newest booking
// first. A route with no tickets yields an empty list, not an error.
func (s *BookingService) ListByRoute(ctx context.Context, route string) ([]domain.Ticket, error) {
	if strings.TrimSpace(route) == "" {
		return nil, apperrors.NewValidationError("route query is required",
			apperrors.FieldError{Field: "route", Message: "Route query is required"})
	}
	tickets, err := s.tickets.ListByRoute(ctx, route)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// ListSortedByDate returns the same ordering as ListAll. Kept as a distinct
// operation because it is a distinct public capability.
func (s *BookingService) ListSortedByDate(ctx context.Context) ([]domain.Ticket, error) {
	return s.ListAll(ctx)
}

// Cancel transitions a BOOKED ticket to CANCELLED. The guard runs as a single
// compare-and-set statement; re-cancelling deterministically fails.
func (s *BookingService) Cancel(ctx context.Context, actingUserID, ticketID string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, apperrors.NewValidationError("valid ticket id is required",
			apperrors.FieldError{Field: "id", Message: "Valid ticket ID is required"})
	}

	ticket, err := s.tickets.UpdateStatusFrom(ctx, ticketID, domain.TicketStatusBooked, domain.TicketStatusCancelled)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(err)
		}
		// Guard failed: tell absence apart from an illegal transition.
		if _, lookupErr := s.tickets.GetByID(ctx, ticketID); lookupErr != nil {
			if errors.Is(lookupErr, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("ticket")
			}
			return nil, apperrors.NewInternalError(lookupErr)
		}
		return nil, apperrors.NewInvalidState("only BOOKED tickets can be cancelled")
	}

	s.metrics.RecordCancellation()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCancelled,
		TicketID: ticket.ID,
		ActorID:  actingUserID,
		Payload: events.TicketCancelledPayload{
			Route:      ticket.Route,
			SeatNumber: ticket.SeatNumber,
			OldStatus:  domain.TicketStatusBooked,
			NewStatus:  ticket.Status,
		},
	})
	return ticket, nil
}

func validateBookingInput(input *BookingInput) error {
	var fields []apperrors.FieldError

	input.PassengerName = strings.TrimSpace(input.PassengerName)
	input.Route = strings.TrimSpace(input.Route)
	input.SeatNumber = strings.TrimSpace(input.SeatNumber)

	if input.PassengerName == "" {
		fields = append(fields, apperrors.FieldError{Field: "passengerName", Message: "Passenger name is required"})
	}
	if input.Route == "" {
		fields = append(fields, apperrors.FieldError{Field: "route", Message: "Route is required"})
	}
	if input.SeatNumber == "" {
		fields = append(fields, apperrors.FieldError{Field: "seatNumber", Message: "Seat number is required"})
	}
	if input.DepartureTime.IsZero() {
		fields = append(fields, apperrors.FieldError{Field: "departureTime", Message: "Valid departure time is required"})
	}
	if !input.Fare.IsPositive() {
		fields = append(fields, apperrors.FieldError{Field: "fare", Message: "Fare must be a positive number"})
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid booking input", fields...)
	}
	return nil
}

func (s *BookingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
