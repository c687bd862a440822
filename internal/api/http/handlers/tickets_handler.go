package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bus-booking-service/internal/api/dto"
	"github.com/spec-kit/bus-booking-service/internal/auth"
	"github.com/spec-kit/bus-booking-service/internal/service"
	apperrors "github.com/spec-kit/bus-booking-service/pkg/util"
)

// TicketsHandler exposes booking, listing, cancellation and statistics
// endpoints.
type TicketsHandler struct {
	bookings *service.BookingService
	stats    *service.StatisticsService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(bookings *service.BookingService, stats *service.StatisticsService) *TicketsHandler {
	return &TicketsHandler{bookings: bookings, stats: stats}
}

// Book POST /tickets/book.
func (h *TicketsHandler) Book(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BookTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return apperrors.NewValidationError("invalid departure time",
			apperrors.FieldError{Field: "departureTime", Message: "Valid departure time is required"})
	}

	ticket, err := h.bookings.Book(c.Context(), principal.UserID, service.BookingInput{
		PassengerName: req.PassengerName,
		Route:         req.Route,
		SeatNumber:    req.SeatNumber,
		DepartureTime: departure,
		Fare:          req.Fare,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// ListAll GET /tickets/all.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	tickets, err := h.bookings.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tickets": dto.NewTicketListResponse(tickets),
	})
}

// ListByRoute GET /tickets/byRoute.
func (h *TicketsHandler) ListByRoute(c *fiber.Ctx) error {
	tickets, err := h.bookings.ListByRoute(c.Context(), c.Query("route"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tickets": dto.NewTicketListResponse(tickets),
	})
}

// ListSortedByDate GET /tickets/sortedByDate.
func (h *TicketsHandler) ListSortedByDate(c *fiber.Ctx) error {
	tickets, err := h.bookings.ListSortedByDate(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"tickets": dto.NewTicketListResponse(tickets),
	})
}

// Cancel PUT /tickets/cancel/:id.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.bookings.Cancel(c.Context(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// Statistics GET /tickets/statistics.
func (h *TicketsHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.stats.Compute(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"statistics": stats,
	})
}
