package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/bus-booking-service/internal/api/http"
	"github.com/spec-kit/bus-booking-service/internal/api/http/handlers"
	"github.com/spec-kit/bus-booking-service/internal/auth"
	"github.com/spec-kit/bus-booking-service/internal/config"
	"github.com/spec-kit/bus-booking-service/internal/domain"
	"github.com/spec-kit/bus-booking-service/internal/persistence"
	"github.com/spec-kit/bus-booking-service/internal/repository"
	"github.com/spec-kit/bus-booking-service/internal/service"
)

// stubTicketRepo implements repository.TicketRepository with overridable
// behavior per test.
type stubTicketRepo struct {
	createFn         func(context.Context, *domain.Ticket) error
	getByIDFn        func(context.Context, string) (*domain.Ticket, error)
	updateStatusFn   func(context.Context, string, domain.TicketStatus, domain.TicketStatus) (*domain.Ticket, error)
	listAllFn        func(context.Context) ([]domain.Ticket, error)
	listByRouteFn    func(context.Context, string) ([]domain.Ticket, error)
	countByStatusFn  func(context.Context) (map[domain.TicketStatus]int64, error)
	sumBookedFaresFn func(context.Context) (decimal.Decimal, error)
}

func (s *stubTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	if s.createFn == nil {
		t.ID = "aaaaaaaa-0000-0000-0000-000000000001"
		return nil
	}
	return s.createFn(ctx, t)
}

func (s *stubTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if s.getByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubTicketRepo) UpdateStatusFrom(ctx context.Context, id string, from, to domain.TicketStatus) (*domain.Ticket, error) {
	if s.updateStatusFn == nil {
		return nil, pgx.ErrNoRows
	}
	return s.updateStatusFn(ctx, id, from, to)
}

func (s *stubTicketRepo) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	if s.listAllFn == nil {
		return []domain.Ticket{}, nil
	}
	return s.listAllFn(ctx)
}

func (s *stubTicketRepo) ListByRoute(ctx context.Context, route string) ([]domain.Ticket, error) {
	if s.listByRouteFn == nil {
		return []domain.Ticket{}, nil
	}
	return s.listByRouteFn(ctx, route)
}

func (s *stubTicketRepo) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	if s.countByStatusFn == nil {
		return map[domain.TicketStatus]int64{}, nil
	}
	return s.countByStatusFn(ctx)
}

func (s *stubTicketRepo) SumBookedFares(ctx context.Context) (decimal.Decimal, error) {
	if s.sumBookedFaresFn == nil {
		return decimal.Zero, nil
	}
	return s.sumBookedFaresFn(ctx)
}

type stubUserRepo struct {
	createFn     func(context.Context, *domain.User) error
	getByEmailFn func(context.Context, string) (*domain.User, error)
}

func (s *stubUserRepo) Create(ctx context.Context, u *domain.User) error {
	if s.createFn == nil {
		u.ID = "bbbbbbbb-0000-0000-0000-000000000001"
		return nil
	}
	return s.createFn(ctx, u)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.getByEmailFn == nil {
		return nil, pgx.ErrNoRows
	}
	return s.getByEmailFn(ctx, email)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:           "test-secret",
		AccessTokenTTLHours: 1,
		BcryptCost:          bcrypt.MinCost,
	}
}

func newTestApp(t *testing.T, tickets repository.TicketRepository, users repository.UserRepository) (*fiber.App, *service.AuthService) {
	t.Helper()

	logger := zap.NewNop()
	authService := service.NewAuthService(testAuthConfig(), users)
	bookingService := service.NewBookingService(service.BookingDependencies{TicketRepo: tickets})
	statsService := service.NewStatisticsService(tickets, nil, 0, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, nil, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(bookingService, statsService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})
	return app, authService
}

func bearerToken(t *testing.T, authService *service.AuthService, role domain.Role) string {
	t.Helper()
	token, _, err := authService.TokenManager().GenerateToken(&domain.User{
		ID:    "user-1",
		Email: "asha@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func bookRequestBody() map[string]any {
	return map[string]any{
		"passengerName": "Asha",
		"route":         "Chennai - Bangalore",
		"seatNumber":    "A1",
		"departureTime": "2025-01-01T10:00:00Z",
		"fare":          500,
	}
}

func TestBookRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})

	status, payload := doJSON(t, app, http.MethodPost, "/tickets/book", "", bookRequestBody())
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, payload["success"])
	assert.NotEmpty(t, payload["message"])
}

func TestBookCreated(t *testing.T) {
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodPost, "/tickets/book", token, bookRequestBody())
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, payload["success"])

	ticket := payload["ticket"].(map[string]any)
	assert.Equal(t, string(domain.TicketStatusBooked), ticket["status"])
	assert.Equal(t, "user-1", ticket["bookedBy"])
	assert.Equal(t, "A1", ticket["seatNumber"])
}

func TestBookSeatConflictMapsTo409(t *testing.T) {
	repo := &stubTicketRepo{
		createFn: func(context.Context, *domain.Ticket) error {
			return repository.ErrSeatConflict
		},
	}
	app, authService := newTestApp(t, repo, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodPost, "/tickets/book", token, bookRequestBody())
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, payload["success"])
}

func TestBookValidationErrors(t *testing.T) {
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	body := bookRequestBody()
	body["fare"] = 0
	body["passengerName"] = "  "

	status, payload := doJSON(t, app, http.MethodPost, "/tickets/book", token, body)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, payload["success"])

	fieldErrors := payload["errors"].([]any)
	assert.Len(t, fieldErrors, 2)
}

func TestBookBadDepartureTime(t *testing.T) {
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	body := bookRequestBody()
	body["departureTime"] = "tomorrow"

	status, _ := doJSON(t, app, http.MethodPost, "/tickets/book", token, body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListByRouteRequiresParam(t *testing.T) {
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodGet, "/tickets/byRoute", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, payload["success"])
}

func TestListByRouteEmptyResult(t *testing.T) {
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodGet, "/tickets/byRoute?route=NoSuchRoute", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, payload["success"])
	assert.Empty(t, payload["tickets"])
}

func TestListAllOrderingPreserved(t *testing.T) {
	now := time.Now().UTC()
	repo := &stubTicketRepo{
		listAllFn: func(context.Context) ([]domain.Ticket, error) {
			return []domain.Ticket{
				{ID: "t2", BookingTimestamp: now},
				{ID: "t1", BookingTimestamp: now.Add(-time.Hour)},
			}, nil
		},
	}
	app, authService := newTestApp(t, repo, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	for _, path := range []string{"/tickets/all", "/tickets/sortedByDate"} {
		status, payload := doJSON(t, app, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, status, path)

		tickets := payload["tickets"].([]any)
		require.Len(t, tickets, 2, path)
		assert.Equal(t, "t2", tickets[0].(map[string]any)["id"], path)
	}
}

func TestCancelInvalidIDForm(t *testing.T) {
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodPut, "/tickets/cancel/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, payload["success"])
}

func TestCancelNotFoundAndInvalidState(t *testing.T) {
	id := "cccccccc-0000-0000-0000-000000000001"

	// Unknown id: guard fails and lookup finds nothing.
	app, authService := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)
	status, _ := doJSON(t, app, http.MethodPut, "/tickets/cancel/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Already cancelled: guard fails but the ticket exists.
	repo := &stubTicketRepo{
		getByIDFn: func(context.Context, string) (*domain.Ticket, error) {
			return &domain.Ticket{ID: id, Status: domain.TicketStatusCancelled}, nil
		},
	}
	app, authService = newTestApp(t, repo, &stubUserRepo{})
	token = bearerToken(t, authService, domain.RoleCustomer)
	status, payload := doJSON(t, app, http.MethodPut, "/tickets/cancel/"+id, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, payload["message"], "BOOKED")
}

func TestCancelSucceeds(t *testing.T) {
	id := "dddddddd-0000-0000-0000-000000000001"
	repo := &stubTicketRepo{
		updateStatusFn: func(_ context.Context, gotID string, from, to domain.TicketStatus) (*domain.Ticket, error) {
			return &domain.Ticket{ID: gotID, Status: to}, nil
		},
	}
	app, authService := newTestApp(t, repo, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodPut, "/tickets/cancel/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)

	ticket := payload["ticket"].(map[string]any)
	assert.Equal(t, string(domain.TicketStatusCancelled), ticket["status"])
}

func TestStatisticsEndpoint(t *testing.T) {
	repo := &stubTicketRepo{
		countByStatusFn: func(context.Context) (map[domain.TicketStatus]int64, error) {
			return map[domain.TicketStatus]int64{
				domain.TicketStatusBooked:    1,
				domain.TicketStatusCancelled: 1,
			}, nil
		},
		sumBookedFaresFn: func(context.Context) (decimal.Decimal, error) {
			return decimal.NewFromInt(500), nil
		},
	}
	app, authService := newTestApp(t, repo, &stubUserRepo{})
	token := bearerToken(t, authService, domain.RoleCustomer)

	status, payload := doJSON(t, app, http.MethodGet, "/tickets/statistics", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, payload["success"])

	stats := payload["statistics"].(map[string]any)
	assert.Equal(t, float64(1), stats["booked"])
	assert.Equal(t, float64(1), stats["cancelled"])
	assert.Equal(t, float64(0), stats["completed"])
	assert.Equal(t, float64(2), stats["totalTickets"])
	assert.Equal(t, "500", stats["totalRevenue"])
}

func TestRegisterAndLoginEnvelope(t *testing.T) {
	app, _ := newTestApp(t, &stubTicketRepo{}, &stubUserRepo{})

	status, payload := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, payload["success"])
	assert.NotEmpty(t, payload["token"])

	user := payload["user"].(map[string]any)
	assert.Equal(t, string(domain.RoleCustomer), user["role"])
	assert.NotContains(t, user, "passwordHash")

	// Unknown account logs in as 401, not 404.
	status, payload = doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ghost@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, payload["success"])
}

func TestRoleGateMiddleware(t *testing.T) {
	authService := service.NewAuthService(testAuthConfig(), &stubUserRepo{})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/admin/ping",
		authMiddleware.Handle,
		auth.RequireRoles(domain.RoleAdmin, domain.RoleOperator),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"success": true})
		})

	customer := bearerToken(t, authService, domain.RoleCustomer)
	status, payload := doJSON(t, app, http.MethodGet, "/admin/ping", customer, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, payload["success"])

	operator := bearerToken(t, authService, domain.RoleOperator)
	status, _ = doJSON(t, app, http.MethodGet, "/admin/ping", operator, nil)
	assert.Equal(t, http.StatusOK, status)
}
