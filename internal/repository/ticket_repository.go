package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/bus-booking-service/internal/domain"
)

// ErrSeatConflict is returned when an insert collides with the partial unique
// index over (route, seat_number, departure_time) for BOOKED tickets.
var ErrSeatConflict = errors.New("seat already booked for route and departure time")

const uniqueViolationCode = "23505"

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateStatusFrom flips status only when the current status matches;
	// returns pgx.ErrNoRows when the guard fails or the id is unknown.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.TicketStatus) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByRoute(ctx context.Context, route string) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
	SumBookedFares(ctx context.Context) (decimal.Decimal, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, passenger_name, route, seat_number, departure_time,
               fare, status, booking_timestamp, booked_by, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (passenger_name, route, seat_number, departure_time, fare, status, booking_timestamp, booked_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.PassengerName,
		ticket.Route,
		ticket.SeatNumber,
		ticket.DepartureTime,
		ticket.Fare,
		ticket.Status,
		ticket.BookingTimestamp,
		ticket.BookedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrSeatConflict
		}
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.TicketStatus) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$2
        RETURNING ` + ticketColumns
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id, from, to).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets ORDER BY booking_timestamp DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByRoute(ctx context.Context, route string) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `
        FROM tickets WHERE route=$1 ORDER BY booking_timestamp DESC`
	rows, err := r.pool.Query(ctx, query, route)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) SumBookedFares(ctx context.Context) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(fare), 0) FROM tickets WHERE status=$1`
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, domain.TicketStatusBooked).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func ticketFields(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.PassengerName,
		&t.Route,
		&t.SeatNumber,
		&t.DepartureTime,
		&t.Fare,
		&t.Status,
		&t.BookingTimestamp,
		&t.BookedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
