package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bus-booking-service/internal/domain"
	"github.com/spec-kit/bus-booking-service/internal/events"
	"github.com/spec-kit/bus-booking-service/internal/repository"
	apperrors "github.com/spec-kit/bus-booking-service/pkg/util"
)

const statsCacheKey = "stats:tickets"

// StatisticsService computes ticket counts and booked revenue, with a short
// lived Redis cache in front of the aggregate queries.
type StatisticsService struct {
	tickets  repository.TicketRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatisticsService constructs the service. cache may be nil, in which
// case every call computes from the store.
func NewStatisticsService(tickets repository.TicketRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{
		tickets:  tickets,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Compute returns statistics over all tickets. TotalRevenue sums fares of
// BOOKED tickets only; TotalTickets is derived from the status counts.
func (s *StatisticsService) Compute(ctx context.Context) (*domain.Statistics, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	revenue, err := s.tickets.SumBookedFares(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	stats := &domain.Statistics{
		TotalRevenue: revenue,
		Booked:       counts[domain.TicketStatusBooked],
		Cancelled:    counts[domain.TicketStatusCancelled],
		Completed:    counts[domain.TicketStatusCompleted],
	}
	stats.TotalTickets = stats.Booked + stats.Cancelled + stats.Completed

	s.toCache(ctx, stats)
	return stats, nil
}

// RegisterInvalidation drops the cached statistics whenever a booking or
// cancellation lands.
func (s *StatisticsService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	invalidate := func(ctx context.Context, _ events.Event) error {
		s.Invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketBooked, invalidate)
	dispatcher.Subscribe(events.EventTicketCancelled, invalidate)
}

// Invalidate removes the cached statistics.
func (s *StatisticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate statistics cache", zap.Error(err))
	}
}

func (s *StatisticsService) fromCache(ctx context.Context) *domain.Statistics {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("statistics cache read failed", zap.Error(err))
		}
		return nil
	}
	var stats domain.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("statistics cache entry corrupt", zap.Error(err))
		return nil
	}
	return &stats
}

func (s *StatisticsService) toCache(ctx context.Context, stats *domain.Statistics) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("statistics cache write failed", zap.Error(err))
	}
}
