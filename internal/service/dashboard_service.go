package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

const overdueCacheKey = "dashboard:vencidos"

// DashboardService keeps the overdue snapshot shown on the home screen
type DashboardService struct {
	DuplicataRepo repository.DuplicataRepository
	redis         redis.Cmdable
	clock         utils.Clock
	ttl           time.Duration
	log           zerolog.Logger
}

func NewDashboardService(duplicataRepo repository.DuplicataRepository, client redis.Cmdable, clock utils.Clock, ttl time.Duration) *DashboardService {
	return &DashboardService{
		DuplicataRepo: duplicataRepo,
		redis:         client,
		clock:         clock,
		ttl:           ttl,
		log:           logger.WithComponent("dashboard"),
	}
}

// RefreshOverdue recomputes the snapshot and stores it in redis
func (s *DashboardService) RefreshOverdue(ctx context.Context) (*domain.OverdueSummary, error) {
	today := s.clock.Today()
	summary, err := s.DuplicataRepo.OverdueSummary(ctx, today)
	if err != nil {
		return nil, wrapRepoError(err, "overdue summary", today)
	}
	summary.ReferenceDate = today

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, overdueCacheKey, payload, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache overdue summary")
	}

	s.log.Info().
		Int("count", summary.Count).
		Str("total", summary.Total.StringFixed(2)).
		Msg("Overdue summary refreshed")

	return summary, nil
}

// Overdue serves the cached snapshot when it is from today
func (s *DashboardService) Overdue(ctx context.Context) (*domain.OverdueSummary, error) {
	raw, err := s.redis.Get(ctx, overdueCacheKey).Bytes()
	if err == nil {
		var summary domain.OverdueSummary
		if jsonErr := json.Unmarshal(raw, &summary); jsonErr == nil && summary.ReferenceDate == s.clock.Today() {
			return &summary, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Failed to read overdue summary from cache")
	}

	return s.RefreshOverdue(ctx)
}
