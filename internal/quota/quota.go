// Package quota is the injected rate-limit collaborator consulted before
// every provider call. Daily per-provider call counters live in Redis so
// every replica sees the same spend; a local token bucket additionally
// smooths burst rate per process. The store fails open: if Redis is down a
// search is still worth more than a strictly enforced quota.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Aman3189/soriva-backend-sub011/internal/dates"
	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
)

// Limits configures one provider's spend.
type Limits struct {
	DailyCalls int     // 0 disables the daily cap
	PerSecond  float64 // 0 disables the local limiter
	Burst      int
}

// Store answers "may I call this provider right now".
type Store struct {
	rdb      *redis.Client
	logger   *zap.Logger
	mu       sync.RWMutex
	limits   map[string]Limits
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

// NewStore builds a quota store. rdb may be nil, which disables daily caps
// and keeps only the local limiters.
func NewStore(rdb *redis.Client, limits map[string]Limits, logger *zap.Logger) *Store {
	s := &Store{
		rdb:      rdb,
		logger:   logger,
		limits:   limits,
		limiters: make(map[string]*rate.Limiter, len(limits)),
		now:      time.Now,
	}
	for name, l := range limits {
		if l.PerSecond > 0 {
			burst := l.Burst
			if burst <= 0 {
				burst = 1
			}
			s.limiters[name] = rate.NewLimiter(rate.Limit(l.PerSecond), burst)
		}
	}
	return s
}

// Allow reports whether one more call to the provider is within quota, and
// consumes the call if so. The local token is taken as a reservation and
// refunded when the daily cap denies the call, so a daily-exhausted provider
// does not also drain the burst budget. Redis errors are logged and treated
// as allowed.
func (s *Store) Allow(ctx context.Context, provider string) bool {
	s.mu.RLock()
	limits := s.limits[provider]
	limiter := s.limiters[provider]
	s.mu.RUnlock()

	var reservation *rate.Reservation
	if limiter != nil {
		reservation = limiter.Reserve()
		if !reservation.OK() || reservation.Delay() > 0 {
			reservation.Cancel()
			metrics.QuotaRejections.WithLabelValues(provider, "rate").Inc()
			return false
		}
	}

	if limits.DailyCalls <= 0 || s.rdb == nil {
		return true
	}

	key := s.dailyKey(provider)
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("quota store unavailable, failing open",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return true
	}
	if n == 1 {
		// First call of the day owns setting the midnight-IST expiry.
		s.rdb.ExpireAt(ctx, key, nextMidnightIST(s.now()))
	}
	if n > int64(limits.DailyCalls) {
		if reservation != nil {
			reservation.Cancel()
		}
		metrics.QuotaRejections.WithLabelValues(provider, "daily").Inc()
		s.logger.Warn("provider daily quota exhausted",
			zap.String("provider", provider),
			zap.Int64("calls", n),
			zap.Int("limit", limits.DailyCalls),
		)
		return false
	}
	return true
}

// Used returns today's call count for a provider. Zero when Redis is absent.
func (s *Store) Used(ctx context.Context, provider string) int64 {
	if s.rdb == nil {
		return 0
	}
	n, err := s.rdb.Get(ctx, s.dailyKey(provider)).Int64()
	if err != nil {
		return 0
	}
	return n
}

func (s *Store) dailyKey(provider string) string {
	day := s.now().In(dates.IST).Format("2006-01-02")
	return fmt.Sprintf("quota:%s:%s", provider, day)
}

func nextMidnightIST(now time.Time) time.Time {
	t := now.In(dates.IST)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, dates.IST)
}
