// Package health aggregates liveness checks for the service's dependencies.
// The service stays up when a check fails; the report only flips to degraded
// so operators and load balancers can see which dependency is down.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status is the aggregate or per-check health level.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is one dependency's result in a report.
type Check struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Report is the full health snapshot served on /healthz.
type Report struct {
	Status Status  `json:"status"`
	Checks []Check `json:"checks"`
}

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Manager runs all registered checkers.
type Manager struct {
	checkers []Checker
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger, checkers ...Checker) *Manager {
	return &Manager{checkers: checkers, logger: logger}
}

// Run probes every checker. Checkers are optional extras here, not critical
// path: a single failure degrades, it never reports unhealthy. Unhealthy is
// reserved for zero working search providers.
func (m *Manager) Run(ctx context.Context) Report {
	report := Report{Status: StatusHealthy}
	for _, c := range m.checkers {
		start := time.Now()
		err := c.Check(ctx)
		check := Check{
			Name:      c.Name(),
			Status:    StatusHealthy,
			LatencyMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			check.Status = StatusUnhealthy
			check.Error = err.Error()
			report.Status = StatusDegraded
			m.logger.Warn("health check failed",
				zap.String("check", c.Name()),
				zap.Error(err),
			)
		}
		report.Checks = append(report.Checks, check)
	}
	if noProviders(report.Checks) {
		report.Status = StatusUnhealthy
	}
	return report
}

func noProviders(checks []Check) bool {
	for _, c := range checks {
		if c.Name == "providers" {
			return c.Status != StatusHealthy
		}
	}
	return false
}

// Handler serves the JSON report. Degraded still returns 200; only
// unhealthy returns 503 so orchestrators restart us when search is truly
// impossible.
func (m *Manager) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		report := m.Run(ctx)
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	}
}

// RedisChecker pings the quota Redis.
type RedisChecker struct {
	rdb *redis.Client
}

func NewRedisChecker(rdb *redis.Client) *RedisChecker {
	return &RedisChecker{rdb: rdb}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// ProvidersChecker verifies at least one web search provider is configured.
type ProvidersChecker struct {
	configured []string
}

func NewProvidersChecker(configured []string) *ProvidersChecker {
	return &ProvidersChecker{configured: configured}
}

func (c *ProvidersChecker) Name() string { return "providers" }

func (c *ProvidersChecker) Check(context.Context) error {
	if len(c.configured) == 0 {
		return errors.New("no search providers configured")
	}
	return nil
}
