package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
)

// ErrCircuitOpen is returned while a provider's breaker is cooling down.
var ErrCircuitOpen = errors.New("provider circuit open")

// BreakerConfig tunes the per-provider circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32        // consecutive failures that open the circuit
	Cooldown         time.Duration // open duration before probing again
	HalfOpenProbes   uint32        // probes allowed while half-open
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		HalfOpenProbes:   2,
	}
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// breaker wraps a Provider and fails fast once the backend looks down, so a
// dead provider costs the pipeline one mutex hit instead of a full timeout.
type breaker struct {
	inner  Provider
	cfg    BreakerConfig
	logger *zap.Logger

	mu        sync.Mutex
	state     breakerState
	failures  uint32
	probes    uint32
	successes uint32
	openedAt  time.Time
	now       func() time.Time
}

// WithBreaker decorates a provider with a circuit breaker. Zero-valued cfg
// fields fall back to defaults.
func WithBreaker(p Provider, cfg BreakerConfig, logger *zap.Logger) Provider {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.HalfOpenProbes == 0 {
		cfg.HalfOpenProbes = def.HalfOpenProbes
	}
	return &breaker{inner: p, cfg: cfg, logger: logger, now: time.Now}
}

func (b *breaker) Name() string { return b.inner.Name() }

func (b *breaker) Search(ctx context.Context, q Query) (*Result, error) {
	if !b.allow() {
		metrics.ProviderCalls.WithLabelValues(b.inner.Name(), "circuit_open").Inc()
		return nil, ErrCircuitOpen
	}
	res, err := b.inner.Search(ctx, q)
	b.observe(err == nil)
	return res, err
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.transition(breakerHalfOpen)
		b.probes = 1
		return true
	default: // half-open
		if b.probes >= b.cfg.HalfOpenProbes {
			return false
		}
		b.probes++
		return true
	}
}

func (b *breaker) observe(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.openedAt = b.now()
			b.transition(breakerOpen)
		}
	case breakerHalfOpen:
		if !success {
			b.openedAt = b.now()
			b.transition(breakerOpen)
			return
		}
		b.successes++
		if b.successes >= b.cfg.HalfOpenProbes {
			b.transition(breakerClosed)
		}
	}
}

// transition must be called with the mutex held.
func (b *breaker) transition(to breakerState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.failures = 0
	b.probes = 0
	b.successes = 0
	b.logger.Info("provider circuit state changed",
		zap.String("provider", b.inner.Name()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}
