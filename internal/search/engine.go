// Package search implements the tiered search engine: it decides between
// sequential fallback and parallel fan-out, gates result quality, and picks
// one winning provider result per request.
package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/events"
	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/relevance"
	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
	"github.com/Aman3189/soriva-backend-sub011/internal/tracing"
)

// Quota gates provider calls. The engine consults it before every call and
// treats denial exactly like provider absence.
type Quota interface {
	Allow(ctx context.Context, provider string) bool
}

// AllowAll is the no-op quota used when none is configured.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string) bool { return true }

// Outcome is the engine's verdict for one request. Winner is nil when every
// provider came up empty; the caller turns that into the empty sentinel
// result, never an error.
type Outcome struct {
	Tier        Tier
	Winner      *providers.Result
	WinnerScore float64
	GatePassed  bool
	All         []*providers.Result
	Tried       []string
}

// Engine coordinates provider calls for one tier.
type Engine struct {
	registry map[string]providers.Provider
	quota    Quota
	emitter  events.Emitter
	logger   *zap.Logger
}

// NewEngine builds an engine over the given provider adapters. quota and
// emitter may be nil.
func NewEngine(provs []providers.Provider, quota Quota, emitter events.Emitter, logger *zap.Logger) *Engine {
	if quota == nil {
		quota = AllowAll{}
	}
	if emitter == nil {
		emitter = events.Nop{}
	}
	registry := make(map[string]providers.Provider, len(provs))
	for _, p := range provs {
		registry[p.Name()] = p
	}
	return &Engine{registry: registry, quota: quota, emitter: emitter, logger: logger}
}

// Run executes the tier's strategy over the route's provider priority list.
// country is the ISO locale code passed down to every adapter; empty means
// no locale biasing.
func (e *Engine) Run(ctx context.Context, requestID string, tier Tier, query string, route routing.Route, country string) *Outcome {
	e.emitter.Emit(requestID, events.StageTierSelected, map[string]interface{}{
		"tier":   string(tier),
		"domain": string(route.Domain),
	})

	if tier == TierNoVerify {
		return e.sequential(ctx, requestID, tier, query, route, country, route.ProviderPriority, nil)
	}
	return e.parallel(ctx, requestID, tier, query, route, country)
}

// sequential iterates providers in priority order and stops at the first
// quality-gate pass. Gate failures are remembered as bestSoFar by relevance
// score and only returned when every provider is exhausted.
func (e *Engine) sequential(ctx context.Context, requestID string, tier Tier, query string, route routing.Route, country string, order []string, tried []string) *Outcome {
	outcome := &Outcome{Tier: tier, Tried: tried}
	var bestSoFar *providers.Result
	var bestScore float64

	for _, name := range order {
		if containsString(outcome.Tried, name) {
			continue
		}
		result := e.callProvider(ctx, requestID, name, query, route, country)
		outcome.Tried = append(outcome.Tried, name)
		if result == nil {
			continue
		}

		score := topScore(query, result)
		decision := QualityGate(query, result, score)
		metrics.GateDecisions.WithLabelValues(name, decision.Reason).Inc()
		e.emitter.Emit(requestID, events.StageGateDecision, map[string]interface{}{
			"provider": name,
			"passed":   decision.Passed,
			"reason":   decision.Reason,
			"score":    score,
		})

		if decision.Passed {
			outcome.Winner = result
			outcome.WinnerScore = score
			outcome.GatePassed = true
			outcome.All = []*providers.Result{result}
			return outcome
		}
		if bestSoFar == nil || score > bestScore {
			bestSoFar = result
			bestScore = score
		}
	}

	if bestSoFar != nil {
		outcome.Winner = bestSoFar
		outcome.WinnerScore = bestScore
		outcome.All = []*providers.Result{bestSoFar}
	}
	return outcome
}

// parallel fans out to the tier's provider count concurrently and awaits
// every call before choosing a winner. No short-circuit: total latency is
// bounded by the slowest surviving provider, not the sum.
func (e *Engine) parallel(ctx context.Context, requestID string, tier Tier, query string, route routing.Route, country string) *Outcome {
	names := e.availableProviders(route.ProviderPriority, tier.ProviderCount())
	outcome := &Outcome{Tier: tier, Tried: append([]string(nil), names...)}

	// Each goroutine writes only its own slot; the reduction below runs
	// after all calls have settled, so no locking is needed.
	slots := make([]*providers.Result, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			slots[i] = e.callProvider(ctx, requestID, name, query, route, country)
		}(i, name)
	}
	wg.Wait()

	for _, r := range slots {
		if r != nil && (len(r.Items) > 0 || r.Answer != "") {
			outcome.All = append(outcome.All, r)
		}
	}

	if len(outcome.All) == 0 {
		// Fall back sequentially over whatever was not already tried.
		remaining := excludeStrings(route.ProviderPriority, names)
		if len(remaining) == 0 {
			remaining = route.ProviderPriority
			outcome.Tried = nil
		}
		return e.sequential(ctx, requestID, tier, query, route, country, remaining, outcome.Tried)
	}

	for _, r := range outcome.All {
		score := topScore(query, r)
		if outcome.Winner == nil || score > outcome.WinnerScore {
			outcome.Winner = r
			outcome.WinnerScore = score
		}
	}
	outcome.GatePassed = true
	return outcome
}

// callProvider wraps one adapter call with quota, metrics, events, and the
// swallow-and-log failure contract. A nil return means absence, whatever the
// cause.
func (e *Engine) callProvider(ctx context.Context, requestID, name, query string, route routing.Route, country string) *providers.Result {
	p, ok := e.registry[name]
	if !ok {
		return nil
	}
	if !e.quota.Allow(ctx, name) {
		e.logger.Warn("provider skipped by quota", zap.String("provider", name))
		metrics.ProviderCalls.WithLabelValues(name, "quota_denied").Inc()
		return nil
	}

	ctx, span := tracing.StartProviderSpan(ctx, name)
	defer span.End()

	start := time.Now()
	result, err := p.Search(ctx, providers.Query{
		Text:      query,
		Count:     route.ResultCount,
		Freshness: route.Freshness,
		Country:   country,
	})
	elapsed := time.Since(start)
	metrics.ProviderLatency.WithLabelValues(name).Observe(float64(elapsed.Milliseconds()))

	switch {
	case err != nil:
		metrics.ProviderCalls.WithLabelValues(name, "error").Inc()
		e.logger.Warn("provider call failed",
			zap.String("provider", name),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		e.emitter.Emit(requestID, events.StageProviderResult, map[string]interface{}{
			"provider": name, "status": "error",
		})
		return nil
	case result == nil:
		metrics.ProviderCalls.WithLabelValues(name, "empty").Inc()
		e.emitter.Emit(requestID, events.StageProviderResult, map[string]interface{}{
			"provider": name, "status": "empty",
		})
		return nil
	default:
		metrics.ProviderCalls.WithLabelValues(name, "ok").Inc()
		e.emitter.Emit(requestID, events.StageProviderResult, map[string]interface{}{
			"provider": name, "status": "ok", "results": len(result.Items),
		})
		return result
	}
}

// availableProviders returns up to n configured providers in priority order.
func (e *Engine) availableProviders(priority []string, n int) []string {
	out := make([]string, 0, n)
	for _, name := range priority {
		if _, ok := e.registry[name]; ok {
			out = append(out, name)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

func topScore(query string, r *providers.Result) float64 {
	best := relevance.Best(query, r.Items)
	if best == nil {
		return 0
	}
	return relevance.Score(query, *best)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func excludeStrings(list, exclude []string) []string {
	var out []string
	for _, v := range list {
		if !containsString(exclude, v) {
			out = append(out, v)
		}
	}
	return out
}
