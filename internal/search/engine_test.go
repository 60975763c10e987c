package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/events"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
)

// fakeProvider is a scripted adapter that records its calls.
type fakeProvider struct {
	name   string
	result *providers.Result
	err    error
	delay  time.Duration

	mu        sync.Mutex
	calls     int
	lastQuery providers.Query
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, q providers.Query) (*providers.Result, error) {
	f.mu.Lock()
	f.calls++
	f.lastQuery = q
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) last() providers.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func goodResult(provider, title string) *providers.Result {
	return &providers.Result{
		Provider: provider,
		Answer:   "Chennai Super Kings won the match by 5 wickets against Gujarat Titans.",
		Items: []providers.Item{
			{Title: title, URL: "https://example.com/1", Description: "CSK won by 5 wickets", SourceDomain: "example.com"},
		},
	}
}

func testRoute(priority ...string) routing.Route {
	return routing.Route{
		Domain:           routing.DomainSports,
		Freshness:        routing.FreshnessDay,
		ProviderPriority: priority,
		ResultCount:      5,
	}
}

type denyQuota struct{ denied map[string]bool }

func (d denyQuota) Allow(_ context.Context, provider string) bool { return !d.denied[provider] }

func TestSequentialStopsAtFirstGatePass(t *testing.T) {
	first := &fakeProvider{name: "brave", result: goodResult("brave", "IPL score today CSK won")}
	second := &fakeProvider{name: "serpapi", result: goodResult("serpapi", "other")}

	e := NewEngine([]providers.Provider{first, second}, nil, nil, zap.NewNop())
	out := e.Run(context.Background(), "req-1", TierNoVerify, "IPL score today", testRoute("brave", "serpapi"), "")

	require.NotNil(t, out.Winner)
	assert.Equal(t, "brave", out.Winner.Provider)
	assert.True(t, out.GatePassed)
	assert.Equal(t, 1, first.callCount())
	assert.Equal(t, 0, second.callCount(), "must never call a provider after a passing result")
}

func TestSequentialFallsThroughNilProviders(t *testing.T) {
	first := &fakeProvider{name: "brave", result: nil}
	second := &fakeProvider{name: "serpapi", err: errors.New("boom")}
	third := &fakeProvider{name: "tavily", result: goodResult("tavily", "IPL score today CSK won")}

	e := NewEngine([]providers.Provider{first, second, third}, nil, nil, zap.NewNop())
	out := e.Run(context.Background(), "req-1", TierNoVerify, "IPL score today", testRoute("brave", "serpapi", "tavily"), "")

	require.NotNil(t, out.Winner)
	assert.Equal(t, "tavily", out.Winner.Provider)
	assert.Equal(t, []string{"brave", "serpapi", "tavily"}, out.Tried)
}

func TestSequentialReturnsBestSoFarWhenNothingPasses(t *testing.T) {
	// A result with no score evidence fails the gate for a score query but
	// is still remembered as the fallback candidate.
	weak := &providers.Result{
		Provider: "brave",
		Items:    []providers.Item{{Title: "IPL score today news", Description: "General chatter about the tournament"}},
	}
	first := &fakeProvider{name: "brave", result: weak}

	e := NewEngine([]providers.Provider{first}, nil, nil, zap.NewNop())
	out := e.Run(context.Background(), "req-1", TierNoVerify, "IPL score today", testRoute("brave"), "")

	require.NotNil(t, out.Winner)
	assert.False(t, out.GatePassed)
}

func TestAllProvidersEmptyYieldsNilWinner(t *testing.T) {
	first := &fakeProvider{name: "brave"}
	second := &fakeProvider{name: "serpapi"}

	e := NewEngine([]providers.Provider{first, second}, nil, nil, zap.NewNop())
	out := e.Run(context.Background(), "req-1", TierNoVerify, "anything at all", testRoute("brave", "serpapi"), "")

	assert.Nil(t, out.Winner)
	assert.Empty(t, out.All)
}

func TestParallelAwaitsAllBeforeSelecting(t *testing.T) {
	// The slower provider has the better result; no short-circuit on the
	// fast one means it must win.
	fast := &fakeProvider{name: "brave", result: &providers.Result{
		Provider: "brave",
		Items:    []providers.Item{{Title: "unrelated", Description: "nothing"}},
	}}
	slow := &fakeProvider{
		name:   "serpapi",
		delay:  50 * time.Millisecond,
		result: goodResult("serpapi", "IPL score today CSK won by 5 wickets"),
	}

	e := NewEngine([]providers.Provider{fast, slow}, nil, nil, zap.NewNop())
	out := e.Run(context.Background(), "req-1", TierStandard, "IPL score today", testRoute("brave", "serpapi"), "")

	require.NotNil(t, out.Winner)
	assert.Equal(t, "serpapi", out.Winner.Provider)
	assert.Len(t, out.All, 2)
	assert.Equal(t, 1, fast.callCount())
	assert.Equal(t, 1, slow.callCount())
}

func TestParallelFallsBackToUntriedProviders(t *testing.T) {
	first := &fakeProvider{name: "brave"}
	second := &fakeProvider{name: "serpapi"}
	third := &fakeProvider{name: "tavily", result: goodResult("tavily", "IPL score today CSK won")}

	e := NewEngine([]providers.Provider{first, second, third}, nil, nil, zap.NewNop())
	// STANDARD fans out to the top 2; both are empty, so the engine must
	// continue sequentially with the untried third.
	out := e.Run(context.Background(), "req-1", TierStandard, "IPL score today", testRoute("brave", "serpapi", "tavily"), "")

	require.NotNil(t, out.Winner)
	assert.Equal(t, "tavily", out.Winner.Provider)
	assert.Equal(t, 1, third.callCount())
}

func TestQuotaDenialSkipsProvider(t *testing.T) {
	first := &fakeProvider{name: "brave", result: goodResult("brave", "IPL score today CSK won")}
	second := &fakeProvider{name: "serpapi", result: goodResult("serpapi", "IPL score today CSK won")}

	q := denyQuota{denied: map[string]bool{"brave": true}}
	e := NewEngine([]providers.Provider{first, second}, q, nil, zap.NewNop())
	out := e.Run(context.Background(), "req-1", TierNoVerify, "IPL score today", testRoute("brave", "serpapi"), "")

	require.NotNil(t, out.Winner)
	assert.Equal(t, "serpapi", out.Winner.Provider)
	assert.Equal(t, 0, first.callCount())
}

func TestRunPassesCountryToEveryProvider(t *testing.T) {
	first := &fakeProvider{name: "brave", result: goodResult("brave", "IPL score today CSK won")}
	second := &fakeProvider{name: "serpapi", result: goodResult("serpapi", "IPL score today CSK won")}

	e := NewEngine([]providers.Provider{first, second}, nil, nil, zap.NewNop())
	e.Run(context.Background(), "req-1", TierStandard, "IPL score today", testRoute("brave", "serpapi"), "AU")

	assert.Equal(t, "AU", first.last().Country)
	assert.Equal(t, "AU", second.last().Country)
	assert.Equal(t, routing.FreshnessDay, first.last().Freshness)
	assert.Equal(t, 5, first.last().Count)
}

func TestEventsEmittedPerStage(t *testing.T) {
	rec := events.NewRecorder()
	first := &fakeProvider{name: "brave", result: goodResult("brave", "IPL score today CSK won")}

	e := NewEngine([]providers.Provider{first}, nil, rec, zap.NewNop())
	e.Run(context.Background(), "req-1", TierNoVerify, "IPL score today", testRoute("brave"), "")

	stages := rec.Stages()
	assert.Equal(t, []events.Stage{
		events.StageTierSelected,
		events.StageProviderResult,
		events.StageGateDecision,
	}, stages)
}
