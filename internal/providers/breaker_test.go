package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedProvider struct {
	name  string
	errs  []error
	calls int
}

func (s *scriptedProvider) Name() string { return s.name }

func (s *scriptedProvider) Search(context.Context, Query) (*Result, error) {
	var err error
	if s.calls < len(s.errs) {
		err = s.errs[s.calls]
	}
	s.calls++
	if err != nil {
		return nil, err
	}
	return &Result{Provider: s.name}, nil
}

func newTestBreaker(inner Provider, cfg BreakerConfig, now *time.Time) *breaker {
	b := WithBreaker(inner, cfg, zap.NewNop()).(*breaker)
	b.now = func() time.Time { return *now }
	return b
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedProvider{name: "brave", errs: []error{boom, boom, boom}}
	now := time.Now()
	b := newTestBreaker(inner, BreakerConfig{FailureThreshold: 3, Cooldown: 30 * time.Second, HalfOpenProbes: 1}, &now)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := b.Search(ctx, Query{Text: "q", Count: 5})
		assert.ErrorIs(t, err, boom)
	}

	_, err := b.Search(ctx, Query{Text: "q", Count: 5})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 3, inner.calls, "open circuit never reaches the provider")
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedProvider{name: "brave", errs: []error{boom, boom}}
	now := time.Now()
	b := newTestBreaker(inner, BreakerConfig{FailureThreshold: 2, Cooldown: 10 * time.Second, HalfOpenProbes: 1}, &now)

	ctx := context.Background()
	b.Search(ctx, Query{Text: "q", Count: 5})
	b.Search(ctx, Query{Text: "q", Count: 5})
	_, err := b.Search(ctx, Query{Text: "q", Count: 5})
	require.ErrorIs(t, err, ErrCircuitOpen)

	// After the cooldown one probe goes through; its success closes the
	// circuit again.
	now = now.Add(11 * time.Second)
	res, err := b.Search(ctx, Query{Text: "q", Count: 5})
	require.NoError(t, err)
	assert.Equal(t, "brave", res.Provider)

	res, err = b.Search(ctx, Query{Text: "q", Count: 5})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedProvider{name: "tavily", errs: []error{boom, boom, boom}}
	now := time.Now()
	b := newTestBreaker(inner, BreakerConfig{FailureThreshold: 2, Cooldown: 10 * time.Second, HalfOpenProbes: 1}, &now)

	ctx := context.Background()
	b.Search(ctx, Query{Text: "q", Count: 5})
	b.Search(ctx, Query{Text: "q", Count: 5})

	now = now.Add(11 * time.Second)
	_, err := b.Search(ctx, Query{Text: "q", Count: 5})
	require.ErrorIs(t, err, boom, "the half-open probe reaches the provider")

	_, err = b.Search(ctx, Query{Text: "q", Count: 5})
	assert.ErrorIs(t, err, ErrCircuitOpen, "a failed probe reopens immediately")
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedProvider{name: "serpapi", errs: []error{boom, nil, boom, nil}}
	now := time.Now()
	b := newTestBreaker(inner, BreakerConfig{FailureThreshold: 2, Cooldown: 10 * time.Second, HalfOpenProbes: 1}, &now)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		b.Search(ctx, Query{Text: "q", Count: 5})
	}
	res, err := b.Search(ctx, Query{Text: "q", Count: 5})
	require.NoError(t, err, "interleaved successes keep the circuit closed")
	assert.NotNil(t, res)
}
