// Package orchestrator runs the full query pipeline: risk classification,
// normalization, date resolution, routing, tiered search, verification,
// optional deep fetch, and final assembly. One Search call per user query;
// every collaborator failure degrades, only an empty query is an error.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/assemble"
	"github.com/Aman3189/soriva-backend-sub011/internal/consistency"
	"github.com/Aman3189/soriva-backend-sub011/internal/dates"
	"github.com/Aman3189/soriva-backend-sub011/internal/events"
	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
	"github.com/Aman3189/soriva-backend-sub011/internal/normalizer"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/relevance"
	"github.com/Aman3189/soriva-backend-sub011/internal/risk"
	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
	"github.com/Aman3189/soriva-backend-sub011/internal/search"
	"github.com/Aman3189/soriva-backend-sub011/internal/strict"
	"github.com/Aman3189/soriva-backend-sub011/internal/tracing"
	"github.com/Aman3189/soriva-backend-sub011/internal/webfetch"
)

var (
	ErrEmptyQuery        = errors.New("empty query")
	ErrStrictUnavailable = errors.New("strict search path not configured")
)

// Options are per-request knobs. Zero value is not useful; start from
// DefaultOptions.
type Options struct {
	UserLocation    string
	EnableWebFetch  bool
	MaxContentChars int
}

func DefaultOptions() Options {
	return Options{
		UserLocation:    "India",
		EnableWebFetch:  true,
		MaxContentChars: 2000,
	}
}

// Classifier gates queries onto the strict path. *risk.Classifier and
// *risk.Swapper both satisfy it.
type Classifier interface {
	ClassifyDetailed(query string) risk.Classification
}

// Config wires the orchestrator's collaborators. Strict and Fetcher may be
// nil; the pipeline then skips those stages.
type Config struct {
	Classifier  Classifier
	Engine      *search.Engine
	Consistency *consistency.Engine
	Strict      *strict.Searcher
	Fetcher     *webfetch.Fetcher
	Emitter     events.Emitter
	Logger      *zap.Logger
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	classifier Classifier
	engine     *search.Engine
	verifier   *consistency.Engine
	strict     *strict.Searcher
	fetcher    *webfetch.Fetcher
	emitter    events.Emitter
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

func New(cfg Config) *Orchestrator {
	if cfg.Emitter == nil {
		cfg.Emitter = events.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = risk.NewClassifier()
	}
	return &Orchestrator{
		classifier: cfg.Classifier,
		engine:     cfg.Engine,
		verifier:   cfg.Consistency,
		strict:     cfg.Strict,
		fetcher:    cfg.Fetcher,
		emitter:    cfg.Emitter,
		logger:     cfg.Logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Search runs one query through the full pipeline and always returns a
// structurally complete result on success. Provider failures never surface
// as errors; the caller sees the sentinel fact instead.
func (o *Orchestrator) Search(ctx context.Context, rawQuery string, opts Options) (*assemble.SearchResult, error) {
	start := o.now()
	requestID := o.newID()

	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}

	ctx, span := tracing.StartSearchSpan(ctx, requestID)
	defer span.End()

	cls := o.classifier.ClassifyDetailed(rawQuery)
	o.emitter.Emit(requestID, events.StageClassified, map[string]interface{}{
		"level":    string(cls.Level),
		"category": string(cls.Category),
		"keyword":  cls.MatchedKeyword,
	})

	if cls.Level == risk.HighRisk && o.strict != nil {
		return o.strictToResult(ctx, requestID, rawQuery, cls, start), nil
	}

	query := normalizer.Normalize(rawQuery)
	resolved := dates.Normalize(query)

	if isCalendarQuery(query, resolved) {
		out := assemble.CalendarResult(requestID, query, resolved, assemble.Timings{
			TotalMs: o.now().Sub(start).Milliseconds(),
		})
		o.logger.Info("calendar query answered locally",
			zap.String("request_id", requestID),
			zap.String("keyword", resolved.Keyword),
		)
		return out, nil
	}

	route := routing.DetectRoute(query)
	tier := search.TierFor(route.Domain, query)
	metrics.SearchesStarted.WithLabelValues(string(tier)).Inc()

	searchStart := o.now()
	outcome := o.engine.Run(ctx, requestID, tier, query, route, providers.CountryCode(opts.UserLocation))
	searchMs := o.now().Sub(searchStart).Milliseconds()

	var verification *consistency.Result
	if tier != search.TierNoVerify && o.verifier != nil {
		verification = o.verifier.Check(tier, query, outcome.All)
		if verification != nil {
			o.emitter.Emit(requestID, events.StageVerificationResult, map[string]interface{}{
				"agreement":  string(verification.Agreement),
				"confidence": string(verification.Confidence),
				"providers":  len(verification.ProvidersUsed),
			})
		}
	}

	var best *providers.Item
	if outcome.Winner != nil {
		best = relevance.Best(query, outcome.Winner.Items)
	}

	// Deep fetch only when the verified fact did not already settle the
	// answer; fetching after verification would just add latency.
	var fetched *webfetch.Result
	var fetchMs int64
	if o.fetcher != nil && opts.EnableWebFetch && route.WebFetch && best != nil &&
		(verification == nil || verification.VerifiedFact == "") {
		fetchStart := o.now()
		r := o.fetcher.Fetch(ctx, best.URL, opts.MaxContentChars)
		fetched = &r
		fetchMs = o.now().Sub(fetchStart).Milliseconds()
	}

	out := assemble.Assemble(assemble.Input{
		RequestID:    requestID,
		QueryUsed:    query,
		Route:        route,
		Winner:       outcome.Winner,
		Best:         best,
		Fetched:      fetched,
		Verification: verification,
		Resolved:     resolved,
		Timings: assemble.Timings{
			SearchMs: searchMs,
			FetchMs:  fetchMs,
			TotalMs:  o.now().Sub(start).Milliseconds(),
		},
	})

	metrics.SearchesCompleted.WithLabelValues(string(tier), out.Source).Inc()
	metrics.SearchDuration.WithLabelValues(string(tier)).Observe(o.now().Sub(start).Seconds())
	o.logger.Info("search complete",
		zap.String("request_id", requestID),
		zap.String("domain", string(route.Domain)),
		zap.String("tier", string(tier)),
		zap.String("source", out.Source),
		zap.String("provider", out.Provider),
		zap.Int64("total_ms", out.Timings.TotalMs),
	)
	return out, nil
}

// StrictSearch exposes the high-risk path directly, with its full source and
// agreement detail. category may be empty; it is then classified from the
// query.
func (o *Orchestrator) StrictSearch(ctx context.Context, query, category string) (*strict.Result, error) {
	if o.strict == nil {
		return nil, ErrStrictUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if category == "" {
		category = string(o.classifier.ClassifyDetailed(query).Category)
	}
	return o.strict.Search(ctx, query, category), nil
}

// strictToResult delegates a HIGH_RISK query to the strict path and folds its
// output into the common result shape.
func (o *Orchestrator) strictToResult(ctx context.Context, requestID, query string, cls risk.Classification, start time.Time) *assemble.SearchResult {
	metrics.SearchesStarted.WithLabelValues(string(search.TierStrict)).Inc()

	res := o.strict.Search(ctx, query, string(cls.Category))
	o.emitter.Emit(requestID, events.StageVerificationResult, map[string]interface{}{
		"agreement":  string(res.Agreement),
		"confidence": string(res.Confidence),
		"strict":     true,
	})

	out := &assemble.SearchResult{
		RequestID: requestID,
		QueryUsed: query,
		Domain:    routing.DomainGeneral,
		Provider:  "grounded",
		Verification: &consistency.Result{
			Tier:           search.TierStrict,
			Confidence:     res.Confidence,
			Score:          res.OverlapScore,
			Agreement:      res.Agreement,
			LLMInstruction: res.LLMInstruction,
		},
		Timings: assemble.Timings{
			SearchMs: res.Latency.Milliseconds(),
			TotalMs:  o.now().Sub(start).Milliseconds(),
		},
	}
	if res.Success {
		out.Fact = res.Answer
		out.Source = assemble.SourceAnswer
		out.ResultsFound = len(res.Sources)
		if len(res.Sources) > 0 {
			out.URL = res.Sources[0].URL
		}
	} else {
		out.Fact = assemble.NoInformationFound
		out.Source = assemble.SourceNone
	}
	out.TokenEstimate = assemble.EstimateTokens(out.Fact)

	metrics.SearchesCompleted.WithLabelValues(string(search.TierStrict), out.Source).Inc()
	metrics.SearchDuration.WithLabelValues(string(search.TierStrict)).Observe(o.now().Sub(start).Seconds())
	return out
}

// calendarTokens is the closed vocabulary of a pure date question. A query
// made only of these words needs no web search at all.
var calendarTokens = map[string]bool{
	"what": true, "is": true, "the": true, "date": true, "day": true,
	"today": true, "tomorrow": true, "yesterday": true, "tonight": true,
	"aaj": true, "kal": true, "parso": true, "ki": true, "ka": true,
	"kya": true, "hai": true, "tarikh": true, "din": true, "kaunsa": true,
	"after": true, "on": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true, "saturday": true,
	"sunday": true,
}

func isCalendarQuery(query string, resolved *dates.Resolved) bool {
	if resolved == nil {
		return false
	}
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 || len(fields) > 6 {
		return false
	}
	for _, f := range fields {
		f = strings.Trim(f, "?!.,")
		if f == "" {
			continue
		}
		if !calendarTokens[f] {
			return false
		}
	}
	return true
}
