// Package strict implements the high-risk search path. A grounded-answer
// provider and a verification web-search provider run concurrently under a
// shared hard timeout; agreement is computed purely from source-domain
// overlap, and a category disclaimer is attached. The grounded provider is
// load-bearing: if it fails, the whole strict search fails rather than
// serving an unverified answer for a health/finance/legal query.
package strict

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/consistency"
	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

const (
	// minGroundedAnswerLength below this the grounded answer is junk and the
	// request fails.
	minGroundedAnswerLength = 50
	// maxDisplaySources caps the deduplicated source list.
	maxDisplaySources = 4
	defaultTimeout    = 15 * time.Second
	verifyResultCount = 5
)

// Grounded is the grounded-answer dependency, injectable for tests.
type Grounded interface {
	Answer(ctx context.Context, query, category string) (*providers.GroundedResult, error)
}

// Source is one displayed source, confidence-ranked.
type Source struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Domain   string `json:"domain"`
	Verified bool   `json:"verified"` // present in both providers' source sets
}

// Result is the strict-path output. Always structurally valid; Success false
// plus Error string communicates failure.
type Result struct {
	Success        bool                   `json:"success"`
	Answer         string                 `json:"answer"`
	Category       string                 `json:"category"`
	Confidence     consistency.Confidence `json:"confidence"`
	Agreement      consistency.Agreement  `json:"agreement"`
	OverlapScore   float64                `json:"overlap_score"`
	Sources        []Source               `json:"sources"`
	Disclaimer     string                 `json:"disclaimer,omitempty"`
	LLMInstruction string                 `json:"llm_instruction"`
	Latency        time.Duration          `json:"latency"`
	Error          string                 `json:"error,omitempty"`
}

var disclaimers = map[string]string{
	"health":  "This is general information, not medical advice. Consult a qualified doctor before acting on it.",
	"finance": "This is general information, not financial advice. Consult a registered financial advisor before investing.",
	"legal":   "This is general information, not legal advice. Consult a qualified lawyer for your specific situation.",
}

const lowConfidenceDisclaimer = "Sources could not corroborate this answer. Treat it as unverified and confirm independently."

// Searcher runs the strict path.
type Searcher struct {
	grounded Grounded
	verifier providers.Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSearcher builds the strict path over a grounded client and one web
// provider used purely for verification.
func NewSearcher(grounded Grounded, verifier providers.Provider, timeout time.Duration, logger *zap.Logger) *Searcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Searcher{grounded: grounded, verifier: verifier, timeout: timeout, logger: logger}
}

// Search answers a HIGH_RISK query. Both providers run concurrently under
// one deadline; the verifier's failure only degrades agreement.
func (s *Searcher) Search(ctx context.Context, query, category string) *Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type groundedOut struct {
		res *providers.GroundedResult
		err error
	}
	groundedCh := make(chan groundedOut, 1)
	verifyCh := make(chan *providers.Result, 1)

	go func() {
		res, err := s.grounded.Answer(ctx, query, category)
		groundedCh <- groundedOut{res, err}
	}()
	go func() {
		if s.verifier == nil {
			verifyCh <- nil
			return
		}
		res, err := s.verifier.Search(ctx, providers.Query{
			Text:    query,
			Count:   verifyResultCount,
			Country: "IN",
		})
		if err != nil {
			s.logger.Warn("verification provider failed",
				zap.String("category", category),
				zap.Error(err),
			)
			res = nil
		}
		verifyCh <- res
	}()

	g := <-groundedCh
	verification := <-verifyCh

	if g.err != nil || g.res == nil || len(strings.TrimSpace(g.res.Answer)) < minGroundedAnswerLength {
		metrics.StrictSearches.WithLabelValues(category, "grounded_failed").Inc()
		s.logger.Error("grounded provider failed on strict path",
			zap.String("category", category),
			zap.Error(g.err),
		)
		return &Result{
			Success:        false,
			Category:       category,
			Confidence:     consistency.ConfidenceLow,
			Agreement:      consistency.AgreementConflict,
			LLMInstruction: consistency.Instruction(consistency.ConfidenceLow, consistency.AgreementConflict),
			Latency:        time.Since(start),
			Error:          "grounded answer unavailable",
		}
	}

	groundedDomains := make([]string, 0, len(g.res.Sources))
	for _, src := range g.res.Sources {
		groundedDomains = append(groundedDomains, src.Domain)
	}
	var verifyDomains []string
	if verification != nil {
		for _, item := range verification.Items {
			verifyDomains = append(verifyDomains, item.SourceDomain)
		}
	}

	agreement, score := consistency.DomainOverlap(groundedDomains, verifyDomains)
	conf := consistency.ConfidenceFor(agreement)

	answer := g.res.Answer
	disclaimer := disclaimerFor(category, conf)
	if disclaimer != "" {
		answer = answer + "\n\n" + disclaimer
	}

	metrics.StrictSearches.WithLabelValues(category, "ok").Inc()
	s.logger.Info("strict search complete",
		zap.String("category", category),
		zap.String("agreement", string(agreement)),
		zap.String("confidence", string(conf)),
		zap.Float64("overlap", score),
	)

	return &Result{
		Success:        true,
		Answer:         answer,
		Category:       category,
		Confidence:     conf,
		Agreement:      agreement,
		OverlapScore:   score,
		Sources:        mergeSources(g.res.Sources, verification, verifyDomains),
		Disclaimer:     disclaimer,
		LLMInstruction: consistency.Instruction(conf, agreement),
		Latency:        time.Since(start),
	}
}

// disclaimerFor attaches the category disclaimer for health/finance/legal
// always, and the low-confidence one for any other category when
// corroboration failed.
func disclaimerFor(category string, conf consistency.Confidence) string {
	if d, ok := disclaimers[category]; ok {
		return d
	}
	if conf == consistency.ConfidenceLow {
		return lowConfidenceDisclaimer
	}
	return ""
}

// mergeSources dedupes by URL across both providers and caps the list.
// Grounded sources rank first; a source whose domain both providers cite is
// marked verified and floats to the front.
func mergeSources(grounded []providers.GroundedSource, verification *providers.Result, verifyDomains []string) []Source {
	verifySet := make(map[string]bool, len(verifyDomains))
	for _, d := range verifyDomains {
		verifySet[strings.ToLower(d)] = true
	}

	seen := make(map[string]bool)
	var verified, rest []Source
	add := func(s Source) {
		if s.URL == "" || seen[s.URL] {
			return
		}
		seen[s.URL] = true
		if s.Verified {
			verified = append(verified, s)
		} else {
			rest = append(rest, s)
		}
	}

	for _, g := range grounded {
		add(Source{URL: g.URL, Title: g.Title, Domain: g.Domain, Verified: verifySet[strings.ToLower(g.Domain)]})
	}
	if verification != nil {
		for _, item := range verification.Items {
			add(Source{URL: item.URL, Title: item.Title, Domain: item.SourceDomain})
		}
	}

	out := append(verified, rest...)
	if len(out) > maxDisplaySources {
		out = out[:maxDisplaySources]
	}
	return out
}
