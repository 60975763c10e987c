// Package consistency cross-checks facts from multiple providers and turns
// their level of agreement into a confidence annotation plus an instruction
// for the downstream model. It only annotates: the winning result's content
// is never overridden here.
package consistency

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/facts"
	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/search"
)

// Agreement describes how much independent providers corroborate each other.
type Agreement string

const (
	// General path levels.
	AgreementUnanimous Agreement = "UNANIMOUS"
	AgreementMajority  Agreement = "MAJORITY"
	AgreementSplit     Agreement = "SPLIT"
	AgreementSingle    Agreement = "SINGLE"

	// Strict path levels, derived from source-domain overlap.
	AgreementStrong   Agreement = "STRONG"
	AgreementPartial  Agreement = "PARTIAL"
	AgreementWeak     Agreement = "WEAK"
	AgreementConflict Agreement = "CONFLICT"
)

// Confidence is the trust level shown to the downstream consumer.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Result is the verification annotation for one request.
type Result struct {
	Tier           search.Tier `json:"tier"`
	Confidence     Confidence  `json:"confidence"`
	Score          float64     `json:"score"`
	Agreement      Agreement   `json:"agreement"`
	ProvidersUsed  []string    `json:"providers_used"`
	VerifiedFact   string      `json:"verified_fact,omitempty"`
	VerifiedOrigin string      `json:"verified_origin,omitempty"` // facts.OriginAnswer or facts.OriginSnippet
	LLMInstruction string      `json:"llm_instruction"`
}

// factJaccardThreshold is the normalized-token overlap above which two fact
// strings count as the same claim.
const factJaccardThreshold = 0.5

// Engine computes agreement across provider results.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Check cross-references facts across all providers that returned results.
// It never fails the request: any internal problem returns nil and the
// pipeline proceeds without a verification badge.
func (e *Engine) Check(tier search.Tier, query string, results []*providers.Result) (out *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("consistency engine panicked, skipping verification",
				zap.Any("panic", r),
			)
			out = nil
		}
	}()

	if tier == search.TierNoVerify || len(results) == 0 {
		return nil
	}

	providerFacts := make(map[string][]facts.Fact, len(results))
	var used []string
	for _, r := range results {
		if r == nil {
			continue
		}
		fs := facts.Extract(r.Items, r.Answer, r.Provider)
		if len(fs) > 0 {
			providerFacts[r.Provider] = fs
		}
		used = append(used, r.Provider)
	}
	sort.Strings(used)

	if len(providerFacts) == 0 {
		return nil
	}

	agreement, score, verified, origin := computeAgreement(providerFacts)
	conf := confidenceFor(agreement)

	metrics.VerificationAgreement.WithLabelValues(string(tier), string(agreement)).Inc()
	e.logger.Info("verification complete",
		zap.String("tier", string(tier)),
		zap.String("agreement", string(agreement)),
		zap.String("confidence", string(conf)),
		zap.Float64("score", score),
		zap.Int("providers", len(used)),
	)

	return &Result{
		Tier:           tier,
		Confidence:     conf,
		Score:          score,
		Agreement:      agreement,
		ProvidersUsed:  used,
		VerifiedFact:   verified,
		VerifiedOrigin: origin,
		LLMInstruction: Instruction(conf, agreement),
	}
}

// computeAgreement finds the best-corroborated fact and classifies how many
// providers back it. The returned origin says whether the winning fact came
// from a direct answer or a result snippet.
func computeAgreement(providerFacts map[string][]facts.Fact) (Agreement, float64, string, string) {
	if len(providerFacts) == 1 {
		for _, fs := range providerFacts {
			return AgreementSingle, 0.5, fs[0].Text, fs[0].Origin
		}
	}

	// For each fact, count how many distinct providers state an equivalent
	// claim. The fact with the widest backing decides the agreement level.
	bestBacking := 0
	var bestFact facts.Fact
	for provider, fs := range providerFacts {
		for _, f := range fs {
			backing := 1
			for other, ofs := range providerFacts {
				if other == provider {
					continue
				}
				for _, of := range ofs {
					if sameFact(f.Text, of.Text) {
						backing++
						break
					}
				}
			}
			if backing > bestBacking {
				bestBacking = backing
				bestFact = f
			}
		}
	}

	total := len(providerFacts)
	ratio := float64(bestBacking) / float64(total)
	switch {
	case bestBacking == total:
		return AgreementUnanimous, 1.0, bestFact.Text, bestFact.Origin
	case ratio > 0.5:
		return AgreementMajority, ratio, bestFact.Text, bestFact.Origin
	default:
		return AgreementSplit, ratio, "", ""
	}
}

// sameFact reports whether two fact strings make the same claim, using
// normalized-token Jaccard overlap.
func sameFact(a, b string) bool {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter)/float64(union) >= factJaccardThreshold
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,!?:;\"'()")
		if len(tok) >= 2 {
			out[tok] = true
		}
	}
	return out
}

// DomainOverlap computes the strict-path agreement between two source-domain
// sets: |intersection| / |union|, mapped to the strict agreement ladder.
func DomainOverlap(a, b []string) (Agreement, float64) {
	setA := make(map[string]bool, len(a))
	for _, d := range a {
		if d != "" {
			setA[strings.ToLower(d)] = true
		}
	}
	setB := make(map[string]bool, len(b))
	for _, d := range b {
		if d != "" {
			setB[strings.ToLower(d)] = true
		}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return AgreementConflict, 0
	}

	inter := 0
	for d := range setA {
		if setB[d] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	score := float64(inter) / float64(union)

	switch {
	case score >= 0.70:
		return AgreementStrong, score
	case score >= 0.40:
		return AgreementPartial, score
	case score >= 0.20:
		return AgreementWeak, score
	default:
		return AgreementConflict, score
	}
}

// confidenceFor maps agreement to the user-facing trust level.
func confidenceFor(a Agreement) Confidence {
	switch a {
	case AgreementStrong, AgreementUnanimous:
		return ConfidenceHigh
	case AgreementPartial, AgreementMajority:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ConfidenceFor is the exported mapping, shared with the strict path.
func ConfidenceFor(a Agreement) Confidence {
	return confidenceFor(a)
}

// Instruction produces the directive telling the downstream model how much
// to trust the attached fact.
func Instruction(conf Confidence, agreement Agreement) string {
	switch conf {
	case ConfidenceHigh:
		return fmt.Sprintf("Multiple independent sources agree (%s). Present this information as verified fact.", agreement)
	case ConfidenceMedium:
		return fmt.Sprintf("Most sources agree (%s). Present this information as likely accurate, noting it comes from web search.", agreement)
	default:
		return fmt.Sprintf("Sources disagree or corroboration is weak (%s). Hedge clearly: present this as unconfirmed and suggest the user verify independently.", agreement)
	}
}
