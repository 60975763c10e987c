package search

import (
	"regexp"
	"strings"

	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

// Quality gate thresholds. Level 1 passes a result on raw relevance or a
// substantial direct answer; level 2 demands query-category evidence in the
// combined text.
const (
	gateScoreThreshold  = 15.0
	gateAnswerMinLength = 30
	gateSnippetCount    = 5
)

// uselessPhrases fail a result outright regardless of score: the provider
// returned filler, not an answer.
var uselessPhrases = []string{
	"not yet available",
	"yet to be announced",
	"to be decided",
	"to be announced",
	"tbd",
	"coming soon",
	"stay tuned",
	"no information available",
	"details awaited",
}

// Evidence patterns per query category for gate level 2.
var (
	ratingQueryRe    = regexp.MustCompile(`(?i)\b(rating|imdb|review|stars)\b`)
	ratingEvidenceRe = regexp.MustCompile(`(?i)\d(\.\d)?\s*/\s*(5|10)|rated\s+\d|\d(\.\d)?\s+stars?`)

	priceQueryRe    = regexp.MustCompile(`(?i)\b(price|cost|rate|kitna|kimat|daam)\b`)
	priceEvidenceRe = regexp.MustCompile(`(?i)[₹$]\s?\d|rs\.?\s?\d|\d[\d,]*\s?(rupees|crore|lakh|per)`)

	scoreQueryRe    = regexp.MustCompile(`(?i)\b(score|result|match|won|winner)\b`)
	scoreEvidenceRe = regexp.MustCompile(`(?i)\d+\s*[-/]\s*\d+|won by|\d+\s*(runs?|wickets?|goals?)|beat\s`)

	weatherQueryRe    = regexp.MustCompile(`(?i)\b(weather|temperature|forecast|mausam)\b`)
	weatherEvidenceRe = regexp.MustCompile(`(?i)\d+\s*°|\d+\s*degrees|celsius|fahrenheit|sunny|rainy?|cloudy|humid|thunder`)
)

// GateDecision is the quality gate's verdict for one provider result.
type GateDecision struct {
	Passed bool
	Reason string
}

// QualityGate applies the two-level heuristic deciding whether a single
// provider's result is good enough to stop searching. topScore is the
// relevance score of the result's best item.
func QualityGate(query string, result *providers.Result, topScore float64) GateDecision {
	// Level 1: enough relevance or a substantial direct answer.
	if topScore < gateScoreThreshold && len(result.Answer) <= gateAnswerMinLength {
		return GateDecision{Passed: false, Reason: "low_relevance"}
	}

	combined := combinedText(result)
	lower := strings.ToLower(combined)
	for _, phrase := range uselessPhrases {
		if strings.Contains(lower, phrase) {
			return GateDecision{Passed: false, Reason: "useless_phrase"}
		}
	}

	// Level 2: the category the query implies must have matching evidence.
	switch {
	case ratingQueryRe.MatchString(query):
		if !ratingEvidenceRe.MatchString(combined) {
			return GateDecision{Passed: false, Reason: "no_rating_evidence"}
		}
	case priceQueryRe.MatchString(query):
		if !priceEvidenceRe.MatchString(combined) {
			return GateDecision{Passed: false, Reason: "no_price_evidence"}
		}
	case scoreQueryRe.MatchString(query):
		if !scoreEvidenceRe.MatchString(combined) {
			return GateDecision{Passed: false, Reason: "no_score_evidence"}
		}
	case weatherQueryRe.MatchString(query):
		if !weatherEvidenceRe.MatchString(combined) {
			return GateDecision{Passed: false, Reason: "no_weather_evidence"}
		}
	}

	return GateDecision{Passed: true, Reason: "ok"}
}

// combinedText joins the direct answer with the top snippets for evidence
// scanning.
func combinedText(result *providers.Result) string {
	var sb strings.Builder
	sb.WriteString(result.Answer)
	for i, item := range result.Items {
		if i >= gateSnippetCount {
			break
		}
		sb.WriteString(" ")
		sb.WriteString(item.Title)
		sb.WriteString(" ")
		sb.WriteString(item.Description)
	}
	return sb.String()
}
