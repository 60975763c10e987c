// Package facts derives short, comparable fact strings from one provider's
// result set. The consistency engine compares these across providers, so the
// goal is recall of concrete claims (numbers, dates, names), not fluency.
package facts

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

// Origin values for where a fact's text was found.
const (
	OriginAnswer  = "answer"
	OriginSnippet = "snippet"
)

// Fact is one short factual claim attributed to a provider. Source is the
// result item's domain for snippet-derived facts, empty for answer-derived
// ones.
type Fact struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Source   string `json:"source,omitempty"`
	Origin   string `json:"origin"`
}

const (
	maxFactsPerProvider = 5
	maxFactLength       = 160
	topSnippets         = 5
)

// concreteRe marks a sentence as fact-bearing: digits, currency, or a
// percentage somewhere in it.
var concreteRe = regexp.MustCompile(`\d|₹|\$|%`)

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+|\n`)

// Extract derives up to maxFactsPerProvider facts from a provider's direct
// answer and its top snippets. Answer sentences come first; they are the
// densest source of concrete claims.
func Extract(items []providers.Item, answer, providerID string) []Fact {
	var out []Fact
	seen := make(map[string]bool)

	add := func(text, source, origin string) {
		text = strings.TrimSpace(text)
		if len(text) < 15 || !concreteRe.MatchString(text) {
			return
		}
		if len(text) > maxFactLength {
			text = truncateRunes(text, maxFactLength)
		}
		key := normalizeKey(text)
		if seen[key] || len(out) >= maxFactsPerProvider {
			return
		}
		seen[key] = true
		out = append(out, Fact{Text: text, Provider: providerID, Source: source, Origin: origin})
	}

	for _, sentence := range sentenceSplitRe.Split(answer, -1) {
		add(sentence, "", OriginAnswer)
	}
	for i, item := range items {
		if i >= topSnippets {
			break
		}
		for _, sentence := range sentenceSplitRe.Split(item.Description, -1) {
			add(sentence, item.SourceDomain, OriginSnippet)
		}
	}
	return out
}

// truncateRunes cuts s to at most max bytes, backing up to the nearest rune
// boundary so Hindi and currency characters are never split.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// normalizeKey lower-cases and strips punctuation so near-identical sentences
// dedupe against each other.
func normalizeKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
