// Package relevance scores search result items against the query. The
// ordering contract is all callers rely on; the absolute numbers only matter
// to the quality gate's fixed threshold.
package relevance

import (
	"sort"
	"strings"
	"time"

	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

// Weights, tuned by hand against live queries. Title matches dominate.
const (
	titleTokenWeight = 6.0
	descTokenWeight  = 2.0
	phraseBonus      = 10.0
	freshnessBonus   = 5.0
	trustedBonus     = 4.0
)

// trustedSources get a small boost: established outlets whose snippets are
// dense and rarely junk.
var trustedSources = map[string]bool{
	"wikipedia.org":       true,
	"timesofindia.com":    true,
	"indiatoday.in":       true,
	"ndtv.com":            true,
	"thehindu.com":        true,
	"hindustantimes.com":  true,
	"espncricinfo.com":    true,
	"imdb.com":            true,
	"bookmyshow.com":      true,
	"accuweather.com":     true,
	"moneycontrol.com":    true,
	"economictimes.com":   true,
}

// Score rates one item against the query.
func Score(query string, item providers.Item) float64 {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return 0
	}

	title := strings.ToLower(item.Title)
	desc := strings.ToLower(item.Description)
	var s float64
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			s += titleTokenWeight
		}
		if strings.Contains(desc, tok) {
			s += descTokenWeight
		}
	}
	if strings.Contains(title, strings.ToLower(strings.TrimSpace(query))) {
		s += phraseBonus
	}
	if recent(item.Published) {
		s += freshnessBonus
	}
	if trustedSources[rootDomain(item.SourceDomain)] {
		s += trustedBonus
	}
	return s
}

// Best returns the highest scoring item, or nil for an empty slice.
func Best(query string, items []providers.Item) *providers.Item {
	ranked := Rank(query, items)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}

// Rank returns items sorted by descending score. The input is not mutated.
func Rank(query string, items []providers.Item) []providers.Item {
	out := make([]providers.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return Score(query, out[i]) > Score(query, out[j])
	})
	return out
}

func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?\"'")
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func recent(published time.Time) bool {
	if published.IsZero() {
		return false
	}
	return time.Since(published) < 48*time.Hour
}

// rootDomain strips a leading "www." so the trusted-source table stays short.
func rootDomain(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
