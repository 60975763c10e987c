// Package assemble merges the winning provider result, optional deep-fetch
// content, and verification metadata into the one SearchResult callers see.
// Pure functions only; everything interesting happened upstream.
package assemble

import (
	"strings"

	"github.com/Aman3189/soriva-backend-sub011/internal/consistency"
	"github.com/Aman3189/soriva-backend-sub011/internal/dates"
	"github.com/Aman3189/soriva-backend-sub011/internal/facts"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
	"github.com/Aman3189/soriva-backend-sub011/internal/webfetch"
)

// Source kinds for the final result.
const (
	SourceWebFetch = "webfetch"
	SourceSnippet  = "snippet"
	SourceAnswer   = "answer"
	SourceCalendar = "calendar"
	SourceNone     = "none"
)

// NoInformationFound is the sentinel fact when every provider came up empty.
const NoInformationFound = "no information found"

const maxTopTitles = 3

// Timings is the per-request latency breakdown in milliseconds.
type Timings struct {
	SearchMs int64 `json:"search_ms"`
	FetchMs  int64 `json:"fetch_ms"`
	TotalMs  int64 `json:"total_ms"`
}

// DateInfo carries a resolved date expression through to the caller.
type DateInfo struct {
	Date    string `json:"date"`
	Human   string `json:"human"`
	Keyword string `json:"keyword"`
}

// SearchResult is the only artifact returned to callers.
type SearchResult struct {
	RequestID     string              `json:"request_id"`
	Fact          string              `json:"fact"`
	TopTitles     []string            `json:"top_titles,omitempty"`
	Source        string              `json:"source"`
	URL           string              `json:"url,omitempty"`
	Domain        routing.Domain      `json:"domain"`
	DateInfo      *DateInfo           `json:"date_info,omitempty"`
	Timings       Timings             `json:"timings"`
	ResultsFound  int                 `json:"results_found"`
	QueryUsed     string              `json:"query_used"`
	Provider      string              `json:"provider,omitempty"`
	TokenEstimate int                 `json:"token_estimate"`
	Verification  *consistency.Result `json:"verification,omitempty"`
}

// Input bundles everything the assembler folds together.
type Input struct {
	RequestID    string
	QueryUsed    string
	Route        routing.Route
	Winner       *providers.Result
	Best         *providers.Item
	Fetched      *webfetch.Result
	Verification *consistency.Result
	Resolved     *dates.Resolved
	Timings      Timings
}

// Assemble builds the final SearchResult. Fact priority: verified fact >
// deep-fetched content > best snippet > direct answer > sentinel.
func Assemble(in Input) *SearchResult {
	out := &SearchResult{
		RequestID:    in.RequestID,
		Source:       SourceNone,
		Domain:       in.Route.Domain,
		QueryUsed:    in.QueryUsed,
		Timings:      in.Timings,
		Verification: in.Verification,
	}
	if in.Resolved != nil {
		out.DateInfo = &DateInfo{
			Date:    in.Resolved.Date.Format("2006-01-02"),
			Human:   in.Resolved.Human,
			Keyword: in.Resolved.Keyword,
		}
	}

	if in.Winner == nil {
		out.Fact = NoInformationFound
		out.TokenEstimate = EstimateTokens(out.Fact)
		return out
	}

	out.Provider = in.Winner.Provider
	out.ResultsFound = len(in.Winner.Items)
	for i, item := range in.Winner.Items {
		if i >= maxTopTitles {
			break
		}
		out.TopTitles = append(out.TopTitles, item.Title)
	}
	if in.Best != nil {
		out.URL = in.Best.URL
	}

	switch {
	case in.Verification != nil && in.Verification.VerifiedFact != "":
		out.Fact = in.Verification.VerifiedFact
		// Label by where the corroborated text was actually found.
		if in.Verification.VerifiedOrigin == facts.OriginAnswer {
			out.Source = SourceAnswer
		} else {
			out.Source = SourceSnippet
		}
	case in.Fetched != nil && in.Fetched.Success:
		out.Fact = in.Fetched.Content
		out.Source = SourceWebFetch
	case in.Best != nil && strings.TrimSpace(in.Best.Description) != "":
		out.Fact = strings.TrimSpace(in.Best.Description)
		out.Source = SourceSnippet
	case strings.TrimSpace(in.Winner.Answer) != "":
		out.Fact = strings.TrimSpace(in.Winner.Answer)
		out.Source = SourceAnswer
	default:
		out.Fact = NoInformationFound
	}

	if out.Source != SourceNone {
		if rating := ExtractRating(in.QueryUsed, in.Winner); rating != "" {
			out.Fact = rating + "\n" + out.Fact
		}
	}

	out.TokenEstimate = EstimateTokens(out.Fact)
	return out
}

// CalendarResult answers a pure date query without any provider call.
func CalendarResult(requestID, queryUsed string, resolved *dates.Resolved, timings Timings) *SearchResult {
	fact := resolved.Human
	return &SearchResult{
		RequestID: requestID,
		Fact:      fact,
		Source:    SourceCalendar,
		Domain:    routing.DomainGeneral,
		DateInfo: &DateInfo{
			Date:    resolved.Date.Format("2006-01-02"),
			Human:   resolved.Human,
			Keyword: resolved.Keyword,
		},
		QueryUsed:     queryUsed,
		Timings:       timings,
		TokenEstimate: EstimateTokens(fact),
	}
}

// EstimateTokens is ceil(len/4): a budgeting heuristic, not billing-accurate.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
