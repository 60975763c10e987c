// Package providers exposes a uniform adapter interface over independent
// web-search backends. Adapters enforce their own timeouts, are safe for
// concurrent use, and report "not configured" and "no results" the same way:
// a nil Result with a nil error. Callers never branch on the difference.
package providers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
)

// Item is a single ranked search result.
type Item struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	SourceDomain string    `json:"source_domain"`
	Published    time.Time `json:"published,omitempty"`
}

// Result is one provider's response for one query. Request-scoped and
// discarded once folded into the final search result.
type Result struct {
	Provider string        `json:"provider"`
	Items    []Item        `json:"items"`
	Answer   string        `json:"answer,omitempty"`
	Latency  time.Duration `json:"latency"`
}

// Query is one search request handed to an adapter. Country is an ISO
// 3166-1 alpha-2 code; empty leaves the backend's default ranking in place.
type Query struct {
	Text      string
	Count     int
	Freshness routing.Freshness
	Country   string
}

// Provider is the adapter contract. Search returns (nil, nil) when the
// backend is unconfigured or returned nothing usable; errors are reserved
// for transport and decode failures.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) (*Result, error)
}

// countryCodes maps caller-supplied location names to ISO codes for the
// adapters' locale parameters.
var countryCodes = map[string]string{
	"india":                "IN",
	"united states":        "US",
	"usa":                  "US",
	"united kingdom":       "GB",
	"uk":                   "GB",
	"australia":            "AU",
	"canada":               "CA",
	"germany":              "DE",
	"france":               "FR",
	"japan":                "JP",
	"singapore":            "SG",
	"united arab emirates": "AE",
	"uae":                  "AE",
}

// CountryCode resolves a human-readable location to its ISO code. Unknown
// locations return "" so results fall back to provider-default ranking
// instead of being biased toward the wrong country.
func CountryCode(location string) string {
	return countryCodes[strings.ToLower(strings.TrimSpace(location))]
}

// hostOf extracts the bare hostname of a result URL for source-domain
// bookkeeping. Bad URLs yield "".
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
