// Package routing maps query text to a topic domain and derives the search
// attributes that depend on it: freshness window, provider priority order,
// result count, and whether a deep page fetch is worth attempting.
package routing

import "strings"

// Domain is a detected topic category.
type Domain string

const (
	DomainSports        Domain = "sports"
	DomainFinance       Domain = "finance"
	DomainNews          Domain = "news"
	DomainEntertainment Domain = "entertainment"
	DomainWeather       Domain = "weather"
	DomainFood          Domain = "food"
	DomainTravel        Domain = "travel"
	DomainTech          Domain = "tech"
	DomainGeneral       Domain = "general"
)

// Freshness is how recent results must be for a domain.
type Freshness string

const (
	FreshnessDay   Freshness = "pd"
	FreshnessWeek  Freshness = "pw"
	FreshnessMonth Freshness = "pm"
	FreshnessNone  Freshness = ""
)

// Route carries the derived attributes for a detected domain. Read-only to
// the rest of the pipeline.
type Route struct {
	Domain           Domain    `json:"domain"`
	Freshness        Freshness `json:"freshness"`
	ProviderPriority []string  `json:"provider_priority"`
	ResultCount      int       `json:"result_count"`
	WebFetch         bool      `json:"web_fetch"`
}

type domainRule struct {
	domain   Domain
	keywords []string
}

// Rules are scanned in order; earlier domains win ties. Sports before news so
// "IPL score today" lands on sports despite "today".
var domainRules = []domainRule{
	{DomainSports, []string{
		"score", "match", "ipl", "cricket", "football", "wicket", "innings",
		"tournament", "world cup", "olympics", "kabaddi", "badminton",
	}},
	{DomainWeather, []string{
		"weather", "temperature", "rain", "forecast", "humidity", "monsoon",
		"heatwave", "mausam",
	}},
	{DomainFinance, []string{
		"stock", "share price", "sensex", "nifty", "gold rate", "silver rate",
		"rupee", "exchange rate", "petrol price", "diesel price",
	}},
	{DomainEntertainment, []string{
		"movie", "film", "rating", "imdb", "review", "trailer", "box office",
		"series", "song", "album", "show timings",
	}},
	{DomainFood, []string{
		"restaurant", "restaurants", "recipe", "food", "cafe", "dhaba",
		"menu", "cuisine", "swiggy", "zomato",
	}},
	{DomainTravel, []string{
		"flight", "train", "bus", "hotel", "pnr", "irctc", "places to visit",
		"tourist", "itinerary", "visa free",
	}},
	{DomainTech, []string{
		"phone", "laptop", "specs", "specification", "launch date", "android",
		"iphone", "app", "software", "update",
	}},
	{DomainNews, []string{
		"news", "headline", "headlines", "breaking", "today", "latest",
		"election", "announcement",
	}},
}

var routeTable = map[Domain]Route{
	DomainSports:        {DomainSports, FreshnessDay, []string{"brave", "serpapi", "tavily"}, 8, false},
	DomainWeather:       {DomainWeather, FreshnessDay, []string{"brave", "serpapi", "tavily"}, 5, false},
	DomainNews:          {DomainNews, FreshnessDay, []string{"brave", "tavily", "serpapi"}, 10, true},
	DomainFinance:       {DomainFinance, FreshnessDay, []string{"serpapi", "brave", "tavily"}, 8, false},
	DomainEntertainment: {DomainEntertainment, FreshnessWeek, []string{"brave", "serpapi", "tavily"}, 8, true},
	DomainFood:          {DomainFood, FreshnessMonth, []string{"brave", "tavily", "serpapi"}, 8, true},
	DomainTravel:        {DomainTravel, FreshnessWeek, []string{"serpapi", "brave", "tavily"}, 8, true},
	DomainTech:          {DomainTech, FreshnessWeek, []string{"brave", "serpapi", "tavily"}, 8, true},
	DomainGeneral:       {DomainGeneral, FreshnessNone, []string{"brave", "serpapi", "tavily"}, 8, true},
}

// Detect returns the topic domain for a query.
func Detect(query string) Domain {
	q := strings.ToLower(query)
	for _, rule := range domainRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.domain
			}
		}
	}
	return DomainGeneral
}

// RouteFor returns the full route for a domain.
func RouteFor(d Domain) Route {
	if r, ok := routeTable[d]; ok {
		return r
	}
	return routeTable[DomainGeneral]
}

// DetectRoute is the common Detect+RouteFor shorthand.
func DetectRoute(query string) Route {
	return RouteFor(Detect(query))
}

// ResultCount returns how many results to request for a domain.
func ResultCount(d Domain) int {
	return RouteFor(d).ResultCount
}

// ShouldWebFetch reports whether a deep page fetch usually pays off for the
// domain. Fast-changing numeric domains (scores, weather, prices) don't:
// the snippet or direct answer is already the freshest data available.
func ShouldWebFetch(d Domain) bool {
	return RouteFor(d).WebFetch
}
