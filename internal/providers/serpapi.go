package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
)

const serpAPIEndpoint = "https://serpapi.com/search.json"

// SerpAPI is the adapter for Google results via SerpAPI. Its answer box maps
// to the direct-answer field when Google surfaced one.
type SerpAPI struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewSerpAPI(apiKey string, timeout time.Duration, logger *zap.Logger) *SerpAPI {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &SerpAPI{
		apiKey:   apiKey,
		endpoint: serpAPIEndpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, q Query) (*Result, error) {
	if s.apiKey == "" {
		return nil, nil
	}
	start := time.Now()

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("num", strconv.Itoa(q.Count))
	if q.Country != "" {
		params.Set("gl", strings.ToLower(q.Country))
	}
	params.Set("hl", "en")
	params.Set("api_key", s.apiKey)
	if tbs := serpFreshness(q.Freshness); tbs != "" {
		params.Set("tbs", tbs)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi: HTTP %d", resp.StatusCode)
	}

	var body struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
			Date    string `json:"date"`
		} `json:"organic_results"`
		AnswerBox struct {
			Answer  string `json:"answer"`
			Snippet string `json:"snippet"`
		} `json:"answer_box"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("serpapi: decode: %w", err)
	}

	answer := body.AnswerBox.Answer
	if answer == "" {
		answer = body.AnswerBox.Snippet
	}
	if len(body.OrganicResults) == 0 && answer == "" {
		return nil, nil
	}

	result := &Result{
		Provider: s.Name(),
		Answer:   answer,
		Latency:  time.Since(start),
	}
	for _, r := range body.OrganicResults {
		result.Items = append(result.Items, Item{
			Title:        r.Title,
			URL:          r.Link,
			Description:  r.Snippet,
			SourceDomain: hostOf(r.Link),
		})
	}

	s.logger.Debug("serpapi search complete",
		zap.Int("results", len(result.Items)),
		zap.Duration("latency", result.Latency),
	)
	return result, nil
}

// serpFreshness maps the route freshness window onto Google's tbs parameter.
func serpFreshness(f routing.Freshness) string {
	switch f {
	case routing.FreshnessDay:
		return "qdr:d"
	case routing.FreshnessWeek:
		return "qdr:w"
	case routing.FreshnessMonth:
		return "qdr:m"
	}
	return ""
}

func (s *SerpAPI) setEndpoint(u string) { s.endpoint = u }
