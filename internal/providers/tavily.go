package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily is the adapter for the Tavily search API. Tavily synthesizes its own
// short answer alongside results, which maps to the direct-answer field.
type Tavily struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewTavily(apiKey string, timeout time.Duration, logger *zap.Logger) *Tavily {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Tavily{
		apiKey:   apiKey,
		endpoint: tavilyEndpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (t *Tavily) Name() string { return "tavily" }

// Search runs one Tavily query. The API has no result-locale parameter, so
// Query.Country is ignored here.
func (t *Tavily) Search(ctx context.Context, q Query) (*Result, error) {
	if t.apiKey == "" {
		return nil, nil
	}
	start := time.Now()

	reqBody := map[string]interface{}{
		"query":          q.Text,
		"max_results":    q.Count,
		"include_answer": true,
	}
	if days := tavilyDays(q.Freshness); days > 0 {
		reqBody["days"] = days
		reqBody["topic"] = "news"
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: HTTP %d", resp.StatusCode)
	}

	var body struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title         string  `json:"title"`
			URL           string  `json:"url"`
			Content       string  `json:"content"`
			Score         float64 `json:"score"`
			PublishedDate string  `json:"published_date"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tavily: decode: %w", err)
	}

	if len(body.Results) == 0 && body.Answer == "" {
		return nil, nil
	}

	result := &Result{
		Provider: t.Name(),
		Answer:   body.Answer,
		Latency:  time.Since(start),
	}
	for _, r := range body.Results {
		item := Item{
			Title:        r.Title,
			URL:          r.URL,
			Description:  r.Content,
			SourceDomain: hostOf(r.URL),
		}
		if ts, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			item.Published = ts
		}
		result.Items = append(result.Items, item)
	}

	t.logger.Debug("tavily search complete",
		zap.Int("results", len(result.Items)),
		zap.Duration("latency", result.Latency),
	)
	return result, nil
}

func tavilyDays(f routing.Freshness) int {
	switch f {
	case routing.FreshnessDay:
		return 1
	case routing.FreshnessWeek:
		return 7
	case routing.FreshnessMonth:
		return 30
	}
	return 0
}

func (t *Tavily) setEndpoint(u string) { t.endpoint = u }
