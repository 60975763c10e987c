package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave is the adapter for the Brave Web Search API. It is the only backend
// that returns a usable direct-answer string (infobox long description).
type Brave struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewBrave builds the Brave adapter. An empty API key leaves the adapter in
// the unconfigured state: every Search returns (nil, nil).
func NewBrave(apiKey string, timeout time.Duration, logger *zap.Logger) *Brave {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Brave{
		apiKey:   apiKey,
		endpoint: braveEndpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Search(ctx context.Context, q Query) (*Result, error) {
	if b.apiKey == "" {
		return nil, nil
	}
	start := time.Now()

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("count", strconv.Itoa(q.Count))
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.Freshness != routing.FreshnessNone {
		params.Set("freshness", string(q.Freshness))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("brave: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave: HTTP %d", resp.StatusCode)
	}

	var body struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				PageAge     string `json:"page_age"`
			} `json:"results"`
		} `json:"web"`
		Infobox struct {
			LongDesc string `json:"long_desc"`
		} `json:"infobox"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("brave: decode: %w", err)
	}

	if len(body.Web.Results) == 0 && body.Infobox.LongDesc == "" {
		return nil, nil
	}

	result := &Result{
		Provider: b.Name(),
		Answer:   body.Infobox.LongDesc,
		Latency:  time.Since(start),
	}
	for _, r := range body.Web.Results {
		item := Item{
			Title:        r.Title,
			URL:          r.URL,
			Description:  r.Description,
			SourceDomain: hostOf(r.URL),
		}
		if t, err := time.Parse(time.RFC3339, r.PageAge); err == nil {
			item.Published = t
		}
		result.Items = append(result.Items, item)
	}

	b.logger.Debug("brave search complete",
		zap.Int("results", len(result.Items)),
		zap.Duration("latency", result.Latency),
	)
	return result, nil
}

// setEndpoint redirects the adapter at a test server.
func (b *Brave) setEndpoint(u string) { b.endpoint = u }
