package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/tracing"
)

// GroundedSource is one web source the grounded answer was built from.
type GroundedSource struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// GroundedResult is an AI answer backed by live web-search tool use. Only the
// strict high-risk path consumes it.
type GroundedResult struct {
	Answer    string           `json:"answer"`
	Sources   []GroundedSource `json:"sources"`
	ModelUsed string           `json:"model_used"`
	Latency   time.Duration    `json:"latency"`
}

// GroundedClient calls the LLM sidecar's grounded-answer endpoint. Unlike web
// providers, its failures are surfaced as errors: the strict path must not
// silently degrade to an unverified answer.
type GroundedClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGroundedClient(baseURL string, timeout time.Duration, logger *zap.Logger) *GroundedClient {
	if baseURL == "" {
		baseURL = "http://llm-service:8000"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GroundedClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Answer requests a grounded answer for a high-risk query.
func (g *GroundedClient) Answer(ctx context.Context, query, category string) (*GroundedResult, error) {
	start := time.Now()

	payload, err := json.Marshal(map[string]interface{}{
		"query":       query,
		"category":    category,
		"grounding":   true,
		"temperature": 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("grounded: marshal: %w", err)
	}

	url := fmt.Sprintf("%s/agent/grounded", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("grounded: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectTraceparent(ctx, req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grounded: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("grounded: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var body struct {
		Success   bool             `json:"success"`
		Answer    string           `json:"answer"`
		Sources   []GroundedSource `json:"sources"`
		ModelUsed string           `json:"model_used"`
		Error     string           `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("grounded: decode: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("grounded: service error: %s", body.Error)
	}

	for i := range body.Sources {
		if body.Sources[i].Domain == "" {
			body.Sources[i].Domain = hostOf(body.Sources[i].URL)
		}
	}

	g.logger.Info("grounded answer received",
		zap.Int("answer_length", len(body.Answer)),
		zap.Int("sources", len(body.Sources)),
		zap.String("model", body.ModelUsed),
		zap.Duration("latency", time.Since(start)),
	)

	return &GroundedResult{
		Answer:    body.Answer,
		Sources:   body.Sources,
		ModelUsed: body.ModelUsed,
		Latency:   time.Since(start),
	}, nil
}
