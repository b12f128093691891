package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsTriage/internal/config"
	"NewsTriage/internal/ports"
)

// AnalysisClient forwards emitted records to the deep-analysis consumer
// behind an OpenAI-compatible chat endpoint. The analysis itself happens
// downstream; this client only delivers the payload.
type AnalysisClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.AnalysisClient = (*AnalysisClient)(nil)

// NewAnalysisClient builds a client from configuration.
func NewAnalysisClient(cfg config.DownstreamConfig) *AnalysisClient {
	return &AnalysisClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// SendRecords posts the record JSON as a user message.
func (c *AnalysisClient) SendRecords(ctx context.Context, payload []byte) error {
	if c == nil {
		return fmt.Errorf("analysis client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return fmt.Errorf("analysis client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(payload)},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal analysis payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("analysis endpoint error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You receive triaged news signal records for deep analysis."
	}
	return prompt
}
