// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the Generative AI completion API used by the query
// rewriter, the generative query fallback, and the analysis generator.
// The rest of the pipeline depends only on the narrow Client contract,
// never on a provider. Implements: prd009-generative-assist (R1).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-finder/pkg/types"
)

// ErrUnavailable marks a completion failure caused by the service itself
// (network error, non-200, empty response). Callers absorb it locally and
// take their fallback path.
var ErrUnavailable = errors.New("completion service unavailable")

// Client is the completion contract the pipeline depends on. Tests supply
// deterministic doubles; completions must never be assumed idempotent.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// anthropicAPIURL is the Messages API endpoint. Package-level var for
// test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewAnthropic returns a client configured from cfg.
func NewAnthropic(cfg types.AIConfig) *AnthropicClient {
	return &AnthropicClient{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HTTPClient: &http.Client{},
		Timeout:    cfg.Timeout,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one user prompt and returns the concatenated text blocks
// of the response. Failures are wrapped in ErrUnavailable so callers can
// branch on the taxonomy rather than provider details.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion API: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion API returned %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(msg)), ErrUnavailable)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decoding response: %w", ErrUnavailable)
	}

	var b strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty completion: %w", ErrUnavailable)
	}
	return b.String(), nil
}
