// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/research-finder/internal/httputil"
	"github.com/pdiddy/research-finder/pkg/types"
)

// PublicClient talks to the OpenCitations index API, the secondary
// citation source. It only accepts DOIs, so papers without one never
// reach it.
type PublicClient struct {
	baseURL     string
	httpClient  *http.Client
	userAgent   string
	accessToken string
}

// NewPublicClient returns a client for the API at baseURL. Returns nil
// when baseURL is empty, which disables the secondary source.
func NewPublicClient(baseURL, accessToken string, cfg types.HTTPConfig) *PublicClient {
	if baseURL == "" {
		return nil
	}
	return &PublicClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		userAgent:   cfg.UserAgent,
		accessToken: accessToken,
	}
}

// The API returns counts as JSON strings, hence json.Number.
type countEntry struct {
	Count json.Number `json:"count"`
}

type citationEntry struct {
	Citing   string `json:"citing"`
	Creation string `json:"creation"`
}

func (c *PublicClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", c.accessToken)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return fmt.Errorf("calling OpenCitations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenCitations returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding OpenCitations response: %w", err)
	}
	return nil
}

// CitationCount fetches the citation count for a DOI.
func (c *PublicClient) CitationCount(ctx context.Context, doi string) (int, error) {
	var entries []countEntry
	if err := c.get(ctx, c.baseURL+"/citation-count/"+url.PathEscape(doi), &entries); err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no citation count for %s", doi)
	}
	n, err := entries[0].Count.Int64()
	if err != nil {
		return 0, fmt.Errorf("malformed citation count for %s: %w", doi, err)
	}
	return int(n), nil
}

// Citations fetches the citing-paper ids for a DOI.
func (c *PublicClient) Citations(ctx context.Context, doi string) ([]string, error) {
	var entries []citationEntry
	if err := c.get(ctx, c.baseURL+"/citations/"+url.PathEscape(doi), &entries); err != nil {
		return nil, err
	}
	citing := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Citing != "" {
			citing = append(citing, e.Citing)
		}
	}
	return citing, nil
}
