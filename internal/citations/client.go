// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/research-finder/internal/httputil"
	"github.com/pdiddy/research-finder/pkg/types"
)

// LocalClient talks to the local citation index service, the primary
// citation source. The service fronts a pre-built index so lookups are
// cheap, but it is not always running; callers fall back to the public
// API on any error.
type LocalClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewLocalClient returns a client for the service at baseURL. Returns nil
// when baseURL is empty, which disables the primary source.
func NewLocalClient(baseURL string, cfg types.HTTPConfig) *LocalClient {
	if baseURL == "" {
		return nil
	}
	return &LocalClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
	}
}

type citationsResponse struct {
	Status    string   `json:"status"`
	Count     int      `json:"count"`
	Citations []string `json:"citations"`
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

type bulkResponse struct {
	Status  string                       `json:"status"`
	Results map[string]citationsResponse `json:"results"`
}

// Status checks service health. Used at startup to decide whether the
// bulk fast path is worth attempting.
func (c *LocalClient) Status(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return fmt.Errorf("creating status request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("citation index unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("citation index returned %d", resp.StatusCode)
	}
	return nil
}

// Citations fetches the citation count and citing-paper ids for one id.
func (c *LocalClient) Citations(ctx context.Context, id string) (int, []string, error) {
	endpoint := c.baseURL + "/api/paper/citations/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating citations request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return 0, nil, fmt.Errorf("fetching citations for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, nil, fmt.Errorf("citation index returned %d for %s", resp.StatusCode, id)
	}

	var cr citationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return 0, nil, fmt.Errorf("decoding citations for %s: %w", id, err)
	}
	if cr.Status != "ok" {
		return 0, nil, fmt.Errorf("citation index status %q for %s", cr.Status, id)
	}
	return cr.Count, cr.Citations, nil
}

// BulkCitations fetches counts for many ids in one round trip. Ids the
// index does not know are absent from the returned map; the caller sends
// those through the per-paper fallback chain instead.
func (c *LocalClient) BulkCitations(ctx context.Context, ids []string) (map[string]types.CitationRecord, error) {
	body, err := json.Marshal(bulkRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("marshaling bulk request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/paper/citations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("bulk citation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("citation index returned %d for bulk lookup", resp.StatusCode)
	}

	var br bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("decoding bulk response: %w", err)
	}
	if br.Status != "ok" {
		return nil, fmt.Errorf("citation index bulk status %q", br.Status)
	}

	out := make(map[string]types.CitationRecord, len(br.Results))
	for id, cr := range br.Results {
		out[id] = types.CitationRecord{
			Count:           cr.Count,
			Source:          types.SourcePrimary,
			SampleCitingIDs: cr.Citations,
		}
	}
	return out, nil
}
