// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-finder/internal/httputil"
	"github.com/pdiddy/research-finder/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testConfig(localURL, publicURL string) types.CitationConfig {
	return types.CitationConfig{
		HTTPConfig:    types.HTTPConfig{Timeout: 2 * time.Second, UserAgent: "research-finder/test"},
		LocalBaseURL:  localURL,
		PublicBaseURL: publicURL,
		Workers:       4,
		LookupTimeout: 2 * time.Second,
		BatchDeadline: 10 * time.Second,
		SampleSize:    3,
	}
}

func papersWithIDs(ids ...string) []types.PaperRecord {
	papers := make([]types.PaperRecord, len(ids))
	for i, id := range ids {
		papers[i] = types.PaperRecord{ID: id, Title: "Paper " + id}
	}
	return papers
}

// localService fakes the local citation index. Ids in failing get a 500
// on single lookups and are omitted from bulk responses.
func localService(t *testing.T, counts map[string]int, failing map[string]bool, bulkCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/status":
			fmt.Fprint(w, `{"status":"ok"}`)

		case r.Method == http.MethodPost && r.URL.Path == "/api/paper/citations":
			if bulkCalls != nil {
				atomic.AddInt32(bulkCalls, 1)
			}
			var req bulkRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			results := map[string]citationsResponse{}
			for _, id := range req.IDs {
				if failing[id] {
					continue
				}
				if n, ok := counts[id]; ok {
					results[id] = citationsResponse{Status: "ok", Count: n, Citations: []string{"c1", "c2", "c3", "c4"}}
				}
			}
			json.NewEncoder(w).Encode(bulkResponse{Status: "ok", Results: results})

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/paper/citations/"):
			id := strings.TrimPrefix(r.URL.Path, "/api/paper/citations/")
			if failing[id] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			n, ok := counts[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(citationsResponse{Status: "ok", Count: n, Citations: []string{"c1"}})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestResolve_BulkFastPath(t *testing.T) {
	var bulkCalls int32
	counts := map[string]int{
		"omid:br/01": 10,
		"omid:br/02": 20,
		"omid:br/03": 30,
	}
	ts := localService(t, counts, nil, &bulkCalls)
	defer ts.Close()

	r := NewResolver(testConfig(ts.URL, ""), quietLogger())
	// The second id is a combined Meta-dump value; its Meta id still
	// routes through the bulk endpoint.
	enriched := r.Resolve(context.Background(), papersWithIDs("meta:br/01", "doi:10.5/z meta:br/02", "meta:br/03"))

	require.Len(t, enriched, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&bulkCalls))
	for i, want := range []int{10, 20, 30} {
		assert.Equal(t, want, enriched[i].Citations.Count)
		assert.Equal(t, types.SourcePrimary, enriched[i].Citations.Source)
		assert.LessOrEqual(t, len(enriched[i].Citations.SampleCitingIDs), 3)
	}
}

func TestResolve_PartialFailureKeepsBatch(t *testing.T) {
	counts := map[string]int{
		"omid:br/01": 5,
		"omid:br/02": 15,
		"omid:br/03": 25,
		"omid:br/04": 35,
	}
	failing := map[string]bool{"omid:br/05": true}
	ts := localService(t, counts, failing, nil)
	defer ts.Close()

	r := NewResolver(testConfig(ts.URL, ""), quietLogger())
	enriched := r.Resolve(context.Background(),
		papersWithIDs("meta:br/01", "meta:br/02", "meta:br/03", "meta:br/04", "meta:br/05"))

	require.Len(t, enriched, 5)

	resolved := 0
	for _, p := range enriched {
		if p.Citations.Source == types.SourcePrimary {
			resolved++
		}
	}
	assert.Equal(t, 4, resolved)

	assert.Equal(t, "meta:br/05", enriched[4].Citations.PaperID)
	assert.Equal(t, types.SourceUnavailable, enriched[4].Citations.Source)
	assert.Zero(t, enriched[4].Citations.Count)
}

func TestResolve_AllSourcesUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close() // connection refused from here on

	r := NewResolver(testConfig(ts.URL, ""), quietLogger())
	papers := papersWithIDs("meta:br/01", "doi:10.1/x", "10.2/y")
	enriched := r.Resolve(context.Background(), papers)

	require.Len(t, enriched, 3)
	for i, p := range enriched {
		assert.Equal(t, papers[i].ID, p.Citations.PaperID, "order preserved")
		assert.Equal(t, types.SourceUnavailable, p.Citations.Source)
	}
}

func TestResolve_FallsBackToPublicAPI(t *testing.T) {
	public := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/citation-count/"):
			fmt.Fprint(w, `[{"count":"42"}]`)
		case strings.HasPrefix(r.URL.Path, "/citations/"):
			fmt.Fprint(w, `[{"citing":"10.9/c1","creation":"2022"},{"citing":"10.9/c2","creation":"2023"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer public.Close()

	// No local service configured: the chain starts at the public API.
	r := NewResolver(testConfig("", public.URL), quietLogger())
	enriched := r.Resolve(context.Background(), papersWithIDs("doi:10.1/abc"))

	require.Len(t, enriched, 1)
	c := enriched[0].Citations
	assert.Equal(t, 42, c.Count)
	assert.Equal(t, types.SourceSecondary, c.Source)
	assert.Equal(t, []string{"10.9/c1", "10.9/c2"}, c.SampleCitingIDs)
}

func TestResolve_NoIdentifierSkipsNetwork(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	r := NewResolver(testConfig(ts.URL, ts.URL), quietLogger())
	enriched := r.Resolve(context.Background(), papersWithIDs("arxiv:2301.00001"))

	require.Len(t, enriched, 1)
	assert.Equal(t, types.SourceUnavailable, enriched[0].Citations.Source)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestResolve_BatchDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL, "")
	cfg.BatchDeadline = 50 * time.Millisecond
	cfg.Workers = 1

	r := NewResolver(cfg, quietLogger())
	start := time.Now()
	enriched := r.Resolve(context.Background(), papersWithIDs("meta:br/01"))
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	require.Len(t, enriched, 1)
	assert.Equal(t, types.SourceUnavailable, enriched[0].Citations.Source)
}
