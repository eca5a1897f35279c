// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citations

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/research-finder/internal/fallback"
	"github.com/pdiddy/research-finder/pkg/types"
)

// Resolver enriches a batch of papers with citation records. Lookups for
// different papers run concurrently under a worker cap; one paper failing
// never fails the batch, it just carries an unavailable record.
type Resolver struct {
	local         *LocalClient
	public        *PublicClient
	workers       int64
	lookupTimeout time.Duration
	batchDeadline time.Duration
	sampleSize    int
	log           *logrus.Entry
}

// NewResolver builds a resolver from cfg. Either source may be absent;
// with both absent every paper resolves as unavailable.
func NewResolver(cfg types.CitationConfig, log *logrus.Logger) *Resolver {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	lookupTimeout := cfg.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	batchDeadline := cfg.BatchDeadline
	if batchDeadline <= 0 {
		batchDeadline = 60 * time.Second
	}
	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = 3
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		local:         NewLocalClient(cfg.LocalBaseURL, cfg.HTTPConfig),
		public:        NewPublicClient(cfg.PublicBaseURL, cfg.AccessToken, cfg.HTTPConfig),
		workers:       int64(workers),
		lookupTimeout: lookupTimeout,
		batchDeadline: batchDeadline,
		sampleSize:    sampleSize,
		log:           log.WithField("component", "citations"),
	}
}

// Resolve returns one EnrichedPaper per input paper, in input order. It
// never returns an error: papers whose lookups fail, or that are still
// pending when the batch deadline passes, carry a zero count marked
// unavailable.
func (r *Resolver) Resolve(ctx context.Context, papers []types.PaperRecord) []types.EnrichedPaper {
	ctx, cancel := context.WithTimeout(ctx, r.batchDeadline)
	defer cancel()

	records := make([]types.CitationRecord, len(papers))
	ids := make([]Identifier, len(papers))
	for i, p := range papers {
		ids[i] = Reconcile(p.ID)
		records[i] = types.CitationRecord{PaperID: p.ID, Source: types.SourceUnavailable}
	}

	pending := r.bulkResolve(ctx, ids, records)
	r.chainResolve(ctx, ids, records, pending)

	out := make([]types.EnrichedPaper, len(papers))
	for i, p := range papers {
		out[i] = types.EnrichedPaper{PaperRecord: p, Citations: records[i]}
	}
	return out
}

// bulkResolve tries the primary source's batch endpoint for every paper
// with a local id, filling records for the hits. It returns the indexes
// still unresolved. On any bulk failure all resolvable papers fall
// through to the per-paper chain.
func (r *Resolver) bulkResolve(ctx context.Context, ids []Identifier, records []types.CitationRecord) []int {
	var (
		localIDs []string
		pending  []int
	)
	for i, id := range ids {
		if !id.Resolvable() {
			continue
		}
		pending = append(pending, i)
		if id.Local != "" {
			localIDs = append(localIDs, id.Local)
		}
	}
	if r.local == nil || len(localIDs) < 2 {
		return pending
	}

	results, err := r.local.BulkCitations(ctx, localIDs)
	if err != nil {
		r.log.WithError(err).Debug("bulk citation lookup failed, falling back to per-paper lookups")
		return pending
	}

	remaining := pending[:0]
	for _, i := range pending {
		rec, ok := results[ids[i].Local]
		if !ok {
			remaining = append(remaining, i)
			continue
		}
		rec.PaperID = records[i].PaperID
		rec.SampleCitingIDs = r.sample(rec.SampleCitingIDs)
		records[i] = rec
	}
	r.log.WithFields(logrus.Fields{
		"resolved":  len(pending) - len(remaining),
		"remaining": len(remaining),
	}).Debug("bulk citation lookup done")
	return remaining
}

// chainResolve runs the per-paper source chain for each pending index,
// capped at the configured worker count.
func (r *Resolver) chainResolve(ctx context.Context, ids []Identifier, records []types.CitationRecord, pending []int) {
	chain := r.chain()
	if len(chain) == 0 {
		return
	}

	sem := semaphore.NewWeighted(r.workers)
	var wg sync.WaitGroup

	for _, i := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Batch deadline passed; everything still pending stays
			// unavailable.
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			rec, source, err := chain.Run(ctx, ids[i])
			if err != nil {
				r.log.WithError(err).WithField("paper_id", records[i].PaperID).
					Debug("citation lookup exhausted all sources")
				return
			}
			rec.PaperID = records[i].PaperID
			rec.SampleCitingIDs = r.sample(rec.SampleCitingIDs)
			records[i] = rec
			r.log.WithFields(logrus.Fields{
				"paper_id": rec.PaperID,
				"source":   source,
				"count":    rec.Count,
			}).Debug("citation lookup resolved")
		}(i)
	}
	wg.Wait()
}

// chain builds the ordered source list for one paper: the local index
// first, then the public API.
func (r *Resolver) chain() fallback.Chain[Identifier, types.CitationRecord] {
	var c fallback.Chain[Identifier, types.CitationRecord]
	if r.local != nil {
		c = append(c, fallback.Strategy[Identifier, types.CitationRecord]{
			Name:    "local-index",
			Attempt: r.fromLocal,
		})
	}
	if r.public != nil {
		c = append(c, fallback.Strategy[Identifier, types.CitationRecord]{
			Name:    "opencitations",
			Attempt: r.fromPublic,
		})
	}
	return c
}

func (r *Resolver) fromLocal(ctx context.Context, id Identifier) (types.CitationRecord, error) {
	if id.Local == "" {
		return types.CitationRecord{}, errNoIdentifier
	}
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	count, citing, err := r.local.Citations(ctx, id.Local)
	if err != nil {
		return types.CitationRecord{}, err
	}
	return types.CitationRecord{Count: count, Source: types.SourcePrimary, SampleCitingIDs: citing}, nil
}

func (r *Resolver) fromPublic(ctx context.Context, id Identifier) (types.CitationRecord, error) {
	if id.DOI == "" {
		return types.CitationRecord{}, errNoIdentifier
	}
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	count, err := r.public.CitationCount(ctx, id.DOI)
	if err != nil {
		return types.CitationRecord{}, err
	}
	// The citing list is best-effort; a count without a sample is still a
	// resolved record.
	citing, err := r.public.Citations(ctx, id.DOI)
	if err != nil {
		citing = nil
	}
	return types.CitationRecord{Count: count, Source: types.SourceSecondary, SampleCitingIDs: citing}, nil
}

func (r *Resolver) sample(citing []string) []string {
	if len(citing) > r.sampleSize {
		return citing[:r.sampleSize]
	}
	return citing
}
