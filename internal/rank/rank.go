// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders enriched papers for presentation.
package rank

import (
	"sort"

	"github.com/pdiddy/research-finder/pkg/types"
)

// Order sorts papers by citation count, highest first, when the query
// asked for citation impact; otherwise store order is preserved. The sort
// is stable, so papers with equal counts (including unavailable ones,
// which count as zero) keep their relative store order.
func Order(papers []types.EnrichedPaper, byCitations bool) []types.EnrichedPaper {
	if !byCitations {
		return papers
	}
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Citations.Count > papers[j].Citations.Count
	})
	return papers
}
