// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/research-finder/pkg/types"
)

// titleStopwords are words too common in paper titles to count as themes.
var titleStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true,
	"based": true, "by": true, "for": true, "from": true, "in": true,
	"into": true, "its": true, "new": true, "of": true, "on": true,
	"the": true, "to": true, "toward": true, "towards": true,
	"using": true, "via": true, "with": true,
}

var titleWordRe = regexp.MustCompile(`[a-z][a-z0-9-]+`)

const (
	maxThemes = 5
	maxVenues = 3
)

// Local derives an analysis from the result set alone. It is fully
// deterministic: the same papers in the same order always produce the
// same result, with ties broken alphabetically.
func Local(papers []types.EnrichedPaper, topic string) types.AnalysisResult {
	if len(papers) == 0 {
		return types.AnalysisResult{
			Headline: "No matching papers to analyze.",
			Path:     types.AnalysisLocal,
		}
	}

	result := types.AnalysisResult{
		Headline: headline(papers, topic),
		Path:     types.AnalysisLocal,
	}
	if s, ok := themesSection(papers); ok {
		result.Sections = append(result.Sections, s)
	}
	if s, ok := yearsSection(papers); ok {
		result.Sections = append(result.Sections, s)
	}
	if s, ok := venuesSection(papers); ok {
		result.Sections = append(result.Sections, s)
	}
	if s, ok := citationsSection(papers); ok {
		result.Sections = append(result.Sections, s)
	}
	return result
}

func headline(papers []types.EnrichedPaper, topic string) string {
	noun := "papers"
	if len(papers) == 1 {
		noun = "paper"
	}
	if topic != "" {
		return fmt.Sprintf("%d %s on %s.", len(papers), noun, topic)
	}
	return fmt.Sprintf("%d matching %s.", len(papers), noun)
}

// themesSection counts title words outside the stopword list.
func themesSection(papers []types.EnrichedPaper) (types.AnalysisSection, bool) {
	freq := map[string]int{}
	for _, p := range papers {
		for _, w := range titleWordRe.FindAllString(strings.ToLower(p.Title), -1) {
			if len(w) > 3 && !titleStopwords[w] {
				freq[w]++
			}
		}
	}
	top := topCounted(freq, maxThemes)
	if len(top) == 0 {
		return types.AnalysisSection{}, false
	}
	parts := make([]string, len(top))
	for i, t := range top {
		parts[i] = fmt.Sprintf("%s (%d)", t.key, t.count)
	}
	return types.AnalysisSection{
		Title: "Top themes",
		Body:  "Recurring title terms: " + strings.Join(parts, ", ") + ".",
	}, true
}

func yearsSection(papers []types.EnrichedPaper) (types.AnalysisSection, bool) {
	years := map[string]int{}
	for _, p := range papers {
		if !p.PubDate.IsZero() {
			years[fmt.Sprintf("%d", p.PubDate.Year())]++
		}
	}
	if len(years) == 0 {
		return types.AnalysisSection{}, false
	}

	keys := make([]string, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Strings(keys)
	busiest := topCounted(years, 1)[0]

	body := fmt.Sprintf("Publications span %s to %s", keys[0], keys[len(keys)-1])
	if keys[0] == keys[len(keys)-1] {
		body = fmt.Sprintf("All publications are from %s", keys[0])
	} else {
		body += fmt.Sprintf("; %s is the busiest year with %d", busiest.key, busiest.count)
	}
	return types.AnalysisSection{Title: "Publication years", Body: body + "."}, true
}

func venuesSection(papers []types.EnrichedPaper) (types.AnalysisSection, bool) {
	venues := map[string]int{}
	for _, p := range papers {
		if v := strings.TrimSpace(p.Venue); v != "" {
			venues[v]++
		}
	}
	top := topCounted(venues, maxVenues)
	if len(top) == 0 {
		return types.AnalysisSection{}, false
	}
	parts := make([]string, len(top))
	for i, t := range top {
		parts[i] = fmt.Sprintf("%s (%d)", t.key, t.count)
	}
	return types.AnalysisSection{
		Title: "Venues",
		Body:  "Most represented venues: " + strings.Join(parts, ", ") + ".",
	}, true
}

func citationsSection(papers []types.EnrichedPaper) (types.AnalysisSection, bool) {
	var (
		total    int
		resolved int
		top      *types.EnrichedPaper
	)
	for i := range papers {
		c := papers[i].Citations
		if c.Source == types.SourceUnavailable {
			continue
		}
		resolved++
		total += c.Count
		if top == nil || c.Count > top.Citations.Count {
			top = &papers[i]
		}
	}
	if resolved == 0 {
		return types.AnalysisSection{}, false
	}

	body := fmt.Sprintf("%d citations across %d papers (%.1f on average)",
		total, resolved, float64(total)/float64(resolved))
	if top != nil && top.Citations.Count > 0 {
		body += fmt.Sprintf("; most cited: %q with %d", top.Title, top.Citations.Count)
	}
	return types.AnalysisSection{Title: "Citation impact", Body: body + "."}, true
}

type counted struct {
	key   string
	count int
}

// topCounted returns the n highest-count keys, ties broken
// alphabetically so output is stable.
func topCounted(m map[string]int, n int) []counted {
	all := make([]counted, 0, len(m))
	for k, v := range m {
		all = append(all, counted{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].key < all[j].key
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
