// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sqlbuild turns parsed intent into executable, parameterized
// SELECT queries over the papers schema, and vets generated SQL before it
// is allowed anywhere near the executor.
// Implements: prd008-query-understanding (R3, R4).
package sqlbuild

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/research-finder/pkg/types"
)

// SelectColumns is the projection every built query uses, matching the
// papers schema exactly.
const SelectColumns = "id, title, author, pub_date, venue, type"

// topicSynonyms widens known research areas to the related terms that
// actually appear in paper titles. Keys are canonical topic strings.
var topicSynonyms = map[string][]string{
	"neural networks":             {"neural network", "deep learning", "cnn", "rnn", "lstm"},
	"machine learning":            {"machine learning", "data mining", "supervised learning", "classification"},
	"quantum computing":           {"quantum", "qubit", "quantum algorithm"},
	"natural language processing": {"natural language", "nlp", "language model", "text mining"},
	"artificial intelligence":     {"artificial intelligence", "machine intelligence"},
	"computer vision":             {"computer vision", "image recognition", "object detection"},
}

// Builder constructs StructuredQueries from intent. It is pure apart from
// the clock, which bounds open-ended date ranges.
type Builder struct {
	now func() time.Time
}

// New returns a Builder using the wall clock.
func New() *Builder {
	return &Builder{now: time.Now}
}

// WithClock overrides the time source. Tests use a fixed clock.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build constructs a parameterized single-statement SELECT from intent.
// Free-text fragments are always bound parameters; interpolating user text
// into the predicate is a defect, not a style choice. Build never fails:
// the empty intent yields a valid unfiltered, limited query.
func (b *Builder) Build(intent types.ParsedIntent) types.StructuredQuery {
	var (
		conds  []string
		params []any
	)

	switch {
	case intent.SpecificTitle != "":
		conds = append(conds, "LOWER(title) LIKE ?")
		params = append(params, contains(intent.SpecificTitle))
	case intent.Topic != "":
		cond, args := topicCondition(intent.Topic)
		conds = append(conds, cond)
		params = append(params, args...)
	}

	if intent.Years != nil {
		conds = append(conds, "pub_date >= ?")
		params = append(params, fmt.Sprintf("%04d-01-01", intent.Years.From))
		if intent.Years.To > 0 {
			conds = append(conds, "pub_date <= ?")
			params = append(params, fmt.Sprintf("%04d-12-31", intent.Years.To))
		} else {
			// Open-ended range still excludes rows dated in the future;
			// the store contains a handful of bad pub_date values.
			conds = append(conds, "pub_date <= ?")
			params = append(params, fmt.Sprintf("%04d-12-31", b.now().Year()))
		}
	}

	var qb strings.Builder
	qb.WriteString("SELECT ")
	qb.WriteString(SelectColumns)
	qb.WriteString(" FROM papers")
	if len(conds) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(conds, " AND "))
	}
	if intent.CitationPriority {
		// The store has no citation counts to sort on; recency ordering
		// keeps results deterministic until the ranker reorders them.
		qb.WriteString(" ORDER BY pub_date DESC")
	}
	qb.WriteString(" LIMIT ?")
	params = append(params, intent.ResultCount)

	return types.StructuredQuery{
		SelectText:      qb.String(),
		Params:          params,
		SortByCitations: intent.CitationPriority,
		Limit:           intent.ResultCount,
		Path:            types.PathPattern,
	}
}

// Minimal returns the unfiltered degrade query: no predicate, LIMIT n.
// Used when rule extraction found nothing and generation was rejected.
func Minimal(n int) types.StructuredQuery {
	if n <= 0 {
		n = types.DefaultResultCount
	}
	return types.StructuredQuery{
		SelectText: "SELECT " + SelectColumns + " FROM papers LIMIT ?",
		Params:     []any{n},
		Limit:      n,
		Path:       types.PathMinimal,
	}
}

// topicCondition returns the predicate and bound arguments for a topic.
// Known research areas expand to synonym disjunctions; everything else is
// a single case-insensitive substring match.
func topicCondition(topic string) (string, []any) {
	terms := topicSynonyms[strings.ToLower(topic)]
	if len(terms) == 0 {
		terms = []string{topic}
	}

	parts := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, t := range terms {
		parts[i] = "LOWER(title) LIKE ?"
		args[i] = contains(t)
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// contains wraps a term for substring LIKE matching. The term itself is a
// bound argument, so LIKE metacharacters in user text are harmless to the
// clause shape.
func contains(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
