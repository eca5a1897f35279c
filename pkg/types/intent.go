// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultResultCount is the result limit used when a query does not ask
// for a specific number of papers.
const DefaultResultCount = 5

// MaxResultCount caps explicitly requested result counts.
const MaxResultCount = 100

// RawQuery is the immutable free-text input to the pipeline.
type RawQuery struct {
	// Text is the research question as typed.
	Text string `json:"text" yaml:"text"`

	// ResultCount overrides the extracted result count when positive.
	ResultCount int `json:"result_count,omitempty" yaml:"result_count,omitempty"`
}

// YearFilter is a publication-date constraint. A zero To means an
// open-ended range ("since 2020").
type YearFilter struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to,omitempty" yaml:"to,omitempty"`
}

// ParsedIntent is the structured reading of a free-text query. It is
// total: extraction always returns a fully populated value, with
// unmatched fields at their defaults rather than absent.
type ParsedIntent struct {
	// Topic is the research-area span, empty when no rule matched one.
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`

	// Years constrains publication dates when non-nil.
	Years *YearFilter `json:"years,omitempty" yaml:"years,omitempty"`

	// CitationPriority is set when the query asks for citation impact
	// ("most cited", "highest impact").
	CitationPriority bool `json:"citation_priority" yaml:"citation_priority"`

	// ResultCount is the requested number of papers, always in
	// [1, MaxResultCount]; DefaultResultCount when unspecified.
	ResultCount int `json:"result_count" yaml:"result_count"`

	// WantsAnalysis is set when the query asks for a summary or analysis.
	WantsAnalysis bool `json:"wants_analysis" yaml:"wants_analysis"`

	// SpecificTitle is a quoted paper title for a direct citation lookup,
	// empty for ordinary topic queries.
	SpecificTitle string `json:"specific_title,omitempty" yaml:"specific_title,omitempty"`
}

// IsEmpty reports whether no rule matched a topic, year, citation cue, or
// specific title. An empty intent triggers the generative query fallback.
func (p ParsedIntent) IsEmpty() bool {
	return p.Topic == "" && p.Years == nil && !p.CitationPriority && p.SpecificTitle == ""
}
