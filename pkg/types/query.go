// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QueryPath records which builder produced a StructuredQuery.
type QueryPath string

const (
	// PathPattern is the deterministic template builder.
	PathPattern QueryPath = "pattern"

	// PathGenerative is the validated LLM-generated query.
	PathGenerative QueryPath = "generative"

	// PathMinimal is the unfiltered degrade query used when generation
	// was rejected.
	PathMinimal QueryPath = "minimal"
)

// StructuredQuery is an executable, read-only SELECT over the papers
// schema. SelectText never embeds user text in predicate position: all
// free-text fragments travel in Params as bound arguments. Generative
// output only becomes a StructuredQuery after whitelist validation.
type StructuredQuery struct {
	// SelectText is the single-statement SELECT.
	SelectText string `json:"select_text" yaml:"select_text"`

	// Params are the bound arguments for SelectText placeholders.
	Params []any `json:"params,omitempty" yaml:"params,omitempty"`

	// SortByCitations defers citation ordering to the ranker; counts are
	// not stored alongside paper rows, so the store cannot sort on them.
	SortByCitations bool `json:"sort_by_citations" yaml:"sort_by_citations"`

	// Limit is the row cap, always positive.
	Limit int `json:"limit" yaml:"limit"`

	// Path records which builder produced this query.
	Path QueryPath `json:"path" yaml:"path"`
}
