// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AnalysisPath records which generator produced an AnalysisResult.
type AnalysisPath string

const (
	// AnalysisLLM is the external narrative generator.
	AnalysisLLM AnalysisPath = "llm"

	// AnalysisLocal is the deterministic local summarizer.
	AnalysisLocal AnalysisPath = "local"
)

// AnalysisSection is one titled block of narrative.
type AnalysisSection struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// AnalysisResult is a structured narrative over a ranked result set. Both
// generation paths populate the same fields, so formatting never branches
// on which path ran; Path is informational provenance only.
type AnalysisResult struct {
	// Headline is a one-line characterization of the result set.
	Headline string `json:"headline" yaml:"headline"`

	// Sections are the narrative blocks in display order.
	Sections []AnalysisSection `json:"sections" yaml:"sections"`

	// Path records which generator ran.
	Path AnalysisPath `json:"path" yaml:"path"`
}
