// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze turns a result set into a short narrative analysis.
// The generative path produces the richer text; the local path derives a
// deterministic summary from the records alone, so an analysis is always
// available. Implements: prd009-generative-assist (R2).
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-finder/internal/fallback"
	"github.com/pdiddy/research-finder/internal/llm"
	"github.com/pdiddy/research-finder/pkg/types"
)

const analyzePrompt = `Analyze this set of research papers for someone deciding what to read.

Reply in exactly this format: the first line is a one-sentence headline,
then one or more sections, each starting with a line "## Section Title"
followed by a short paragraph. Cover the dominant themes, the time span,
and which papers look most influential. Do not invent papers or numbers
not present below.

Papers:
%PAPERS%`

// Analyzer produces an AnalysisResult for a result set.
type Analyzer struct {
	client    llm.Client
	maxTokens int
	log       *logrus.Entry
}

// New returns an Analyzer. A nil client skips straight to the local path.
func New(client llm.Client, maxTokens int, log *logrus.Logger) *Analyzer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{client: client, maxTokens: maxTokens, log: log.WithField("component", "analyze")}
}

// Summarize analyzes papers, preferring the generative path and falling
// back to the local one. It never fails: the local path is total.
func (a *Analyzer) Summarize(ctx context.Context, papers []types.EnrichedPaper, topic string) types.AnalysisResult {
	chain := fallback.Chain[[]types.EnrichedPaper, types.AnalysisResult]{}
	if a.client != nil {
		chain = append(chain, fallback.Strategy[[]types.EnrichedPaper, types.AnalysisResult]{
			Name:    "llm",
			Attempt: a.generate,
		})
	}
	chain = append(chain, fallback.Strategy[[]types.EnrichedPaper, types.AnalysisResult]{
		Name: "local",
		Attempt: func(ctx context.Context, papers []types.EnrichedPaper) (types.AnalysisResult, error) {
			return Local(papers, topic), nil
		},
	})

	result, source, err := chain.Run(ctx, papers)
	if err != nil {
		// Only reachable via context cancellation before the local
		// strategy ran.
		a.log.WithError(err).Debug("analysis chain aborted")
		return Local(papers, topic)
	}
	if source != "local" {
		a.log.WithField("source", source).Debug("analysis generated")
	}
	return result
}

// generate asks the model for an analysis and parses it into the shared
// result shape. Malformed output is an error, which moves the chain on to
// the local path.
func (a *Analyzer) generate(ctx context.Context, papers []types.EnrichedPaper) (types.AnalysisResult, error) {
	if len(papers) == 0 {
		return types.AnalysisResult{}, fmt.Errorf("nothing to analyze")
	}

	out, err := a.client.Complete(ctx, strings.Replace(analyzePrompt, "%PAPERS%", describe(papers), 1), a.maxTokens)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return parseAnalysis(out)
}

// describe renders the result set into the prompt's paper list.
func describe(papers []types.EnrichedPaper) string {
	var b strings.Builder
	for _, p := range papers {
		fmt.Fprintf(&b, "- %q", p.Title)
		if !p.PubDate.IsZero() {
			fmt.Fprintf(&b, ", %d", p.PubDate.Year())
		}
		if p.Venue != "" {
			fmt.Fprintf(&b, ", %s", p.Venue)
		}
		if p.Citations.Source != types.SourceUnavailable {
			fmt.Fprintf(&b, ", %d citations", p.Citations.Count)
		} else {
			b.WriteString(", citations unknown")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// parseAnalysis splits model output into headline and "## "-delimited
// sections. Output with no headline is rejected; output with no sections
// keeps everything after the headline as a single overview section.
func parseAnalysis(out string) (types.AnalysisResult, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" || strings.HasPrefix(lines[0], "##") {
		return types.AnalysisResult{}, fmt.Errorf("malformed analysis output")
	}

	result := types.AnalysisResult{
		Headline: strings.TrimSpace(lines[0]),
		Path:     types.AnalysisLLM,
	}

	var current *types.AnalysisSection
	var body strings.Builder
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(body.String())
			result.Sections = append(result.Sections, *current)
			body.Reset()
		}
	}
	for _, line := range lines[1:] {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "## "); ok {
			flush()
			current = &types.AnalysisSection{Title: strings.TrimSpace(title)}
			continue
		}
		if current == nil && strings.TrimSpace(line) != "" {
			current = &types.AnalysisSection{Title: "Overview"}
		}
		if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()
	return result, nil
}
