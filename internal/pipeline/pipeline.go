// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a query run end to end: rewrite, intent
// extraction, query construction, store execution, citation enrichment,
// ranking, and analysis. Only the store can fail a run; every other stage
// degrades and records why. Implements: prd008-query-understanding (R1-R5),
// prd010-citation-enrichment (R5).
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-finder/internal/analyze"
	"github.com/pdiddy/research-finder/internal/citations"
	"github.com/pdiddy/research-finder/internal/intent"
	"github.com/pdiddy/research-finder/internal/llm"
	"github.com/pdiddy/research-finder/internal/rank"
	"github.com/pdiddy/research-finder/internal/sqlbuild"
	"github.com/pdiddy/research-finder/internal/store"
	"github.com/pdiddy/research-finder/pkg/types"
)

// Result is the complete outcome of one pipeline run.
type Result struct {
	// RunID correlates this run's log lines.
	RunID string `json:"run_id" yaml:"run_id"`

	// Intent is the structured reading of the query. Zero-valued when the
	// run took the generative or minimal path.
	Intent types.ParsedIntent `json:"intent" yaml:"intent"`

	// Query is the statement that was executed, including its path.
	Query types.StructuredQuery `json:"query" yaml:"query"`

	// Papers are the ranked, citation-enriched results.
	Papers []types.EnrichedPaper `json:"papers" yaml:"papers"`

	// Analysis is present when the query asked for one and analysis is
	// enabled.
	Analysis *types.AnalysisResult `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// NoMatches is set when the query executed cleanly but matched nothing.
	NoMatches bool `json:"no_matches" yaml:"no_matches"`

	// Degraded is set when any stage fell back from its preferred path.
	// DegradedReasons says which and why.
	Degraded        bool     `json:"degraded" yaml:"degraded"`
	DegradedReasons []string `json:"degraded_reasons,omitempty" yaml:"degraded_reasons,omitempty"`
}

// Engine wires the pipeline stages. Construct with New.
type Engine struct {
	cfg       types.PipelineConfig
	extractor *intent.Extractor
	builder   *sqlbuild.Builder
	store     *store.Store
	rewriter  *llm.Rewriter
	generator *llm.SQLGenerator
	resolver  *citations.Resolver
	analyzer  *analyze.Analyzer
	log       *logrus.Logger
}

// New assembles an Engine over an open store. client may be nil, which
// disables the rewrite, generative-query, and generative-analysis paths;
// the pipeline still runs, it just degrades earlier.
func New(cfg types.PipelineConfig, st *store.Store, client llm.Client, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		cfg:       cfg,
		extractor: intent.New(cfg.Query.DefaultResultCount),
		builder:   sqlbuild.New(),
		store:     st,
		rewriter:  llm.NewRewriter(client, cfg.AI.MaxTokens),
		generator: llm.NewSQLGenerator(client, cfg.AI.MaxTokens),
		resolver:  citations.NewResolver(cfg.Citations, log),
		analyzer:  analyze.New(client, cfg.AI.MaxTokens, log),
		log:       log,
	}
}

// Run executes one query through every stage. The returned error is
// non-nil only for store failures; all other stage failures surface as
// degradation on the Result.
func (e *Engine) Run(ctx context.Context, raw types.RawQuery) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := e.logger().WithFields(logrus.Fields{"run_id": result.RunID})
	log.WithField("query", raw.Text).Info("pipeline run started")

	text := raw.Text
	if e.cfg.Query.EnableRewrite {
		if rewritten := e.rewriter.Rewrite(ctx, text); rewritten != text {
			log.WithField("rewritten", rewritten).Debug("query rewritten")
			text = rewritten
		}
	}

	result.Intent = e.extractor.Extract(text)
	if raw.ResultCount > 0 {
		result.Intent.ResultCount = min(raw.ResultCount, types.MaxResultCount)
	}

	// Query construction always starts from the original text on the
	// generative path: a rewrite that stripped the signal rules needed
	// must not also starve the generator.
	result.Query = e.buildQuery(ctx, raw.Text, result)
	log.WithFields(logrus.Fields{
		"path": result.Query.Path,
		"sql":  result.Query.SelectText,
	}).Debug("query constructed")

	papers, err := e.store.Execute(ctx, result.Query)
	if err != nil {
		log.WithError(err).Error("store execution failed")
		return nil, fmt.Errorf("executing query: %w", err)
	}
	if len(papers) == 0 {
		result.NoMatches = true
		log.Info("pipeline run finished with no matches")
		return result, nil
	}

	enriched := e.resolver.Resolve(ctx, papers)
	if n := countUnavailable(enriched); n > 0 {
		result.degrade(fmt.Sprintf("citations unavailable for %d of %d papers", n, len(enriched)))
	}

	result.Papers = rank.Order(enriched, result.Query.SortByCitations)

	if e.cfg.Query.EnableAnalysis && result.Intent.WantsAnalysis {
		analysis := e.analyzer.Summarize(ctx, result.Papers, result.Intent.Topic)
		if analysis.Path == types.AnalysisLocal {
			result.degrade("analysis generated locally")
		}
		result.Analysis = &analysis
	}

	log.WithFields(logrus.Fields{
		"papers":   len(result.Papers),
		"degraded": result.Degraded,
	}).Info("pipeline run finished")
	return result, nil
}

// buildQuery picks the construction path: pattern when extraction found
// anything, otherwise generative, otherwise minimal.
func (e *Engine) buildQuery(ctx context.Context, originalText string, result *Result) types.StructuredQuery {
	if !result.Intent.IsEmpty() {
		return e.builder.Build(result.Intent)
	}

	q, err := e.generator.Generate(ctx, originalText, result.Intent.ResultCount)
	if err != nil {
		result.degrade("generative query failed: " + err.Error())
		return sqlbuild.Minimal(result.Intent.ResultCount)
	}
	result.degrade("query built generatively, extraction found no intent")
	return q
}

func (e *Engine) logger() *logrus.Logger {
	if e.log != nil {
		return e.log
	}
	return logrus.StandardLogger()
}

func (r *Result) degrade(reason string) {
	r.Degraded = true
	r.DegradedReasons = append(r.DegradedReasons, reason)
}

func countUnavailable(papers []types.EnrichedPaper) int {
	n := 0
	for _, p := range papers {
		if p.Citations.Source == types.SourceUnavailable {
			n++
		}
	}
	return n
}
