// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-finder/pkg/types"
)

// fixedNow pins relative-year resolution for deterministic assertions.
var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testExtractor() *Extractor {
	return New(0).WithClock(func() time.Time { return fixedNow })
}

func TestExtract_TopicAndYear(t *testing.T) {
	intent := testExtractor().Extract("machine learning papers after 2020")

	assert.Equal(t, "machine learning", intent.Topic)
	require.NotNil(t, intent.Years)
	assert.Equal(t, 2020, intent.Years.From)
	assert.Zero(t, intent.Years.To)
	assert.False(t, intent.CitationPriority)
	assert.Equal(t, types.DefaultResultCount, intent.ResultCount)
}

func TestExtract_CitationFocus(t *testing.T) {
	intent := testExtractor().Extract("most cited neural network papers")

	assert.Equal(t, "neural network", intent.Topic)
	assert.True(t, intent.CitationPriority)
	assert.Nil(t, intent.Years)
	assert.Equal(t, types.DefaultResultCount, intent.ResultCount)
}

func TestExtract_ResultCount(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"show 10 papers about robotics", 10},
		{"top 25 machine learning papers", 25},
		{"find the top 3 cited papers on nlp", 3},
		{"papers about robotics", types.DefaultResultCount},
		{"give me 500 papers about ai", types.MaxResultCount},
	}
	for _, tt := range tests {
		intent := testExtractor().Extract(tt.query)
		assert.Equal(t, tt.want, intent.ResultCount, "query: %s", tt.query)
	}
}

func TestExtract_RelativeYears(t *testing.T) {
	tests := []struct {
		query    string
		wantFrom int
		wantTo   int
	}{
		{"deep learning papers from the last 5 years", 2021, 0},
		{"papers about nlp from the past year", 2025, 0},
		{"recent years research on robotics", 2021, 0},
		{"papers on ai from 2018 to 2022", 2018, 2022},
		{"quantum computing papers published in 2019", 2019, 2019},
		{"machine learning papers from the 2010s", 2010, 2019},
	}
	for _, tt := range tests {
		intent := testExtractor().Extract(tt.query)
		require.NotNil(t, intent.Years, "query: %s", tt.query)
		assert.Equal(t, tt.wantFrom, intent.Years.From, "query: %s", tt.query)
		assert.Equal(t, tt.wantTo, intent.Years.To, "query: %s", tt.query)
	}
}

func TestExtract_ImplausibleYearIgnored(t *testing.T) {
	intent := testExtractor().Extract("papers about the year 3000 in science fiction")
	assert.Nil(t, intent.Years)
}

func TestExtract_MisspelledTopic(t *testing.T) {
	// Misspellings reach the vocabulary fallback, which canonicalizes.
	intent := testExtractor().Extract("show me work on machien learning")
	assert.Equal(t, "machine learning", intent.Topic)

	intent = testExtractor().Extract("anything recent in quantam computing")
	assert.Equal(t, "quantum computing", intent.Topic)
}

func TestExtract_AnalysisRequest(t *testing.T) {
	intent := testExtractor().Extract("summarize recent papers about computer vision")
	assert.True(t, intent.WantsAnalysis)

	intent = testExtractor().Extract("papers about computer vision")
	assert.False(t, intent.WantsAnalysis)
}

func TestExtract_SpecificTitle(t *testing.T) {
	intent := testExtractor().Extract(`how many citations does the paper "Attention Is All You Need" have`)
	assert.True(t, intent.CitationPriority)
	assert.Equal(t, "attention is all you need", intent.SpecificTitle)

	// A quoted span without citation focus is not a title lookup.
	intent = testExtractor().Extract(`papers about "graph theory" applications`)
	assert.Empty(t, intent.SpecificTitle)
}

func TestExtract_EmptyIntent(t *testing.T) {
	intent := testExtractor().Extract("???")

	assert.True(t, intent.IsEmpty())
	assert.Equal(t, types.DefaultResultCount, intent.ResultCount)
}

func TestExtract_SalientWordFallback(t *testing.T) {
	intent := testExtractor().Extract("photosynthesis efficiency measurements")
	assert.Contains(t, intent.Topic, "photosynthesis")
}
