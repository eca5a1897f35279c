// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sqlbuild

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-finder/pkg/types"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testBuilder() *Builder {
	return New().WithClock(func() time.Time { return fixedNow })
}

func TestBuild_TopicAndYears(t *testing.T) {
	q := testBuilder().Build(types.ParsedIntent{
		Topic:       "graph algorithms",
		Years:       &types.YearFilter{From: 2018, To: 2022},
		ResultCount: 5,
	})

	assert.Equal(t,
		"SELECT id, title, author, pub_date, venue, type FROM papers"+
			" WHERE LOWER(title) LIKE ? AND pub_date >= ? AND pub_date <= ? LIMIT ?",
		q.SelectText)
	assert.Equal(t, []any{"%graph algorithms%", "2018-01-01", "2022-12-31", 5}, q.Params)
	assert.Equal(t, types.PathPattern, q.Path)
	assert.False(t, q.SortByCitations)
}

func TestBuild_OpenEndedYearsExcludeFuture(t *testing.T) {
	q := testBuilder().Build(types.ParsedIntent{
		Years:       &types.YearFilter{From: 2020},
		ResultCount: 5,
	})

	require.Len(t, q.Params, 3)
	assert.Equal(t, "2020-01-01", q.Params[0])
	assert.Equal(t, "2026-12-31", q.Params[1])
}

func TestBuild_KnownTopicExpandsSynonyms(t *testing.T) {
	q := testBuilder().Build(types.ParsedIntent{
		Topic:       "neural networks",
		ResultCount: 10,
	})

	assert.Contains(t, q.SelectText, "(LOWER(title) LIKE ? OR ")
	assert.Contains(t, q.Params, "%deep learning%")
	assert.Contains(t, q.Params, "%neural network%")
}

func TestBuild_CitationPriority(t *testing.T) {
	q := testBuilder().Build(types.ParsedIntent{
		Topic:            "robotics",
		CitationPriority: true,
		ResultCount:      5,
	})

	assert.Contains(t, q.SelectText, "ORDER BY pub_date DESC")
	assert.True(t, q.SortByCitations)
}

func TestBuild_SpecificTitleWinsOverTopic(t *testing.T) {
	q := testBuilder().Build(types.ParsedIntent{
		Topic:         "attention",
		SpecificTitle: "attention is all you need",
		ResultCount:   1,
	})

	assert.Equal(t, 1, strings.Count(q.SelectText, "LIKE ?"))
	assert.Equal(t, []any{"%attention is all you need%", 1}, q.Params)
}

func TestBuild_UserTextNeverInPredicate(t *testing.T) {
	hostile := "x'; DROP TABLE papers; --"
	q := testBuilder().Build(types.ParsedIntent{
		Topic:       hostile,
		ResultCount: 5,
	})

	assert.NotContains(t, q.SelectText, "DROP")
	assert.NotContains(t, q.SelectText, hostile)
	assert.Equal(t, "%x'; drop table papers; --%", q.Params[0])
	assert.NoError(t, Validate(q.SelectText))
}

func TestBuild_EmptyIntentStillValid(t *testing.T) {
	q := testBuilder().Build(types.ParsedIntent{ResultCount: 5})

	assert.Equal(t, "SELECT id, title, author, pub_date, venue, type FROM papers LIMIT ?", q.SelectText)
	assert.Equal(t, []any{5}, q.Params)
}

func TestMinimal(t *testing.T) {
	q := Minimal(7)
	assert.Equal(t, "SELECT id, title, author, pub_date, venue, type FROM papers LIMIT ?", q.SelectText)
	assert.Equal(t, []any{7}, q.Params)
	assert.Equal(t, types.PathMinimal, q.Path)

	q = Minimal(0)
	assert.Equal(t, []any{types.DefaultResultCount}, q.Params)
}
