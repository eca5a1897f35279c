// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-finder/internal/sqlbuild"
	"github.com/pdiddy/research-finder/pkg/types"
)

func init() {
	backoffBase = 1 * time.Millisecond
}

const schema = `
CREATE TABLE papers (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	author   TEXT,
	pub_date TEXT,
	venue    TEXT,
	type     TEXT
);`

func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return New(db, types.StoreConfig{QueryTimeout: 5 * time.Second, MaxRetries: 3})
}

func seedPapers(t *testing.T, s *Store) {
	t.Helper()
	rows := [][]any{
		{"doi:10.1/aaa", "Deep Learning for Vision", "Ada Lovelace", "2021-05-01", "NeurIPS", "conference paper"},
		{"doi:10.1/bbb", "Quantum Error Correction", "Grace Hopper", "2019-11-20", "Nature", "journal article"},
		{"doi:10.1/ccc", "A Survey of Deep Learning", "Alan Turing", "2023-02-14", "ACM Surveys", "journal article"},
		{"meta:br/0601", "Untitled Notes", nil, nil, nil, nil},
	}
	for _, r := range rows {
		_, err := s.db.Exec(
			"INSERT INTO papers (id, title, author, pub_date, venue, type) VALUES (?, ?, ?, ?, ?, ?)", r...)
		require.NoError(t, err)
	}
}

func TestExecute_FilteredQuery(t *testing.T) {
	s := testStore(t)
	seedPapers(t, s)

	q := types.StructuredQuery{
		SelectText: "SELECT " + sqlbuild.SelectColumns + " FROM papers WHERE LOWER(title) LIKE ? AND pub_date >= ? LIMIT ?",
		Params:     []any{"%deep learning%", "2020-01-01", 10},
	}
	papers, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "Deep Learning for Vision", papers[0].Title)
	assert.Equal(t, "Ada Lovelace", papers[0].Author)
	assert.Equal(t, 2021, papers[0].PubDate.Year())
	assert.Equal(t, "NeurIPS", papers[0].Venue)
}

func TestExecute_EmptyResultIsNotAnError(t *testing.T) {
	s := testStore(t)
	seedPapers(t, s)

	q := types.StructuredQuery{
		SelectText: "SELECT " + sqlbuild.SelectColumns + " FROM papers WHERE LOWER(title) LIKE ? LIMIT ?",
		Params:     []any{"%basket weaving%", 5},
	}
	papers, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestExecute_NullColumnsScanClean(t *testing.T) {
	s := testStore(t)
	seedPapers(t, s)

	q := types.StructuredQuery{
		SelectText: "SELECT " + sqlbuild.SelectColumns + " FROM papers WHERE id = ? LIMIT ?",
		Params:     []any{"meta:br/0601", 1},
	}
	papers, err := s.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	assert.Empty(t, papers[0].Author)
	assert.True(t, papers[0].PubDate.IsZero())
	assert.Empty(t, papers[0].Venue)
}

func TestExecute_FatalErrorNotRetried(t *testing.T) {
	s := testStore(t)
	seedPapers(t, s)

	start := time.Now()
	_, err := s.Execute(context.Background(), types.StructuredQuery{
		SelectText: "SELECT id FROM nonexistent LIMIT ?",
		Params:     []any{1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFatal)
	// A retried query would have slept through the backoff schedule.
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("database is locked"), true},
		{errors.New("database table is locked: papers"), true},
		{errors.New("disk I/O error"), true},
		{errors.New("near \"FROM\": syntax error"), false},
		{errors.New("no such table: papersx"), false},
		{context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isTransient(tt.err), "err: %v", tt.err)
	}
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, 2021, parseDate("2021-05-01").Year())
	assert.Equal(t, time.May, parseDate("2021-05").Month())
	assert.Equal(t, 1999, parseDate("1999").Year())
	assert.True(t, parseDate("not a date").IsZero())
}
