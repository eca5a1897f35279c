// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/research-finder/pkg/types"
)

// ErrTransient marks a store error that was retried and still failed.
// Exhausted-retry transient errors are fatal to the query.
var ErrTransient = errors.New("transient store error")

// ErrFatal marks a schema or syntax error. These are never retried:
// re-running a malformed query cannot succeed.
var ErrFatal = errors.New("fatal store error")

// backoffBase controls the base duration for retry backoff. Tests
// override this to avoid real sleeps.
var backoffBase = 100 * time.Millisecond

// transientMarkers identify driver errors worth retrying.
var transientMarkers = []string{
	"database is locked",
	"database table is locked",
	"busy",
	"i/o error",
	"connection reset",
	"disk i/o",
}

// Execute runs a validated query and returns its rows as PaperRecords.
// Transient errors are retried with bounded exponential backoff; fatal
// errors surface immediately. An empty result set is a valid outcome, not
// an error.
func (s *Store) Execute(ctx context.Context, q types.StructuredQuery) ([]types.PaperRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%v: %w", ctx.Err(), ErrTransient)
			case <-time.After(backoff):
			}
		}

		papers, err := s.query(ctx, q)
		if err == nil {
			return papers, nil
		}
		if !isTransient(err) {
			return nil, fmt.Errorf("executing query: %v: %w", err, ErrFatal)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %v: %w", s.maxRetries, lastErr, ErrTransient)
}

// query runs one attempt. Rows are scanned defensively: the store carries
// nullable columns and more than one pub_date format.
func (s *Store) query(ctx context.Context, q types.StructuredQuery) ([]types.PaperRecord, error) {
	rows, err := s.db.QueryContext(ctx, q.SelectText, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []types.PaperRecord
	for rows.Next() {
		var (
			p       types.PaperRecord
			author  sql.NullString
			pubDate sql.NullString
			venue   sql.NullString
			ptype   sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &author, &pubDate, &venue, &ptype); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		p.Author = author.String
		p.Venue = venue.String
		p.Type = ptype.String
		if pubDate.Valid {
			p.PubDate = parseDate(pubDate.String)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// isTransient reports whether a driver error is worth retrying. Context
// expiry and anything resembling a syntax or schema problem is not.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// dateFormats are the pub_date layouts present in the store, most common
// first.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01",
	"2006",
}

// parseDate parses a stored date string, returning the zero time when no
// layout matches.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
