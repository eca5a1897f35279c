// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sqlbuild

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/research-finder/pkg/types"
)

// ErrRejected marks generated SQL that failed whitelist validation. The
// caller degrades to Minimal instead of executing the rejected text.
var ErrRejected = errors.New("generated query rejected")

// forbiddenKeywords are statement types and escape hatches never allowed
// in generated text, regardless of position.
var forbiddenKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "drop": true,
	"alter": true, "create": true, "replace": true, "attach": true,
	"detach": true, "pragma": true, "vacuum": true, "reindex": true,
	"exec": true, "execute": true,
}

// allowedWords is the full vocabulary a generated SELECT may use: the
// papers schema plus read-only SQL keywords. Anything else is rejected by
// name, which keeps the failure mode debuggable.
var allowedWords = map[string]bool{
	// schema
	"papers": true, "id": true, "title": true, "author": true,
	"pub_date": true, "venue": true, "type": true,
	// statement structure
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "like": true, "in": true, "is": true, "null": true,
	"between": true, "as": true, "distinct": true, "limit": true,
	"offset": true, "order": true, "by": true, "asc": true, "desc": true,
	// scalar helpers
	"lower": true, "upper": true, "length": true, "count": true,
	"escape": true,
}

var wordRe = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)

// Validate applies the whitelist a generated query must pass before it is
// treated as a StructuredQuery: a single SELECT statement, no DDL/DML or
// comment tokens, and only known schema words. Generated output is data
// to be checked, never code to be run; any failure returns ErrRejected.
func Validate(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty statement: %w", ErrRejected)
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Errorf("statement does not begin with SELECT: %w", ErrRejected)
	}
	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("statement separator present: %w", ErrRejected)
	}
	if strings.Contains(trimmed, "--") || strings.Contains(trimmed, "/*") {
		return fmt.Errorf("comment token present: %w", ErrRejected)
	}

	for _, word := range wordRe.FindAllString(stripLiterals(trimmed), -1) {
		w := strings.ToLower(word)
		if forbiddenKeywords[w] {
			return fmt.Errorf("forbidden keyword %q: %w", w, ErrRejected)
		}
		if !allowedWords[w] {
			return fmt.Errorf("unknown identifier %q: %w", w, ErrRejected)
		}
	}
	return nil
}

// Generated wraps validated LLM output as a StructuredQuery, appending a
// LIMIT when the model omitted one. Callers must Validate first.
func Generated(sql string, limit int) types.StructuredQuery {
	trimmed := strings.TrimSpace(sql)
	if limit <= 0 {
		limit = types.DefaultResultCount
	}
	if !regexp.MustCompile(`(?i)\blimit\s+\d+`).MatchString(trimmed) {
		trimmed = fmt.Sprintf("%s LIMIT %d", trimmed, limit)
	}
	return types.StructuredQuery{
		SelectText: trimmed,
		Limit:      limit,
		Path:       types.PathGenerative,
	}
}

// stripLiterals blanks out single- and double-quoted literals so their
// contents are not mistaken for identifiers.
func stripLiterals(s string) string {
	var b strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteRune(' ')
		case r == '\'' || r == '"':
			quote = r
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
