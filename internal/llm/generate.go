// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-finder/internal/sqlbuild"
	"github.com/pdiddy/research-finder/pkg/types"
)

// generatePrompt constrains the model to the papers schema. The output is
// still treated as untrusted data: it must pass the sqlbuild whitelist
// before it becomes a StructuredQuery.
const generatePrompt = `Convert this research paper request into a single SQL SELECT statement.

The database has one table, papers, with columns: id, title, author,
pub_date (ISO date string), venue, type. Use LOWER(title) LIKE for topic
matching. Do not reference any other table or column. Return only the SQL
statement, with no explanation and no code fences.

Request: %REQUEST%`

// SQLGenerator produces a validated query from raw text. It is invoked
// only when rule extraction yielded an empty intent.
type SQLGenerator struct {
	client    Client
	maxTokens int
}

// NewSQLGenerator returns a SQLGenerator over client.
func NewSQLGenerator(client Client, maxTokens int) *SQLGenerator {
	return &SQLGenerator{client: client, maxTokens: maxTokens}
}

// Generate asks the model for a SELECT over the papers schema and vets it.
// The returned error wraps ErrUnavailable when the service failed and
// sqlbuild.ErrRejected when the output failed validation; in both cases
// the caller degrades to sqlbuild.Minimal rather than executing anything.
func (g *SQLGenerator) Generate(ctx context.Context, originalText string, limit int) (types.StructuredQuery, error) {
	if g.client == nil {
		return types.StructuredQuery{}, fmt.Errorf("no completion client configured: %w", ErrUnavailable)
	}

	out, err := g.client.Complete(ctx, strings.Replace(generatePrompt, "%REQUEST%", originalText, 1), g.maxTokens)
	if err != nil {
		return types.StructuredQuery{}, fmt.Errorf("generating query: %w", err)
	}

	sql := stripFences(out)
	if err := sqlbuild.Validate(sql); err != nil {
		return types.StructuredQuery{}, fmt.Errorf("validating generated query: %w", err)
	}
	return sqlbuild.Generated(sql, limit), nil
}

// stripFences removes Markdown code fences the model sometimes adds
// despite instructions, then flattens the statement to one line.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.Join(strings.Fields(s), " ")
}
