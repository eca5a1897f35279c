// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"strings"
)

// rewritePrompt asks for a cleaned-up version of an ambiguous research
// question ahead of rule extraction.
const rewritePrompt = `Rewrite the following research paper search request so that the topic, any
publication-year constraints, and any citation-impact preference are stated
plainly. Expand abbreviations and fix typos. Keep it to one sentence and do
not add constraints the request does not contain. Return only the rewritten
request, nothing else.

Request: %REQUEST%`

// maxRewriteGrowth bounds how much longer a rewrite may be than its input
// before it is treated as malformed (the model started explaining itself).
const maxRewriteGrowth = 4

// Rewriter normalizes ambiguous phrasing before extraction. It is a pure
// pass-through on any failure: no error ever escapes this stage.
type Rewriter struct {
	client    Client
	maxTokens int
}

// NewRewriter returns a Rewriter over client.
func NewRewriter(client Client, maxTokens int) *Rewriter {
	return &Rewriter{client: client, maxTokens: maxTokens}
}

// Rewrite returns a clarified version of text, or text itself unchanged on
// timeout, error, or malformed output.
func (r *Rewriter) Rewrite(ctx context.Context, text string) string {
	if r.client == nil || strings.TrimSpace(text) == "" {
		return text
	}

	out, err := r.client.Complete(ctx, strings.Replace(rewritePrompt, "%REQUEST%", text, 1), r.maxTokens)
	if err != nil {
		return text
	}

	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, "\n") || len(out) > maxRewriteGrowth*len(text)+80 {
		return text
	}
	return out
}
