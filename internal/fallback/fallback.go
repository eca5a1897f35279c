// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback runs an ordered list of alternative strategies for one
// task, short-circuiting on the first success. Every try-then-degrade
// chain in the pipeline (citation sources, analysis generators, query
// generation) shares this contract, so each chain is testable with the
// same stubbed-strategy harness.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

// Strategy is one alternative way of producing O from I.
type Strategy[I, O any] struct {
	// Name identifies the strategy in provenance and errors.
	Name string

	// Attempt tries the strategy. A returned error moves the chain on to
	// the next strategy.
	Attempt func(ctx context.Context, in I) (O, error)
}

// Chain is an ordered list of strategies.
type Chain[I, O any] []Strategy[I, O]

// Run tries each strategy in order and returns the first success together
// with the name of the strategy that produced it. When every strategy
// fails, the joined errors are returned and the name is empty. A cancelled
// context stops the chain between attempts.
func (c Chain[I, O]) Run(ctx context.Context, in I) (O, string, error) {
	var (
		zero O
		errs []error
	)
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := s.Attempt(ctx, in)
		if err == nil {
			return out, s.Name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return zero, "", errors.Join(errs...)
}
