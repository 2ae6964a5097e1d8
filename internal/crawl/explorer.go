package crawl

import (
	"context"

	"go.uber.org/zap"
)

// TruncationThreshold is the hard cap the autocomplete endpoint places on
// suggestions per query. A response of exactly this many entries is the
// only signal that the true result set may be larger; anything shorter
// proves the prefix exhausted.
const TruncationThreshold = 12

// Scope binds the explorer to one search namespace: either the global
// street search or the house-number search under a single street.
type Scope interface {
	// Query issues the autocomplete request for the prefix.
	Query(ctx context.Context, prefix string) ([]string, error)

	// Merge folds query results into the shared state.
	Merge(results []string)

	// NextSymbols returns the candidate symbols that may extend prefix.
	NextSymbols(prefix string) []rune

	// Completed reports whether the prefix was already proven exhausted.
	Completed(prefix string) bool

	// MarkCompleted records the prefix as proven exhausted.
	MarkCompleted(prefix string)
}

// Explorer walks the prefix tree of a scope depth-first using an explicit
// worklist. Each prefix is queried at most once per run; re-running an
// exploration over completed prefixes is a no-op.
type Explorer struct {
	threshold int
}

// NewExplorer creates an Explorer with the standard truncation threshold.
func NewExplorer() *Explorer {
	return &Explorer{threshold: TruncationThreshold}
}

// Explore expands seed until every reachable prefix is proven exhausted.
//
// Per prefix: skip if already completed; query; merge results; if the
// response hit the truncation threshold, push one child per candidate
// symbol; otherwise mark the prefix completed. Results are always merged
// before the completion mark, so an interrupted run never loses a prefix
// whose results it already observed.
//
// A failed query is logged and expands nothing, but the prefix is not
// marked completed either: a later run will retry it instead of trusting
// an answer that was never received.
func (e *Explorer) Explore(ctx context.Context, scope Scope, seed string) error {
	log := zap.L().With(zap.String("component", "crawl.explorer"))

	stack := []string{seed}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		prefix := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if scope.Completed(prefix) {
			continue
		}

		results, err := scope.Query(ctx, prefix)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("query failed, leaving prefix incomplete",
				zap.String("prefix", prefix),
				zap.Error(err),
			)
			continue
		}

		scope.Merge(results)

		if len(results) == e.threshold {
			// Children pushed in reverse so they pop in alphabet order.
			symbols := scope.NextSymbols(prefix)
			for i := len(symbols) - 1; i >= 0; i-- {
				stack = append(stack, prefix+string(symbols[i]))
			}
			continue
		}

		scope.MarkCompleted(prefix)
	}

	return nil
}
