// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package limit enforces the result ceiling with a counting pass that runs
// before any record is extracted.
//
// The counting pass asks for at most max+1 records. One extra record is
// enough to tell "exactly max" from "more than max" without paying for the
// whole result set. The extraction pass is a separate fetch capped at max;
// a fetch of N is not guaranteed to return the first N records of a fetch
// of N+1.
package limit

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// Client is the search-client boundary. Query returns a finite, lazy
// sequence of at most maxResults records and may be called any number of
// times.
type Client interface {
	Query(ctx context.Context, expression string, maxResults int) iter.Seq2[types.RawRecord, error]
}

// Counter is implemented by clients that can count matches without
// materializing records. Count returns min(total matches, limit).
type Counter interface {
	Count(ctx context.Context, expression string, limit int) (int, error)
}

// Kind classifies the outcome of the counting pass.
type Kind int

const (
	// Proceed means 1..max records matched and extraction may run.
	Proceed Kind = iota
	// TooMany means more than max records matched.
	TooMany
	// Empty means nothing matched.
	Empty
)

func (k Kind) String() string {
	switch k {
	case Proceed:
		return "proceed"
	case TooMany:
		return "too_many"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decision is the result of Evaluate. TooMany and Empty are normal
// terminal outcomes, not errors.
type Decision struct {
	Kind Kind
	// Count is the number of records seen by the counting pass, at most Max+1.
	Count int
	// Max is the ceiling the decision was made against.
	Max int
}

// Proceeding reports whether extraction should run.
func (d Decision) Proceeding() bool { return d.Kind == Proceed }

// Message returns the human-readable status line for the decision.
func (d Decision) Message() string {
	switch d.Kind {
	case TooMany:
		return fmt.Sprintf("More than %d results found", d.Max)
	case Empty:
		return "No results found"
	default:
		return fmt.Sprintf("%d result(s) obtained.", d.Count)
	}
}

// Report writes the status line to w.
func (d Decision) Report(w io.Writer) {
	fmt.Fprintln(w, d.Message())
}

// Decide classifies a count against max.
func Decide(count, max int) Decision {
	switch {
	case count > max:
		return Decision{Kind: TooMany, Count: count, Max: max}
	case count == 0:
		return Decision{Kind: Empty, Max: max}
	default:
		return Decision{Kind: Proceed, Count: count, Max: max}
	}
}

// Evaluate runs the counting pass for expression against maxResults.
// Errors from the client are returned unchanged.
func Evaluate(ctx context.Context, client Client, expression string, maxResults int) (Decision, error) {
	n, err := count(ctx, client, expression, maxResults+1)
	if err != nil {
		return Decision{}, err
	}
	return Decide(n, maxResults), nil
}

// count prefers the client's ID-only count and otherwise drains the record
// sequence without looking at any record.
func count(ctx context.Context, client Client, expression string, limit int) (int, error) {
	if c, ok := client.(Counter); ok {
		n, err := c.Count(ctx, expression, limit)
		if err != nil {
			return 0, err
		}
		return min(n, limit), nil
	}
	n := 0
	for _, err := range client.Query(ctx, expression, limit) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
