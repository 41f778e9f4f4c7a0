// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one query end to end: build the expression, count
// against the ceiling, and on proceed re-fetch and normalize the records.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-query/internal/limit"
	"github.com/pdiddy/pubmed-query/internal/logging"
	"github.com/pdiddy/pubmed-query/internal/normalize"
	"github.com/pdiddy/pubmed-query/internal/query"
	"github.com/pdiddy/pubmed-query/pkg/types"
)

// Options tunes a run. The zero value is usable.
type Options struct {
	// Now anchors relative date bounds. Zero means time.Now().
	Now time.Time

	// Policy handles records that fail normalization.
	Policy normalize.Policy

	Log *logrus.Entry
}

// Result is the outcome of a run. Table is nil unless the decision is
// Proceed.
type Result struct {
	Expression query.Expression
	Decision   limit.Decision
	Table      *normalize.Table
}

// Rows returns the result rows in table order, or nil when nothing was
// extracted.
func (r Result) Rows() []types.CanonicalRow {
	if r.Table == nil {
		return nil
	}
	return r.Table.Rows()
}

// Run executes the query described by c against client and writes the
// status line to w. TooMany and Empty end the run without error and without
// extraction. Client and normalization errors are returned unchanged.
func Run(ctx context.Context, client limit.Client, c types.Constraints, opts Options, w io.Writer) (Result, error) {
	if err := query.Validate(c); err != nil {
		return Result{}, err
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	res := Result{Expression: query.Build(c, now)}
	log.WithField("expression", res.Expression.String()).Debug("query built")

	decision, err := limit.Evaluate(ctx, client, res.Expression.String(), c.MaxResults)
	if err != nil {
		return res, err
	}
	res.Decision = decision
	decision.Report(w)
	log.WithFields(logrus.Fields{"decision": decision.Kind.String(), "count": decision.Count}).Debug("counting pass done")

	if !decision.Proceeding() {
		return res, nil
	}

	tbl, err := Extract(ctx, client, res.Expression, c.MaxResults, opts.Policy)
	if err != nil {
		return res, err
	}
	res.Table = tbl

	if tbl.Skipped > 0 {
		fmt.Fprintf(w, "warning: skipped %d record(s) without an identifier\n", tbl.Skipped)
	}
	if tbl.Replaced > 0 {
		log.WithField("replaced", tbl.Replaced).Debug("duplicate identifiers collapsed")
	}
	return res, nil
}

// Extract is the second, bounded fetch: it re-runs expr capped at exactly
// maxResults and normalizes every record into a table.
func Extract(ctx context.Context, client limit.Client, expr query.Expression, maxResults int, policy normalize.Policy) (*normalize.Table, error) {
	return normalize.Collect(client.Query(ctx, expr.String(), maxResults), policy)
}
