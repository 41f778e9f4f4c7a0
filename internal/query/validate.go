// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// ConstraintError reports a constraint value that cannot be turned into a
// search expression.
type ConstraintError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("invalid constraint %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks c for structurally impossible values. Any combination of
// present constraints is accepted; only out-of-range numbers are rejected.
func Validate(c types.Constraints) error {
	if c.MaxResults <= 0 {
		return &ConstraintError{Field: "max_results", Value: c.MaxResults, Reason: "must be positive"}
	}
	if c.MaxResults > types.MaxResultsLimit {
		return &ConstraintError{Field: "max_results", Value: c.MaxResults, Reason: fmt.Sprintf("must not exceed %d", types.MaxResultsLimit)}
	}
	if c.SinceLastYears < 0 {
		return &ConstraintError{Field: "since_last_years", Value: c.SinceLastYears, Reason: "must not be negative"}
	}
	if c.SinceLastYears == 0 && (c.SinceYear < 1 || c.SinceYear > 9999) {
		return &ConstraintError{Field: "since_year", Value: c.SinceYear, Reason: "must be a four-digit year"}
	}
	return nil
}
