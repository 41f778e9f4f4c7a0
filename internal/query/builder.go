// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns structured search constraints into a single PubMed
// search expression.
//
// Each present constraint contributes one or more clauses. Clauses are joined
// with AND into a left-deep conjunction and the creation-date range clause is
// always the last operand, so an empty constraint set yields the date clause
// alone.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// Field labels in the PubMed query grammar.
const (
	labelFirstAuthor = "[1au]"
	labelAuthor      = "[auth]"
	labelTitle       = "[ti]"

	dateLabel    = "[Date - Create]"
	openUpperEnd = `"3000"`
	dateLayout   = "2006/01/02"
	nameSep      = "#"
	conjunction  = " AND "
)

// Expression is a search expression in the PubMed query grammar.
type Expression string

// String returns the expression text.
func (e Expression) String() string { return string(e) }

// Build assembles the search expression for c. now anchors the
// SinceLastYears bound; Build has no other inputs and no side effects.
func Build(c types.Constraints, now time.Time) Expression {
	clauses := Clauses(c)
	clauses = append(clauses, DateClause(c, now))
	return Expression(strings.Join(clauses, conjunction))
}

// Clauses returns the constraint clauses of c in assembly order, without
// the date clause.
func Clauses(c types.Constraints) []string {
	var clauses []string

	if name := strings.TrimSpace(c.FirstAuthor); name != "" {
		clauses = append(clauses, expandName(name)+" "+labelFirstAuthor)
	}
	for _, entry := range c.Authors {
		for _, tok := range strings.Fields(entry) {
			clauses = append(clauses, expandName(tok)+" "+labelAuthor)
		}
	}
	for _, entry := range c.TitleWords {
		for _, word := range strings.Fields(entry) {
			clauses = append(clauses, word+" "+labelTitle)
		}
	}
	for _, entry := range c.FreeTerms {
		clauses = append(clauses, strings.Fields(entry)...)
	}
	if raw := strings.TrimSpace(c.RawQuery); raw != "" {
		clauses = append(clauses, raw)
	}

	return clauses
}

// DateClause returns the open-ended creation-date range clause for c.
func DateClause(c types.Constraints, now time.Time) string {
	return fmt.Sprintf(`("%s"%s : %s%s)`, LowerBound(c, now), dateLabel, openUpperEnd, dateLabel)
}

// LowerBound returns the creation-date lower bound formatted YYYY/MM/DD.
// SinceLastYears, when positive, takes precedence over SinceYear.
func LowerBound(c types.Constraints, now time.Time) string {
	if c.SinceLastYears > 0 {
		return yearsBefore(now, c.SinceLastYears).Format(dateLayout)
	}
	year := c.SinceYear
	if year == 0 {
		year = types.DefaultSinceYear
	}
	return fmt.Sprintf("%04d/01/01", year)
}

// yearsBefore moves t back n calendar years. A day that does not exist in
// the target month (Feb 29) clamps to the month's last day instead of
// rolling over.
func yearsBefore(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	year -= n
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// expandName turns the Last#First shorthand into "Last First".
func expandName(s string) string {
	return strings.ReplaceAll(s, nameSep, " ")
}
