// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-query pipeline:
// the researcher's search constraints, raw records as delivered by the search
// client, and the canonical rows written to the spreadsheet.
package types

const (
	// DefaultSinceYear is the publication-date lower bound used when neither
	// SinceYear nor SinceLastYears is given.
	DefaultSinceYear = 1980

	// DefaultMaxResults is the result ceiling used when none is given.
	DefaultMaxResults = 50

	// MaxResultsLimit is the largest ceiling a run accepts. esearch returns
	// at most this many ids for one query.
	MaxResultsLimit = 10000
)

// Constraints holds the structured search constraints for one run. Zero
// values mean "absent" for every field except SinceYear and MaxResults,
// which carry defaults (see DefaultConstraints).
type Constraints struct {
	// FirstAuthor matches the first author only. A '#' separates last name
	// from first name or initials (e.g. "Smith#J").
	FirstAuthor string `json:"first_author,omitempty" yaml:"first_author,omitempty"`

	// Authors lists author constraints. Each whitespace-separated token is
	// one author; '#' inside a token stands for a space.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// TitleWords must each appear in the title.
	TitleWords []string `json:"title_words,omitempty" yaml:"title_words,omitempty"`

	// FreeTerms are unlabeled search terms, split on whitespace.
	FreeTerms []string `json:"free_terms,omitempty" yaml:"free_terms,omitempty"`

	// RawQuery is appended verbatim and may carry its own field labels.
	RawQuery string `json:"raw_query,omitempty" yaml:"raw_query,omitempty"`

	// SinceYear is the earliest creation year included.
	SinceYear int `json:"since_year" yaml:"since_year"`

	// SinceLastYears, when positive, restricts results to the last N years
	// counted back from today and takes precedence over SinceYear.
	SinceLastYears int `json:"since_last_years,omitempty" yaml:"since_last_years,omitempty"`

	// MaxResults is the result ceiling. Runs matching more records abort.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DefaultConstraints returns an empty constraint set with the default year
// bound and ceiling.
func DefaultConstraints() Constraints {
	return Constraints{
		SinceYear:  DefaultSinceYear,
		MaxResults: DefaultMaxResults,
	}
}
