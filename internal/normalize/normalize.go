// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps raw search-client records to canonical export rows
// and collects them into a table keyed by record identifier.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// Missing is rendered for absent journals and author name parts.
const Missing = "NA"

// ErrMissingIdentifier is returned for records whose identifier field is
// empty.
var ErrMissingIdentifier = errors.New("record has no identifier")

// Error reports a record that could not be normalized. Index is the
// zero-based position of the record in the fetched sequence.
type Error struct {
	Index int
	Title string
	Err   error
}

func (e *Error) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("normalizing record %d (%q): %v", e.Index, e.Title, e.Err)
	}
	return fmt.Sprintf("normalizing record %d: %v", e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Policy decides what happens to the run when a record fails to normalize.
type Policy int

const (
	// PolicyFail aborts on the first failing record.
	PolicyFail Policy = iota
	// PolicySkip drops failing records and continues.
	PolicySkip
)

// Record normalizes one raw record. The returned id is the first
// whitespace-separated token of raw.ID and is the table key.
func Record(raw types.RawRecord) (string, types.CanonicalRow, error) {
	fields := strings.Fields(raw.ID)
	if len(fields) == 0 {
		return "", types.CanonicalRow{}, ErrMissingIdentifier
	}
	id := fields[0]

	journal := Missing
	if raw.Journal != nil {
		journal = *raw.Journal
	}

	row := types.CanonicalRow{
		ID:       id,
		Title:    raw.Title,
		Authors:  AuthorString(raw.Authors),
		Journal:  journal,
		PubDate:  raw.PubDate,
		Abstract: raw.Abstract,
	}
	return id, row, nil
}

// AuthorString renders authors as " Last, First;" per author in source
// order. The leading space and final separator are kept as-is; downstream
// consumers of the spreadsheet split on them.
func AuthorString(authors []types.RawAuthor) string {
	var b strings.Builder
	for _, a := range authors {
		b.WriteString(" ")
		b.WriteString(orMissing(a.LastName))
		b.WriteString(", ")
		b.WriteString(orMissing(a.FirstName))
		b.WriteString(";")
	}
	return b.String()
}

func orMissing(s *string) string {
	if s == nil {
		return Missing
	}
	return *s
}
