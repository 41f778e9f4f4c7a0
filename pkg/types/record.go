// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawAuthor is one author entry as delivered by the search client. Either
// name part may be missing.
type RawAuthor struct {
	LastName  *string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	FirstName *string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
}

// RawRecord is a bibliographic record as produced by the search client,
// before normalization.
type RawRecord struct {
	// ID holds the record identifier. It may contain whitespace-separated
	// aliases; only the first token is canonical.
	ID string `json:"id" yaml:"id"`

	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`

	// PubDate is the publication date as rendered by the client
	// (e.g. "2019-05-01").
	PubDate string `json:"pub_date" yaml:"pub_date"`

	// Journal is nil for records that carry no journal (e.g. book chapters).
	Journal *string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Authors lists the authors in source order.
	Authors []RawAuthor `json:"authors" yaml:"authors"`
}

// CanonicalRow is the normalized, export-ready form of one record.
type CanonicalRow struct {
	ID       string `json:"pmid" yaml:"pmid"`
	Title    string `json:"title" yaml:"title"`
	Authors  string `json:"authors" yaml:"authors"`
	Journal  string `json:"journal" yaml:"journal"`
	PubDate  string `json:"pub_date" yaml:"pub_date"`
	Abstract string `json:"abstract" yaml:"abstract"`
}

// Columns is the fixed export column order.
var Columns = []string{"PMID", "Title", "Authors", "Journal", "PubDate", "Abstract"}

// Values returns the row's fields in Columns order.
func (r CanonicalRow) Values() []string {
	return []string{r.ID, r.Title, r.Authors, r.Journal, r.PubDate, r.Abstract}
}

// StringPtr returns a pointer to s. Handy for building RawRecords.
func StringPtr(s string) *string {
	return &s
}
