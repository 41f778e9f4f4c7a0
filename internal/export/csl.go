package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-query/internal/normalize"
	"github.com/pdiddy/pubmed-query/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	PMID           string    `yaml:"PMID"`
	URL            string    `yaml:"URL"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts,omitempty"`
	Literal   string  `yaml:"literal,omitempty"`
}

// CSLWriter writes the rows as a CSL-YAML list.
type CSLWriter struct{}

func (CSLWriter) Write(path string, rows []types.CanonicalRow) error {
	items := make([]CSLItem, len(rows))
	for i, r := range rows {
		items[i] = toCSLItem(r)
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling CSL: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// toCSLItem converts a CanonicalRow to a CSLItem. Rows without a journal
// come from PubMed book records and are typed as chapters.
func toCSLItem(r types.CanonicalRow) CSLItem {
	item := CSLItem{
		ID:       "pmid:" + r.ID,
		Type:     "chapter",
		Title:    r.Title,
		Abstract: r.Abstract,
		Author:   parseAuthorString(r.Authors),
		Issued:   parseIssued(r.PubDate),
		PMID:     r.ID,
		URL:      "https://pubmed.ncbi.nlm.nih.gov/" + r.ID + "/",
	}
	if r.Journal != normalize.Missing {
		item.Type = "article-journal"
		item.ContainerTitle = r.Journal
	}
	return item
}

// parseAuthorString splits the " Last, First;" author column back into CSL
// names. "NA" parts are dropped; an author with only a family name and no
// comma becomes a literal.
func parseAuthorString(s string) []CSLName {
	var names []CSLName
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		family, given, ok := strings.Cut(part, ", ")
		if !ok {
			names = append(names, CSLName{Literal: part})
			continue
		}
		n := CSLName{}
		if family != normalize.Missing {
			n.Family = family
		}
		if given != normalize.Missing {
			n.Given = given
		}
		if n != (CSLName{}) {
			names = append(names, n)
		}
	}
	return names
}

// parseIssued reads a YYYY[-MM[-DD]] date. Anything else is kept as a
// literal.
func parseIssued(date string) *CSLDate {
	if date == "" {
		return nil
	}
	var parts []int
	for _, p := range strings.SplitN(date, "-", 3) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return &CSLDate{Literal: date}
		}
		parts = append(parts, n)
	}
	return &CSLDate{DateParts: [][]int{parts}}
}
