// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// efetch PubmedArticleSet XML structures. Only the fields the pipeline
// exports are decoded.
type articleSet struct {
	Articles     []pubmedArticle     `xml:"PubmedArticle"`
	BookArticles []pubmedBookArticle `xml:"PubmedBookArticle"`
}

type pubmedArticle struct {
	Citation   medlineCitation `xml:"MedlineCitation"`
	PubmedData pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	Journal      *journal     `xml:"Journal"`
	ArticleTitle markupText   `xml:"ArticleTitle"`
	Abstract     abstract     `xml:"Abstract"`
	AuthorList   []authorNode `xml:"AuthorList>Author"`
}

type journal struct {
	Title   *string `xml:"Title"`
	PubDate pubDate `xml:"JournalIssue>PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type abstract struct {
	Texts []markupText `xml:"AbstractText"`
}

type authorNode struct {
	LastName       *string `xml:"LastName"`
	ForeName       *string `xml:"ForeName"`
	CollectiveName *string `xml:"CollectiveName"`
}

type pubmedData struct {
	ArticleIDs   []articleID `xml:"ArticleIdList>ArticleId"`
	ReferenceIDs []articleID `xml:"ReferenceList>Reference>ArticleIdList>ArticleId"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

type pubmedBookArticle struct {
	Document bookDocument `xml:"BookDocument"`
	BookData pubmedData   `xml:"PubmedBookData"`
}

type bookDocument struct {
	PMID         string       `xml:"PMID"`
	ArticleTitle markupText   `xml:"ArticleTitle"`
	BookTitle    markupText   `xml:"Book>BookTitle"`
	PubDate      pubDate      `xml:"Book>PubDate"`
	Abstract     abstract     `xml:"Abstract"`
	AuthorList   []authorNode `xml:"AuthorList>Author"`
}

// markupText collects the character data of an element including text
// inside inline markup such as <i> and <sup>.
type markupText string

func (m *markupText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(t)
		}
	}
	*m = markupText(strings.TrimSpace(b.String()))
	return nil
}

// records converts the set to raw records, journal articles first.
func (s articleSet) records() []types.RawRecord {
	out := make([]types.RawRecord, 0, len(s.Articles)+len(s.BookArticles))
	for _, a := range s.Articles {
		out = append(out, a.record())
	}
	for _, b := range s.BookArticles {
		out = append(out, b.record())
	}
	return out
}

func (a pubmedArticle) record() types.RawRecord {
	art := a.Citation.Article
	r := types.RawRecord{
		ID:       recordID(a.PubmedData, a.Citation.PMID),
		Title:    string(art.ArticleTitle),
		Abstract: art.Abstract.text(),
		Authors:  convertAuthors(art.AuthorList),
	}
	if art.Journal != nil {
		r.PubDate = art.Journal.PubDate.String()
		if art.Journal.Title != nil {
			title := strings.TrimSpace(*art.Journal.Title)
			r.Journal = &title
		}
	}
	return r
}

// record maps a book chapter. Books carry no journal, so Journal stays nil.
func (b pubmedBookArticle) record() types.RawRecord {
	doc := b.Document
	title := string(doc.ArticleTitle)
	if title == "" {
		title = string(doc.BookTitle)
	}
	return types.RawRecord{
		ID:       recordID(b.BookData, doc.PMID),
		Title:    title,
		Abstract: doc.Abstract.text(),
		PubDate:  doc.PubDate.String(),
		Authors:  convertAuthors(doc.AuthorList),
	}
}

// recordID joins every pubmed-type id attached to the record, its own first
// and then those of its references, separated by newlines. The citation
// PMID is used when the id list carries none.
func recordID(data pubmedData, pmid string) string {
	var ids []string
	for _, list := range [][]articleID{data.ArticleIDs, data.ReferenceIDs} {
		for _, id := range list {
			if id.IDType == "pubmed" && strings.TrimSpace(id.Value) != "" {
				ids = append(ids, strings.TrimSpace(id.Value))
			}
		}
	}
	if len(ids) == 0 {
		return strings.TrimSpace(pmid)
	}
	return strings.Join(ids, "\n")
}

func convertAuthors(nodes []authorNode) []types.RawAuthor {
	authors := make([]types.RawAuthor, 0, len(nodes))
	for _, n := range nodes {
		a := types.RawAuthor{LastName: n.LastName, FirstName: n.ForeName}
		if a.LastName == nil && n.CollectiveName != nil {
			a.LastName = n.CollectiveName
		}
		authors = append(authors, a)
	}
	return authors
}

func (a abstract) text() string {
	parts := make([]string, 0, len(a.Texts))
	for _, t := range a.Texts {
		if t != "" {
			parts = append(parts, string(t))
		}
	}
	return strings.Join(parts, "\n")
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// String renders the date as YYYY-MM-DD, YYYY-MM, or YYYY depending on the
// parts present. Dates given only as MedlineDate ("2019 Spring") are
// returned verbatim.
func (p pubDate) String() string {
	year := strings.TrimSpace(p.Year)
	if year == "" {
		return strings.TrimSpace(p.MedlineDate)
	}
	month := parseMonth(p.Month)
	if month == 0 {
		return year
	}
	day, err := strconv.Atoi(strings.TrimSpace(p.Day))
	if err != nil || day < 1 || day > 31 {
		return fmt.Sprintf("%s-%02d", year, month)
	}
	return fmt.Sprintf("%s-%02d-%02d", year, month, day)
}

func parseMonth(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	if len(s) < 3 {
		return 0
	}
	return monthNumbers[strings.ToLower(s[:3])]
}
