// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"iter"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// Table holds canonical rows keyed by identifier, in first-insertion order.
// Putting an existing id replaces that row's fields but keeps its position.
type Table struct {
	index map[string]int // id → position in rows
	rows  []types.CanonicalRow

	// Replaced counts Put calls that overwrote an existing id.
	Replaced int
	// Skipped counts records dropped under PolicySkip.
	Skipped int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Put stores row under id. The later row wins on collision.
func (t *Table) Put(id string, row types.CanonicalRow) {
	if i, ok := t.index[id]; ok {
		t.rows[i] = row
		t.Replaced++
		return
	}
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, row)
}

// Get returns the row stored under id.
func (t *Table) Get(id string) (types.CanonicalRow, bool) {
	i, ok := t.index[id]
	if !ok {
		return types.CanonicalRow{}, false
	}
	return t.rows[i], true
}

// Len returns the number of distinct ids.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of the rows in table order.
func (t *Table) Rows() []types.CanonicalRow {
	out := make([]types.CanonicalRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Collect normalizes every record of seq into a new table. A sequence error
// is returned unchanged. Normalization failures abort under PolicyFail and
// are counted in Table.Skipped under PolicySkip.
func Collect(seq iter.Seq2[types.RawRecord, error], policy Policy) (*Table, error) {
	t := NewTable()
	i := 0
	for raw, err := range seq {
		if err != nil {
			return nil, err
		}
		id, row, err := Record(raw)
		if err != nil {
			if policy == PolicySkip {
				t.Skipped++
				i++
				continue
			}
			return nil, &Error{Index: i, Title: raw.Title, Err: err}
		}
		t.Put(id, row)
		i++
	}
	return t, nil
}
