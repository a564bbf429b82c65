package crosstab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Tyorden/svustats/internal/model"
)

// XValueKey is the JSON key holding a row's X value. Datasets that pass
// model.Dataset.Validate never produce a column of that name.
const XValueKey = model.RowKey

// Row is one bar group of a cross-tab: the X value and a count for every
// column of the table.
type Row struct {
	XValue string
	Counts map[string]int
}

// Total returns the number of records in the row.
func (r Row) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Count returns the count of column y, zero when absent.
func (r Row) Count(y string) int {
	return r.Counts[y]
}

// MarshalJSON encodes the row as a flat object: "xValue" first, then the
// columns in lexicographic order.
func (r Row) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		if k == XValueKey {
			return nil, fmt.Errorf("column %q clashes with the row key", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	x, err := json.Marshal(r.XValue)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + XValueKey + `":`)
	buf.Write(x)
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", r.Counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the flat row object written by MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	xv, ok := raw[XValueKey]
	if !ok {
		return fmt.Errorf("row without %q", XValueKey)
	}
	if err := json.Unmarshal(xv, &r.XValue); err != nil {
		return fmt.Errorf("decode %s: %w", XValueKey, err)
	}
	delete(raw, XValueKey)

	r.Counts = make(map[string]int, len(raw))
	for k, v := range raw {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("decode column %q: %w", k, err)
		}
		r.Counts[k] = n
	}
	return nil
}

// Table is the result of a cross-tabulation.
type Table struct {
	XField    model.Field `json:"xField"`
	YField    model.Field `json:"yField"`
	Formatted bool        `json:"formatted"`
	Columns   []string    `json:"columns"`
	Rows      []Row       `json:"rows"`
}

// Total returns the number of records counted in the table.
func (t *Table) Total() int {
	total := 0
	for _, r := range t.Rows {
		total += r.Total()
	}
	return total
}

// ColumnTotals returns the sum of each column, keyed by column.
func (t *Table) ColumnTotals() map[string]int {
	totals := make(map[string]int, len(t.Columns))
	for _, c := range t.Columns {
		totals[c] = 0
	}
	for _, r := range t.Rows {
		for c, n := range r.Counts {
			totals[c] += n
		}
	}
	return totals
}

// Columns returns the sorted distinct Y keys present in the rows of t.
// It does not trust t.Columns, so it also serves decoded tables.
func Columns(t *Table) []string {
	if t == nil {
		return nil
	}
	seen := map[string]struct{}{}
	for _, r := range t.Rows {
		for k := range r.Counts {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
