package crosstab

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Tyorden/svustats/internal/definition"
	"github.com/Tyorden/svustats/internal/model"
)

// Options controls how keys are emitted.
type Options struct {
	// Formatted replaces raw codes with definition labels.
	Formatted bool

	// MergeOnLabel sums codes whose labels are identical into one key.
	// Without it such codes stay separate and get a " (code)" suffix.
	// Only meaningful together with Formatted.
	MergeOnLabel bool
}

// matrix holds raw counts: x code -> y code -> count.
type matrix map[string]map[string]int

func (m matrix) add(x, y string, n int) {
	row, ok := m[x]
	if !ok {
		row = make(map[string]int)
		m[x] = row
	}
	row[y] += n
}

func (m matrix) merge(other matrix) {
	for x, row := range other {
		for y, n := range row {
			m.add(x, y, n)
		}
	}
}

func count[R model.Record](records []R, x, y model.Field) matrix {
	m := make(matrix)
	for _, r := range records {
		m.add(r.Value(x), r.Value(y), 1)
	}
	return m
}

func checkFields(x, y model.Field) error {
	if !x.Valid() {
		return fmt.Errorf("x axis: %w: %d", model.ErrUnknownField, uint8(x))
	}
	if !y.Valid() {
		return fmt.Errorf("y axis: %w: %d", model.ErrUnknownField, uint8(y))
	}
	return nil
}

// CrossTabulate counts records by the pair (x value, y value).
//
// Rows are ordered by X key, lexicographically, except for the season field
// whose rows are ordered by season number. Columns are the Y keys observed
// anywhere in records, lexicographically ordered, and every row carries
// every column. The result does not depend on the order of records.
func CrossTabulate[R model.Record](records []R, x, y model.Field, opt Options) (*Table, error) {
	if err := checkFields(x, y); err != nil {
		return nil, err
	}
	return build(count(records, x, y), x, y, opt), nil
}

// build turns a raw count matrix into a dense, ordered table.
func build(m matrix, x, y model.Field, opt Options) *Table {
	xCodes := make([]string, 0, len(m))
	yCodeSet := map[string]struct{}{}
	for xc, row := range m {
		xCodes = append(xCodes, xc)
		for yc := range row {
			yCodeSet[yc] = struct{}{}
		}
	}
	yCodes := make([]string, 0, len(yCodeSet))
	for yc := range yCodeSet {
		yCodes = append(yCodes, yc)
	}

	xKeys := keyMap(x, xCodes, opt)
	yKeys := keyMap(y, yCodes, opt)

	emitted := make(matrix, len(m))
	for xc, row := range m {
		for yc, n := range row {
			emitted.add(xKeys[xc], yKeys[yc], n)
		}
	}

	columns := make([]string, 0, len(yKeys))
	seen := map[string]bool{}
	for _, k := range yKeys {
		if !seen[k] {
			seen[k] = true
			columns = append(columns, k)
		}
	}
	sort.Strings(columns)

	// Season rows sort by the number of their first raw code.
	order := make(map[string]string, len(xKeys))
	for code, key := range xKeys {
		if prev, ok := order[key]; !ok || code < prev {
			order[key] = code
		}
	}

	rows := make([]Row, 0, len(emitted))
	for key, counts := range emitted {
		dense := make(map[string]int, len(columns))
		for _, c := range columns {
			dense[c] = counts[c]
		}
		rows = append(rows, Row{XValue: key, Counts: dense})
	}
	sort.Slice(rows, func(i, j int) bool {
		if x.IsSeason() {
			return seasonLess(order[rows[i].XValue], rows[i].XValue, order[rows[j].XValue], rows[j].XValue)
		}
		return rows[i].XValue < rows[j].XValue
	})

	return &Table{
		XField:    x,
		YField:    y,
		Formatted: opt.Formatted,
		Columns:   columns,
		Rows:      rows,
	}
}

// seasonLess orders numeric season codes numerically and puts
// non-numeric codes such as "unknown" last.
func seasonLess(codeA, keyA, codeB, keyB string) bool {
	a, errA := strconv.Atoi(codeA)
	b, errB := strconv.Atoi(codeB)
	switch {
	case errA == nil && errB == nil && a != b:
		return a < b
	case errA == nil && errB != nil:
		return true
	case errA != nil && errB == nil:
		return false
	default:
		return keyA < keyB
	}
}

// keyMap returns the emitted key for each raw code of field f.
func keyMap(f model.Field, codes []string, opt Options) map[string]string {
	keys := make(map[string]string, len(codes))
	if !opt.Formatted {
		for _, c := range codes {
			keys[c] = c
		}
		return keys
	}

	byLabel := make(map[string][]string, len(codes))
	for _, c := range codes {
		label := definition.Format(f, c)
		byLabel[label] = append(byLabel[label], c)
	}
	for label, group := range byLabel {
		if len(group) == 1 || opt.MergeOnLabel {
			for _, c := range group {
				keys[c] = label
			}
			continue
		}
		for _, c := range group {
			keys[c] = label + " (" + c + ")"
		}
	}
	return keys
}
