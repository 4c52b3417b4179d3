package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicatePair is returned by Pivot when the same (key, category) pair
// occurs more than once. Duplicates mean an upstream filter is broken, and
// silently summing or overwriting would hide that, so the pivot refuses.
var ErrDuplicatePair = errors.New("duplicate (key, category) pair")

// Pivot reshapes a long table into a wide one: one output row per distinct
// key tuple, one column per distinct value of the category column, filled
// from the value column. Missing (key, category) combinations become zero.
// Category columns appear in lexicographic order; key tuples keep their
// first-appearance order.
func Pivot(t *Table, keys []string, category, value string) (*Table, error) {
	catCol, err := t.mustCol(category)
	if err != nil {
		return nil, err
	}
	catKind, _ := t.Kind(category)
	if catKind != String {
		return nil, fmt.Errorf("table: pivot: category column %q is %s, want string", category, catKind)
	}
	valCol, err := t.mustCol(value)
	if err != nil {
		return nil, err
	}
	valKind, _ := t.Kind(value)
	if valKind != Int && valKind != Float {
		return nil, fmt.Errorf("table: pivot: value column %q is %s, want numeric", value, valKind)
	}
	keyCols := make([][]any, len(keys))
	keyFields := make([]Field, len(keys))
	for i, k := range keys {
		col, err := t.mustCol(k)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
		keyFields[i] = t.fields[t.index[k]]
	}

	// Distinct categories, sorted for a stable column layout.
	catSet := map[string]struct{}{}
	for r := 0; r < t.nrows; r++ {
		if s, ok := catCol[r].(string); ok {
			catSet[s] = struct{}{}
		}
	}
	cats := make([]string, 0, len(catSet))
	for c := range catSet {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	catIdx := make(map[string]int, len(cats))
	for i, c := range cats {
		catIdx[c] = i
	}

	// Distinct key tuples in first-appearance order.
	type group struct {
		keyVals []any
		cells   []any // one per category; nil = not seen yet
	}
	var groups []*group
	byKey := map[string]*group{}

	for r := 0; r < t.nrows; r++ {
		kv := make([]any, len(keys))
		var kb strings.Builder
		for i, col := range keyCols {
			kv[i] = col[r]
			fmt.Fprintf(&kb, "%v\x00", col[r])
		}
		ks := kb.String()
		g, ok := byKey[ks]
		if !ok {
			g = &group{keyVals: kv, cells: make([]any, len(cats))}
			byKey[ks] = g
			groups = append(groups, g)
		}
		cs, ok := catCol[r].(string)
		if !ok {
			return nil, fmt.Errorf("table: pivot: row %d: nil category", r)
		}
		ci := catIdx[cs]
		if g.cells[ci] != nil {
			return nil, fmt.Errorf("table: pivot: key %v, category %q: %w", kv, cs, ErrDuplicatePair)
		}
		v := valCol[r]
		if v == nil {
			v = zeroOf(valKind)
		}
		g.cells[ci] = v
	}

	fields := make([]Field, 0, len(keys)+len(cats))
	fields = append(fields, keyFields...)
	for _, c := range cats {
		fields = append(fields, Field{Name: c, Kind: valKind})
	}
	out, err := New(fields...)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		row := make([]any, 0, len(fields))
		row = append(row, g.keyVals...)
		for _, cell := range g.cells {
			if cell == nil {
				cell = zeroOf(valKind)
			}
			row = append(row, cell)
		}
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Crosstab counts rows per (rowKey, colKey) combination. One output row per
// distinct rowKey value (first-appearance order); one Int column per entry of
// the caller-fixed categories list, so categories with zero occurrences still
// appear as explicit zero columns and the output schema is stable across
// months. Rows whose colKey value is outside categories are ignored. A
// row-wise total column named totalName is appended.
func Crosstab(t *Table, rowKey, colKey string, categories []string, totalName string) (*Table, error) {
	rowCol, err := t.mustCol(rowKey)
	if err != nil {
		return nil, err
	}
	colCol, err := t.mustCol(colKey)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("table: crosstab: empty category set")
	}
	catIdx := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, dup := catIdx[c]; dup {
			return nil, fmt.Errorf("table: crosstab: duplicate category %q", c)
		}
		catIdx[c] = i
	}

	type group struct {
		key    any
		counts []int64
	}
	var groups []*group
	byKey := map[string]*group{}

	for r := 0; r < t.nrows; r++ {
		ks := fmt.Sprintf("%v", rowCol[r])
		g, ok := byKey[ks]
		if !ok {
			g = &group{key: rowCol[r], counts: make([]int64, len(categories))}
			byKey[ks] = g
			groups = append(groups, g)
		}
		cs, _ := colCol[r].(string)
		if ci, ok := catIdx[cs]; ok {
			g.counts[ci]++
		}
	}

	fields := make([]Field, 0, len(categories)+2)
	fields = append(fields, t.fields[t.index[rowKey]])
	for _, c := range categories {
		fields = append(fields, Field{Name: c, Kind: Int})
	}
	fields = append(fields, Field{Name: totalName, Kind: Int})
	out, err := New(fields...)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		row := make([]any, 0, len(fields))
		row = append(row, g.key)
		var total int64
		for _, n := range g.counts {
			row = append(row, n)
			total += n
		}
		row = append(row, total)
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
