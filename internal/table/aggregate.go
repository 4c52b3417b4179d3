package table

import (
	"fmt"
	"strings"
)

// GroupSum partitions rows by the key columns and sums the listed numeric
// columns per partition. Groups appear in first-appearance order. Missing
// numeric cells count as zero.
func GroupSum(t *Table, keys []string, sums []string) (*Table, error) {
	keyCols := make([][]any, len(keys))
	fields := make([]Field, 0, len(keys)+len(sums))
	for i, k := range keys {
		col, err := t.mustCol(k)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
		fields = append(fields, t.fields[t.index[k]])
	}
	sumCols := make([][]any, len(sums))
	sumKinds := make([]Kind, len(sums))
	for i, s := range sums {
		col, err := t.mustCol(s)
		if err != nil {
			return nil, err
		}
		k := t.fields[t.index[s]].Kind
		if k != Int && k != Float {
			return nil, fmt.Errorf("table: group: column %q is %s, want numeric", s, k)
		}
		sumCols[i] = col
		sumKinds[i] = k
		fields = append(fields, t.fields[t.index[s]])
	}

	type group struct {
		keyVals []any
		totals  []float64
	}
	var groups []*group
	byKey := map[string]*group{}

	for r := 0; r < t.nrows; r++ {
		var kb strings.Builder
		kv := make([]any, len(keys))
		for i, col := range keyCols {
			kv[i] = col[r]
			fmt.Fprintf(&kb, "%v\x00", col[r])
		}
		g, ok := byKey[kb.String()]
		if !ok {
			g = &group{keyVals: kv, totals: make([]float64, len(sums))}
			byKey[kb.String()] = g
			groups = append(groups, g)
		}
		for i, col := range sumCols {
			g.totals[i] += numeric(col[r])
		}
	}

	out, err := New(fields...)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		row := make([]any, 0, len(fields))
		row = append(row, g.keyVals...)
		for i, total := range g.totals {
			if sumKinds[i] == Int {
				row = append(row, int64(total))
			} else {
				row = append(row, total)
			}
		}
		if err := out.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AppendGrandTotal appends one synthetic aggregate row: sentinel values for
// the named string columns, the column total over all existing rows for each
// listed numeric column, nil elsewhere. The totals are computed directly from
// the rows already present, never by re-running a group-by, so the aggregate
// can never double count.
func (t *Table) AppendGrandTotal(sentinels map[string]string, sums []string) error {
	row := make([]any, len(t.fields))
	for name, v := range sentinels {
		i, ok := t.index[name]
		if !ok {
			return fmt.Errorf("table: grand total: no column %q", name)
		}
		if t.fields[i].Kind != String {
			return fmt.Errorf("table: grand total: sentinel column %q is %s, want string", name, t.fields[i].Kind)
		}
		row[i] = v
	}
	for _, name := range sums {
		i, ok := t.index[name]
		if !ok {
			return fmt.Errorf("table: grand total: no column %q", name)
		}
		k := t.fields[i].Kind
		if k != Int && k != Float {
			return fmt.Errorf("table: grand total: column %q is %s, want numeric", name, k)
		}
		var total float64
		for r := 0; r < t.nrows; r++ {
			total += numeric(t.cols[i][r])
		}
		if k == Int {
			row[i] = int64(total)
		} else {
			row[i] = total
		}
	}
	return t.AppendRow(row...)
}
