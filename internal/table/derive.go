package table

import (
	"fmt"
	"math"
)

// PercentSpec requests one derived percentage column:
// Name = 100 * Numerator / Denominator, rounded to two decimals.
type PercentSpec struct {
	Name        string
	Numerator   string
	Denominator string
}

// DerivePercent appends the requested percentage columns. A zero denominator
// yields exactly 0, never NaN or an error: a region with no sales has a 0%
// sales rate, not an undefined one.
func (t *Table) DerivePercent(specs ...PercentSpec) error {
	for _, spec := range specs {
		if t.Has(spec.Name) {
			return fmt.Errorf("table: derive: column %q already exists", spec.Name)
		}
		num, err := t.mustCol(spec.Numerator)
		if err != nil {
			return err
		}
		den, err := t.mustCol(spec.Denominator)
		if err != nil {
			return err
		}
		col := make([]any, t.nrows)
		for r := 0; r < t.nrows; r++ {
			d := numeric(den[r])
			var pct float64
			if d != 0 {
				pct = round2(numeric(num[r]) / d * 100)
			}
			if math.IsNaN(pct) || math.IsInf(pct, 0) {
				pct = 0
			}
			col[r] = pct
		}
		t.appendColumn(Field{Name: spec.Name, Kind: Float}, col)
	}
	return nil
}

// MaximaSpec pairs a percentage column with the name of the boolean flag
// column marking its maximum.
type MaximaSpec struct {
	Col  string
	Flag string
}

// FlagMaxima appends, for each spec, a Bool column that is true on every row
// whose value equals the column maximum over non-aggregate rows. Aggregate
// rows (isAggregate(row) == true) are excluded when computing the maximum but
// still evaluated against it, so a grand-total row that happens to tie the
// regional maximum is flagged too. Ties all flag true.
func (t *Table) FlagMaxima(specs []MaximaSpec, isAggregate func(row int) bool) error {
	for _, spec := range specs {
		if t.Has(spec.Flag) {
			return fmt.Errorf("table: maxima: column %q already exists", spec.Flag)
		}
		src, err := t.mustCol(spec.Col)
		if err != nil {
			return err
		}
		max := math.Inf(-1)
		found := false
		for r := 0; r < t.nrows; r++ {
			if isAggregate != nil && isAggregate(r) {
				continue
			}
			if v := numeric(src[r]); v > max {
				max = v
			}
			found = true
		}
		col := make([]any, t.nrows)
		for r := 0; r < t.nrows; r++ {
			col[r] = found && numeric(src[r]) == max
		}
		t.appendColumn(Field{Name: spec.Flag, Kind: Bool}, col)
	}
	return nil
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
