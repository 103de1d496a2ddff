package dataset

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes one column for the data-quality report.
type ColumnSummary struct {
	Name       string
	Kind       string // number, string, mixed or missing
	Count      int    // present values
	Missing    int
	MissingPct float64
	Unique     int

	// Numeric columns only.
	Mean, Std, Min, Max float64
	Skew, Kurtosis      float64
}

// Numeric reports whether the numeric statistics are populated.
func (s ColumnSummary) Numeric() bool { return s.Kind == frame.KindNumber.String() && s.Count > 0 }

// Summarize computes per-column missing counts, kinds and, for numeric
// columns, descriptive statistics.
func Summarize(t *frame.Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, t.NumCols())
	for _, c := range t.Columns() {
		s := ColumnSummary{Name: c.Name, Missing: c.MissingCount()}
		s.MissingPct = 100 * errors.SafeDivide(float64(s.Missing), float64(c.Len()))

		kinds := map[frame.Kind]bool{}
		uniq := map[string]bool{}
		var xs []float64
		for _, v := range c.Values {
			if v.IsMissing() {
				continue
			}
			kinds[v.Kind()] = true
			uniq[v.Key()] = true
			if f, ok := v.Float(); ok {
				xs = append(xs, f)
			}
		}
		s.Count = c.Len() - s.Missing
		s.Unique = len(uniq)
		switch {
		case len(kinds) == 0:
			s.Kind = frame.KindMissing.String()
		case len(kinds) > 1:
			s.Kind = "mixed"
		case kinds[frame.KindNumber]:
			s.Kind = frame.KindNumber.String()
		default:
			s.Kind = frame.KindString.String()
		}

		if s.Kind == frame.KindNumber.String() && len(xs) > 0 {
			s.Mean, s.Std = stat.MeanStdDev(xs, nil)
			s.Min, s.Max = floats.Min(xs), floats.Max(xs)
			if len(xs) > 2 {
				s.Skew = stat.Skew(xs, nil)
				s.Kurtosis = stat.ExKurtosis(xs, nil)
			}
		}
		out = append(out, s)
	}
	return out
}

// CategoryCount is the number of rows holding one value.
type CategoryCount struct {
	Value string
	Count int
}

// Distribution counts the values of a column, most frequent first, ties in
// value order. Missing values are counted under the empty string.
func Distribution(t *frame.Table, column string) ([]CategoryCount, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	repr := map[string]frame.Value{}
	for _, v := range c.Values {
		counts[v.Key()]++
		repr[v.Key()] = v
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return frame.Less(repr[keys[i]], repr[keys[j]])
	})
	out := make([]CategoryCount, len(keys))
	for i, k := range keys {
		out[i] = CategoryCount{Value: repr[k].String(), Count: counts[k]}
	}
	return out, nil
}

// DuplicateRows counts rows identical to an earlier row.
func DuplicateRows(t *frame.Table) int {
	cols := t.Columns()
	seen := make(map[string]bool, t.NumRows())
	dups := 0
	var b strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		b.Reset()
		for _, c := range cols {
			b.WriteString(c.Values[i].Key())
			b.WriteByte(0)
		}
		k := b.String()
		if seen[k] {
			dups++
			continue
		}
		seen[k] = true
	}
	return dups
}
