package preprocessing

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DeriveFunc computes one output cell from one input cell.
type DeriveFunc func(v frame.Value) (frame.Value, error)

// Strategy selects the statistic ImputeGlobal fills with.
type Strategy string

const (
	StrategyMean         Strategy = "mean"
	StrategyMostFrequent Strategy = "most_frequent"
)

// DropColumns removes the named columns. It fails with a SchemaError if a
// name is absent.
func DropColumns(t *frame.Table, names ...string) (*frame.Table, error) {
	return t.Drop(names...)
}

// DeriveColumn creates or overwrites target by applying fn to each value of
// source. A failing or panicking fn becomes a TransformError for that row.
func DeriveColumn(t *frame.Table, source, target string, fn DeriveFunc) (*frame.Table, error) {
	src, err := t.Column(source)
	if err != nil {
		return nil, errors.NewSchemaError("derive_column", source)
	}
	out := make([]frame.Value, src.Len())
	for i, v := range src.Values {
		d, err := applyDerive(fn, v)
		if err != nil {
			return nil, errors.NewTransformError("derive_column", target, i, err)
		}
		out[i] = d
	}
	return t.With(frame.Column{Name: target, Values: out})
}

func applyDerive(fn DeriveFunc, v frame.Value) (out frame.Value, err error) {
	defer errors.Recover(&err, "derive_column")
	return fn(v)
}

// SumColumns writes constant plus the row-wise sum of sources to target. A
// missing source value makes the row's result missing.
func SumColumns(t *frame.Table, sources []string, target string, constant float64) (*frame.Table, error) {
	cols := make([]frame.Column, len(sources))
	for j, name := range sources {
		c, err := t.Column(name)
		if err != nil {
			return nil, errors.NewSchemaError("sum_columns", name)
		}
		cols[j] = c
	}

	out := make([]frame.Value, t.NumRows())
rows:
	for i := range out {
		sum := constant
		for _, c := range cols {
			v := c.Values[i]
			if v.IsMissing() {
				out[i] = frame.Missing()
				continue rows
			}
			f, ok := v.Float()
			if !ok {
				return nil, errors.NewTransformError("sum_columns", c.Name, i, errors.Newf("non-numeric value %q", v.String()))
			}
			sum += f
		}
		out[i] = frame.Num(sum)
	}
	return t.With(frame.Column{Name: target, Values: out})
}

// BinColumn discretizes source into bins equal-width intervals over the
// integer-truncated values and writes each row's band rank to target.
//
// Intervals are right-closed; the first one also contains the minimum.
// Ranks count only the intervals that hold at least one value, ordered by
// lower bound, so they are dense and within [0, bins-1]. Missing values stay
// missing.
func BinColumn(t *frame.Table, source, target string, bins int) (*frame.Table, error) {
	if bins < 1 {
		return nil, errors.NewValidationError("bins", "must be at least 1", bins)
	}
	src, err := t.Column(source)
	if err != nil {
		return nil, errors.NewSchemaError("bin_column", source)
	}

	truncated := make([]float64, src.Len())
	present := make([]float64, 0, src.Len())
	for i, v := range src.Values {
		if v.IsMissing() {
			truncated[i] = math.NaN()
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, errors.NewTransformError("bin_column", source, i, errors.Newf("non-numeric value %q", v.String()))
		}
		truncated[i] = math.Trunc(f)
		present = append(present, truncated[i])
	}
	if len(present) == 0 {
		return nil, errors.NewEmptyColumnError("bin_column", source)
	}

	edges := binEdges(floats.Min(present), floats.Max(present), bins)

	idx := make([]int, len(truncated))
	occupied := make([]bool, bins)
	for i, f := range truncated {
		if math.IsNaN(f) {
			idx[i] = -1
			continue
		}
		b := sort.SearchFloat64s(edges, f) - 1
		if b < 0 {
			b = 0
		} else if b > bins-1 {
			b = bins - 1
		}
		idx[i] = b
		occupied[b] = true
	}

	rank := make([]int, bins)
	next := 0
	for b, ok := range occupied {
		if ok {
			rank[b] = next
			next++
		}
	}

	out := make([]frame.Value, len(idx))
	for i, b := range idx {
		if b < 0 {
			out[i] = frame.Missing()
			continue
		}
		out[i] = frame.Num(float64(rank[b]))
	}
	return t.With(frame.Column{Name: target, Values: out})
}

// binEdges returns bins+1 ascending edges spanning [mn, mx]. The first edge
// is lowered by 0.1% of the range so the minimum falls in the first
// interval; a zero-width range is widened by 0.1% on both sides.
func binEdges(mn, mx float64, bins int) []float64 {
	if mn == mx {
		adj := 0.001 * math.Abs(mn)
		if mn == 0 {
			adj = 0.001
		}
		mn, mx = mn-adj, mx+adj
		edges := make([]float64, bins+1)
		floats.Span(edges, mn, mx)
		return edges
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, mn, mx)
	edges[0] -= (mx - mn) * 0.001
	return edges
}

// ImputeGlobal replaces every missing value in column with the mean or the
// most frequent of its present values. Most-frequent ties resolve to the
// smallest value. It fails with an EmptyColumnError when nothing is present.
func ImputeGlobal(t *frame.Table, column string, strategy Strategy) (*frame.Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, errors.NewSchemaError("impute_global", column)
	}
	if c.MissingCount() == c.Len() {
		return nil, errors.NewEmptyColumnError("impute_global", column)
	}

	var fill frame.Value
	switch strategy {
	case StrategyMean:
		xs, err := presentFloats(c, "impute_global")
		if err != nil {
			return nil, err
		}
		fill = frame.Num(stat.Mean(xs, nil))
	case StrategyMostFrequent:
		fill = mostFrequent(c.Values)
	default:
		return nil, errors.NewValidationError("strategy", "must be mean or most_frequent", string(strategy))
	}

	return t.With(frame.Column{Name: column, Values: fillMissing(c.Values, func(int) frame.Value { return fill })})
}

// ImputeGroupedMean fills missing values of column with the mean of column
// among rows sharing the same group_by value. Groups with no present values
// stay missing, as do rows whose group key is missing.
func ImputeGroupedMean(t *frame.Table, column, groupBy string) (*frame.Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, errors.NewSchemaError("impute_grouped_mean", column)
	}
	g, err := t.Column(groupBy)
	if err != nil {
		return nil, errors.NewSchemaError("impute_grouped_mean", groupBy)
	}

	groups := make(map[string][]float64)
	for i, v := range c.Values {
		key := g.Values[i]
		if v.IsMissing() || key.IsMissing() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, errors.NewTransformError("impute_grouped_mean", column, i, errors.Newf("non-numeric value %q", v.String()))
		}
		groups[key.Key()] = append(groups[key.Key()], f)
	}
	means := make(map[string]float64, len(groups))
	for k, xs := range groups {
		means[k] = stat.Mean(xs, nil)
	}

	filled := fillMissing(c.Values, func(i int) frame.Value {
		key := g.Values[i]
		if key.IsMissing() {
			return frame.Missing()
		}
		if m, ok := means[key.Key()]; ok {
			return frame.Num(m)
		}
		return frame.Missing()
	})
	return t.With(frame.Column{Name: column, Values: filled})
}

func fillMissing(vals []frame.Value, fill func(row int) frame.Value) []frame.Value {
	out := make([]frame.Value, len(vals))
	for i, v := range vals {
		if v.IsMissing() {
			out[i] = fill(i)
		} else {
			out[i] = v
		}
	}
	return out
}

func presentFloats(c frame.Column, op string) ([]float64, error) {
	xs := make([]float64, 0, c.Len())
	for i, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, errors.NewTransformError(op, c.Name, i, errors.Newf("mean of non-numeric value %q", v.String()))
		}
		xs = append(xs, f)
	}
	return xs, nil
}

func mostFrequent(vals []frame.Value) frame.Value {
	counts := make(map[string]int)
	repr := make(map[string]frame.Value)
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		counts[v.Key()]++
		repr[v.Key()] = v
	}
	var best frame.Value
	bestN := 0
	for k, n := range counts {
		v := repr[k]
		if n > bestN || (n == bestN && frame.Less(v, best)) {
			best, bestN = v, n
		}
	}
	return best
}
