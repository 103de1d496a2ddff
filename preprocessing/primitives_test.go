package preprocessing

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnValues(t *testing.T, tbl *frame.Table, name string) []frame.Value {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	return c.Values
}

func TestDropColumns(t *testing.T) {
	tbl := passengers()

	dropped, err := DropColumns(tbl, "PassengerId", "Cabin")
	require.NoError(t, err)
	assert.False(t, dropped.Has("PassengerId"))
	assert.False(t, dropped.Has("Cabin"))
	assert.Equal(t, tbl.NumCols()-2, dropped.NumCols())

	_, err = DropColumns(tbl, "Boat")
	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Boat", schemaErr.Column)
}

func TestDropThenReaddReconstructs(t *testing.T) {
	tbl := passengers()
	names := []string{"Age", "Ticket", "Cabin"}

	dropped, err := DropColumns(tbl, names...)
	require.NoError(t, err)
	restored := dropped
	for _, n := range names {
		c, err := tbl.Column(n)
		require.NoError(t, err)
		restored, err = restored.With(c)
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, tbl.Names(), restored.Names())
	for _, n := range tbl.Names() {
		if diff := cmp.Diff(columnValues(t, tbl, n), columnValues(t, restored, n)); diff != "" {
			t.Errorf("column %s mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestDeriveColumn(t *testing.T) {
	tbl := frame.MustNew(col("x", nums(1, 2, 3)))

	doubled, err := DeriveColumn(tbl, "x", "y", func(v frame.Value) (frame.Value, error) {
		f, _ := v.Float()
		return frame.Num(f * 2), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, doubled.Names())
	assert.Empty(t, cmp.Diff(nums(2, 4, 6), columnValues(t, doubled, "y")))

	overwritten, err := DeriveColumn(tbl, "x", "x", func(v frame.Value) (frame.Value, error) {
		return frame.Str(v.String()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, overwritten.Names())
	assert.Empty(t, cmp.Diff(strs("1", "2", "3"), columnValues(t, overwritten, "x")))
}

func TestDeriveColumnFailures(t *testing.T) {
	tbl := frame.MustNew(col("x", nums(1, 2, 3)))

	tests := []struct {
		name    string
		fn      DeriveFunc
		wantRow int
	}{
		{
			name: "error",
			fn: func(v frame.Value) (frame.Value, error) {
				if f, _ := v.Float(); f == 2 {
					return frame.Value{}, fmt.Errorf("two is not allowed")
				}
				return v, nil
			},
			wantRow: 1,
		},
		{
			name: "panic",
			fn: func(v frame.Value) (frame.Value, error) {
				if f, _ := v.Float(); f == 3 {
					panic("three")
				}
				return v, nil
			},
			wantRow: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveColumn(tbl, "x", "y", tt.fn)
			var transformErr *errors.TransformError
			require.True(t, errors.As(err, &transformErr), "got %v", err)
			assert.Equal(t, tt.wantRow, transformErr.Row)
			assert.Equal(t, "y", transformErr.Column)
		})
	}

	_, err := DeriveColumn(tbl, "nope", "y", func(v frame.Value) (frame.Value, error) { return v, nil })
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestSumColumns(t *testing.T) {
	tbl := frame.MustNew(
		col("SibSp", nums(1, 0, na)),
		col("Parch", nums(0, 2, 1)),
	)

	out, err := SumColumns(tbl, []string{"SibSp", "Parch"}, "FamilySize", 1)
	require.NoError(t, err)

	got := columnValues(t, out, "FamilySize")
	assert.True(t, got[0].Equal(frame.Num(2)))
	assert.True(t, got[1].Equal(frame.Num(3)))
	assert.True(t, got[2].IsMissing(), "missing source must stay missing, not become zero")

	alone, err := DeriveColumn(out, "FamilySize", "IsAlone", isAlone)
	require.NoError(t, err)
	assert.True(t, columnValues(t, alone, "IsAlone")[0].Equal(frame.Num(0)))

	_, err = SumColumns(tbl, []string{"SibSp", "Nope"}, "F", 0)
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestSumColumnsNonNumeric(t *testing.T) {
	tbl := frame.MustNew(col("a", strs("x")), col("b", nums(1)))
	_, err := SumColumns(tbl, []string{"a", "b"}, "s", 0)
	var transformErr *errors.TransformError
	assert.True(t, errors.As(err, &transformErr))
}

func TestBinColumn(t *testing.T) {
	tests := []struct {
		name string
		in   []frame.Value
		bins int
		want []frame.Value
	}{
		{
			name: "equal width with dense ranks",
			in:   nums(0, 10, 5, 2.9, 10),
			bins: 2,
			want: nums(0, 1, 0, 0, 1),
		},
		{
			name: "right closed boundary",
			in:   nums(0, 5, 6, 10),
			bins: 2,
			want: nums(0, 0, 1, 1),
		},
		{
			name: "values are truncated before binning",
			in:   nums(0.9, 9.9, 4.99, 5.5),
			bins: 3,
			want: nums(0, 2, 1, 1),
		},
		{
			name: "empty intervals are skipped in ranking",
			in:   nums(0, 1, 100),
			bins: 10,
			want: nums(0, 0, 1),
		},
		{
			name: "constant column",
			in:   nums(7, 7, 7),
			bins: 4,
			want: nums(0, 0, 0),
		},
		{
			name: "missing stays missing",
			in:   nums(1, na, 3),
			bins: 2,
			want: nums(0, na, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := frame.MustNew(col("v", tt.in))
			out, err := BinColumn(tbl, "v", "band", tt.bins)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, columnValues(t, out, "band")); diff != "" {
				t.Errorf("bands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBinColumnMonotonicAndBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(60)
		bins := 1 + rng.IntN(12)
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = rng.Float64()*200 - 50
		}
		out, err := BinColumn(frame.MustNew(col("v", nums(xs...))), "v", "b", bins)
		require.NoError(t, err)
		ranks := columnValues(t, out, "b")

		for i := range xs {
			ri, _ := ranks[i].Float()
			assert.GreaterOrEqual(t, ri, 0.0)
			assert.LessOrEqual(t, ri, float64(bins-1))
			for j := range xs {
				rj, _ := ranks[j].Float()
				if int(xs[i]) < int(xs[j]) {
					assert.LessOrEqual(t, ri, rj, "trial %d: %v -> %v, %v -> %v", trial, xs[i], ri, xs[j], rj)
				}
			}
		}
	}
}

func TestBinColumnErrors(t *testing.T) {
	_, err := BinColumn(frame.MustNew(col("v", strs("a"))), "v", "b", 2)
	var transformErr *errors.TransformError
	assert.True(t, errors.As(err, &transformErr))

	_, err = BinColumn(frame.MustNew(col("v", nums(na, na))), "v", "b", 2)
	var emptyErr *errors.EmptyColumnError
	assert.True(t, errors.As(err, &emptyErr))

	_, err = BinColumn(frame.MustNew(col("v", nums(1))), "v", "b", 0)
	var validationErr *errors.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestImputeGlobal(t *testing.T) {
	tests := []struct {
		name     string
		in       []frame.Value
		strategy Strategy
		want     []frame.Value
	}{
		{
			name:     "mean",
			in:       nums(1, na, 5),
			strategy: StrategyMean,
			want:     nums(1, 3, 5),
		},
		{
			name:     "most frequent string",
			in:       strs("S", "C", "", "S", "Q"),
			strategy: StrategyMostFrequent,
			want:     strs("S", "C", "S", "S", "Q"),
		},
		{
			name:     "most frequent tie picks smallest",
			in:       strs("S", "C", "", "Q", "C", "S"),
			strategy: StrategyMostFrequent,
			want:     strs("S", "C", "C", "Q", "C", "S"),
		},
		{
			name:     "nothing missing",
			in:       nums(1, 2),
			strategy: StrategyMean,
			want:     nums(1, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ImputeGlobal(frame.MustNew(col("c", tt.in)), "c", tt.strategy)
			require.NoError(t, err)
			got := columnValues(t, out, "c")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("imputed mismatch (-want +got):\n%s", diff)
			}
			assert.Zero(t, frame.Column{Values: got}.MissingCount())
		})
	}
}

func TestImputeGlobalErrors(t *testing.T) {
	_, err := ImputeGlobal(frame.MustNew(col("c", nums(na, na))), "c", StrategyMean)
	var emptyErr *errors.EmptyColumnError
	assert.True(t, errors.As(err, &emptyErr))

	_, err = ImputeGlobal(frame.MustNew(col("c", strs("a", ""))), "c", StrategyMean)
	var transformErr *errors.TransformError
	assert.True(t, errors.As(err, &transformErr))

	_, err = ImputeGlobal(frame.MustNew(col("c", nums(1))), "c", Strategy("median"))
	var validationErr *errors.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	_, err = ImputeGlobal(frame.MustNew(col("c", nums(1))), "d", StrategyMean)
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestImputeGroupedMean(t *testing.T) {
	tbl := frame.MustNew(
		col("g", strs("A", "A", "B", "B")),
		col("v", nums(10, na, 20, 20)),
	)

	out, err := ImputeGroupedMean(tbl, "v", "g")
	require.NoError(t, err)
	if diff := cmp.Diff(nums(10, 10, 20, 20), columnValues(t, out, "v")); diff != "" {
		t.Errorf("grouped impute mismatch (-want +got):\n%s", diff)
	}
}

func TestImputeGroupedMeanNoFallback(t *testing.T) {
	tbl := frame.MustNew(
		col("g", strs("A", "A", "C", "", "B")),
		col("v", nums(10, 14, na, na, na)),
	)

	out, err := ImputeGroupedMean(tbl, "v", "g")
	require.NoError(t, err)
	got := columnValues(t, out, "v")
	assert.True(t, got[0].Equal(frame.Num(10)))
	assert.True(t, got[2].IsMissing(), "group with no values stays missing")
	assert.True(t, got[3].IsMissing(), "missing group key stays missing")
	assert.True(t, got[4].IsMissing())
}

func TestImputeGroupedMeanErrors(t *testing.T) {
	tbl := frame.MustNew(col("g", strs("A")), col("v", strs("x")))

	_, err := ImputeGroupedMean(tbl, "v", "missing")
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))

	_, err = ImputeGroupedMean(tbl, "v", "g")
	var transformErr *errors.TransformError
	assert.True(t, errors.As(err, &transformErr))
}
