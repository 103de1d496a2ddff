package frame

import (
	"math"

	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Column is a named sequence of values aligned by row position.
type Column struct {
	Name   string
	Values []Value
}

// NewColumn is a convenience constructor.
func NewColumn(name string, values ...Value) Column {
	return Column{Name: name, Values: values}
}

// Len returns the number of rows.
func (c Column) Len() int { return len(c.Values) }

// MissingCount returns the number of missing cells.
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the column as float64 with NaN for missing cells. It
// fails with a TransformError when a present value is not numeric.
func (c Column) Floats() ([]float64, error) {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		if v.IsMissing() {
			out[i] = math.NaN()
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, errors.NewTransformError("floats", c.Name, i, errors.Newf("non-numeric value %q", v.String()))
		}
		out[i] = f
	}
	return out, nil
}

// Table is an ordered set of equally long columns.
type Table struct {
	names []string
	cols  map[string][]Value
	nrows int
}

// New builds a table from columns, in order. Column names must be unique and
// all columns must have the same length.
func New(cols ...Column) (*Table, error) {
	t := &Table{cols: make(map[string][]Value, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.nrows = len(c.Values)
		} else if len(c.Values) != t.nrows {
			return nil, errors.NewDimensionError("frame.New", t.nrows, len(c.Values), 0)
		}
		if _, dup := t.cols[c.Name]; dup {
			return nil, errors.NewValueError("frame.New", "duplicate column "+c.Name)
		}
		t.names = append(t.names, c.Name)
		t.cols[c.Name] = c.Values
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.names) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Has reports whether the table contains the column.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the named column. The returned values must not be modified.
func (t *Table) Column(name string) (Column, error) {
	vals, ok := t.cols[name]
	if !ok {
		return Column{}, errors.NewSchemaError("column", name)
	}
	return Column{Name: name, Values: vals}, nil
}

// Columns returns all columns in order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.names))
	for i, n := range t.names {
		out[i] = Column{Name: n, Values: t.cols[n]}
	}
	return out
}

// With returns a table where col replaces the column of the same name, or is
// appended after the existing columns.
func (t *Table) With(col Column) (*Table, error) {
	if len(t.names) > 0 && len(col.Values) != t.nrows {
		return nil, errors.NewDimensionError("frame.With", t.nrows, len(col.Values), 0)
	}
	out := t.clone()
	if _, ok := out.cols[col.Name]; !ok {
		out.names = append(out.names, col.Name)
	}
	if len(t.names) == 0 {
		out.nrows = len(col.Values)
	}
	out.cols[col.Name] = col.Values
	return out, nil
}

// Drop returns a table without the named columns. It fails with a
// SchemaError if any name is absent.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.Has(n) {
			return nil, errors.NewSchemaError("drop_columns", n)
		}
		drop[n] = true
	}
	out := &Table{cols: make(map[string][]Value, len(t.names)), nrows: t.nrows}
	for _, n := range t.names {
		if drop[n] {
			continue
		}
		out.names = append(out.names, n)
		out.cols[n] = t.cols[n]
	}
	return out, nil
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, errors.NewSchemaError("select", n)
		}
		cols = append(cols, c)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.nrows = t.nrows
	return out, nil
}

// Take returns the rows at the given positions, in order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{names: t.Names(), cols: make(map[string][]Value, len(t.names)), nrows: len(rows)}
	for _, n := range t.names {
		src := t.cols[n]
		dst := make([]Value, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		out.cols[n] = dst
	}
	return out
}

// Matrix returns the named columns as a rows x len(names) matrix. Missing
// cells become NaN.
func (t *Table) Matrix(names []string) (*mat.Dense, error) {
	if t.nrows == 0 || len(names) == 0 {
		return nil, errors.ErrEmptyData
	}
	data := make([]float64, t.nrows*len(names))
	for j, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		fs, err := c.Floats()
		if err != nil {
			return nil, err
		}
		for i, f := range fs {
			data[i*len(names)+j] = f
		}
	}
	return mat.NewDense(t.nrows, len(names), data), nil
}

func (t *Table) clone() *Table {
	out := &Table{
		names: append(make([]string, 0, len(t.names)+1), t.names...),
		cols:  make(map[string][]Value, len(t.cols)+1),
		nrows: t.nrows,
	}
	for k, v := range t.cols {
		out.cols[k] = v
	}
	return out
}
