// Package dataset reads the passenger CSV into a record table, splits off
// the target column and writes prediction and evaluation CSV files.
package dataset

import (
	"io"
	"os"
	"strconv"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultTarget is the label column of the passenger dataset.
const DefaultTarget = "Survived"

// NaNValues are the cell contents read as missing.
var NaNValues = []string{"", "NA", "NaN", "<nil>"}

// Loader reads datasets and logs what it loaded.
type Loader struct {
	logger log.Logger
}

// NewLoader creates a Loader. A nil logger discards output.
func NewLoader(logger log.Logger) *Loader {
	if logger == nil {
		logger = log.Nop()
	}
	return &Loader{logger: logger.With(log.ComponentKey, "dataset")}
}

// LoadCSV reads a CSV file with a header row. It fails with a NotFoundError
// when the file cannot be opened.
func (l *Loader) LoadCSV(path string) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewNotFoundError(path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	l.logger.Info("Loaded data",
		log.PathKey, path,
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, t.NumCols(),
	)
	return t, nil
}

// MakeDataset loads path and splits it into the feature table and the
// target column.
func (l *Loader) MakeDataset(path, target string) (*frame.Table, frame.Column, error) {
	t, err := l.LoadCSV(path)
	if err != nil {
		return nil, frame.Column{}, err
	}
	return SplitTarget(t, target)
}

// MakeDataset is Loader.MakeDataset with a throwaway loader.
func MakeDataset(path, target string, logger log.Logger) (*frame.Table, frame.Column, error) {
	return NewLoader(logger).MakeDataset(path, target)
}

// SplitTarget separates target from the other columns. It fails with a
// SchemaError when target is absent.
func SplitTarget(t *frame.Table, target string) (*frame.Table, frame.Column, error) {
	y, err := t.Column(target)
	if err != nil {
		return nil, frame.Column{}, errors.NewSchemaError("make_dataset", target)
	}
	features, err := t.Drop(target)
	if err != nil {
		return nil, frame.Column{}, err
	}
	return features, y, nil
}

// ReadCSV parses CSV with a header row. Integer, float and boolean columns
// become numeric; any other column is read as strings.
func ReadCSV(r io.Reader) (*frame.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(NaNValues),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parse csv")
	}
	return fromDataFrame(df)
}

func fromDataFrame(df dataframe.DataFrame) (*frame.Table, error) {
	names := df.Names()
	cols := make([]frame.Column, len(names))
	for j, name := range names {
		s := df.Col(name)
		if s.Err != nil {
			return nil, errors.Wrapf(s.Err, "column %s", name)
		}
		vals := make([]frame.Value, s.Len())
		for i := range vals {
			e := s.Elem(i)
			switch {
			case e.IsNA():
				vals[i] = frame.Missing()
			case s.Type() == series.String:
				vals[i] = frame.Str(e.String())
			default:
				vals[i] = frame.Num(e.Float())
			}
		}
		cols[j] = frame.Column{Name: name, Values: vals}
	}
	return frame.New(cols...)
}

// WriteCSV writes the table with a header row. Missing cells are empty.
func WriteCSV(w io.Writer, t *frame.Table) error {
	cols := t.Columns()
	ss := make([]series.Series, len(cols))
	for j, c := range cols {
		cells := make([]string, c.Len())
		for i, v := range c.Values {
			cells[i] = formatCell(v)
		}
		ss[j] = series.New(cells, series.String, c.Name)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return errors.Wrap(df.Err, "build csv")
	}
	return errors.Wrap(df.WriteCSV(w), "write csv")
}

// WriteCSVFile writes the table to path.
func WriteCSVFile(path string, t *frame.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func formatCell(v frame.Value) string {
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v.String()
}
