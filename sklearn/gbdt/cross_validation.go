package gbdt

import (
	"math/rand/v2"
	"runtime"
	"sort"

	"github.com/YuminosukeSato/mlcli/core/frame"
	"github.com/YuminosukeSato/mlcli/metrics"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// CVFold represents a single fold in cross-validation.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// StratifiedKFold splits rows into folds that keep the class ratio.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewStratifiedKFold creates a new stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int) *StratifiedKFold {
	return &StratifiedKFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// Split generates train and test indices for each fold. Indices within a
// fold are ascending.
func (skf *StratifiedKFold) Split(y []float64) []CVFold {
	classIndices := make(map[float64][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	classes := make([]float64, 0, len(classIndices))
	for c := range classIndices {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.RandomSeed), uint64(skf.RandomSeed)))
		for _, c := range classes {
			indices := classIndices[c]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]CVFold, skf.NSplits)
	for _, c := range classes {
		indices := classIndices[c]
		foldSize := len(indices) / skf.NSplits
		remainder := len(indices) % skf.NSplits
		cur := 0
		for i := range folds {
			size := foldSize
			if i < remainder {
				size++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[cur:cur+size]...)
			cur += size
		}
	}

	for i := range folds {
		sort.Ints(folds[i].TestIndices)
		inTest := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		for j := range y {
			if !inTest[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}
	return folds
}

// CVResult stores the accuracy of each fold.
type CVResult struct {
	Scores []float64
}

// Mean returns the mean fold accuracy.
func (r *CVResult) Mean() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	return stat.Mean(r.Scores, nil)
}

// Std returns the sample standard deviation of the fold accuracies.
func (r *CVResult) Std() float64 {
	if len(r.Scores) < 2 {
		return 0
	}
	return stat.StdDev(r.Scores, nil)
}

// CrossValidate fits a fresh classifier on each of k stratified folds and
// scores accuracy on the held-out rows. Folds train concurrently.
func CrossValidate(params Params, features *frame.Table, labels frame.Column, k int, logger log.Logger) (*CVResult, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if k < 2 {
		return nil, errors.NewValidationError("cv", "must be at least 2", k)
	}
	if k > features.NumRows() {
		return nil, errors.NewValidationError("cv", "cannot exceed the number of rows", k)
	}
	if features.NumRows() != labels.Len() {
		return nil, errors.NewDimensionError("CrossValidate", features.NumRows(), labels.Len(), 0)
	}
	y, err := binaryLabels(labels)
	if err != nil {
		return nil, err
	}

	folds := NewStratifiedKFold(k, false, params.Seed).Split(y)
	for _, f := range folds {
		if len(f.TestIndices) == 0 {
			return nil, errors.NewValidationError("cv", "leaves an empty test fold", k)
		}
	}
	result := &CVResult{Scores: make([]float64, len(folds))}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, fold := range folds {
		g.Go(func() error {
			foldLogger := logger.With("fold", i)
			clf := NewClassifier(params, foldLogger)
			if err := clf.Fit(features.Take(fold.TrainIndices), takeColumn(labels, fold.TrainIndices)); err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			pred, err := clf.Predict(features.Take(fold.TestIndices))
			if err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			yTest := make([]float64, len(fold.TestIndices))
			for j, idx := range fold.TestIndices {
				yTest[j] = y[idx]
			}
			acc, err := metrics.Accuracy(vec(yTest), vec(pred))
			if err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			result.Scores[i] = acc
			foldLogger.Debug("Fold scored", log.AccuracyKey, acc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Cross-validation finished",
		"folds", k,
		"mean_accuracy", result.Mean(),
		"std_accuracy", result.Std(),
	)
	return result, nil
}

func takeColumn(c frame.Column, rows []int) frame.Column {
	vals := make([]frame.Value, len(rows))
	for i, r := range rows {
		vals[i] = c.Values[r]
	}
	return frame.Column{Name: c.Name, Values: vals}
}
