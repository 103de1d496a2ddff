package gbdt

import (
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/mlcli/core/parallel"
	"github.com/YuminosukeSato/mlcli/pkg/errors"
	"github.com/YuminosukeSato/mlcli/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// splitSearchThreshold is the number of row-feature pairs below which the
// split search stays on the calling goroutine.
const splitSearchThreshold = 4096

// trainer grows the ensemble for one Fit call.
type trainer struct {
	params Params
	logger log.Logger

	cols [][]float64 // column-major features
	y    []float64
	n, m int

	raw        []float64 // current margins
	grad, hess []float64

	obj     logistic
	metric  evalMetric
	sampler *sampler
}

// splitInfo is the best split found for one feature at one node.
type splitInfo struct {
	feature     int
	threshold   float64
	defaultLeft bool
	gain        float64
	valid       bool
}

func newTrainer(params Params, X *mat.Dense, y []float64, logger log.Logger) (*trainer, error) {
	metric, err := newEvalMetric(params.EvalMetric)
	if err != nil {
		return nil, err
	}
	n, m := X.Dims()
	cols := make([][]float64, m)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
	}
	return &trainer{
		params:  params,
		logger:  logger,
		cols:    cols,
		y:       y,
		n:       n,
		m:       m,
		raw:     make([]float64, n),
		grad:    make([]float64, n),
		hess:    make([]float64, n),
		metric:  metric,
		sampler: newSampler(params),
	}, nil
}

// train runs the boosting loop and returns the fitted model.
func (t *trainer) train(featureNames []string) (*Model, error) {
	start := time.Now()
	base := t.obj.InitScore(t.y)
	for i := range t.raw {
		t.raw[i] = base
	}

	es := NewEarlyStopping(t.params.EarlyStoppingRounds, t.metric.minimize)
	trees := make([]Tree, 0, t.params.NumBoostRound)
	proba := make([]float64, t.n)
	row := make([]float64, t.m)
	var score float64

	for iter := 0; iter < t.params.NumBoostRound; iter++ {
		t.obj.Gradients(t.raw, t.y, t.grad, t.hess)

		tree := t.buildTree(t.sampler.Rows(t.n), t.sampler.Features(t.m))
		trees = append(trees, tree)

		for i := 0; i < t.n; i++ {
			for j := range row {
				row[j] = t.cols[j][i]
			}
			t.raw[i] += tree.Predict(row)
			proba[i] = errors.Sigmoid(t.raw[i])
		}

		var err error
		score, err = t.metric.score(t.y, proba)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate %s at iteration %d", t.metric.name, iter)
		}
		t.logger.Debug("Boosting round",
			log.IterationKey, iter,
			t.metric.name, score,
			"leaves", tree.NumLeaves(),
			"depth", tree.Depth(),
		)

		es.Update(iter, score)
		if es.ShouldStop() {
			t.logger.Info("Early stopping",
				log.IterationKey, iter,
				"best_iteration", es.BestIteration,
				"best_score", es.BestScore,
			)
			break
		}
	}

	best := len(trees) - 1
	if es.Enabled {
		best = es.BestIteration
		trees = trees[:best+1]
		score = es.BestScore
	}

	gainSum, splitCount := splitStats(trees, t.m)

	t.logger.Info("Training finished",
		log.SamplesKey, t.n,
		log.FeaturesKey, t.m,
		"trees", len(trees),
		t.metric.name, score,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Model{
		FeatureNames:  append([]string(nil), featureNames...),
		Trees:         trees,
		BaseScore:     base,
		Params:        t.params,
		BestIteration: best,
		BestScore:     score,
		GainSum:       gainSum,
		SplitCount:    splitCount,
	}, nil
}

// buildTree grows one tree on the sampled rows and features.
func (t *trainer) buildTree(rows, features []int) Tree {
	tree := Tree{Shrinkage: t.params.LearningRate}
	t.grow(&tree, rows, features, 0)
	return tree
}

// grow appends the subtree for rows and returns its root index.
func (t *trainer) grow(tree *Tree, rows, features []int, depth int) int {
	idx := len(tree.Nodes)
	g, h := t.sums(rows)
	tree.Nodes = append(tree.Nodes, Node{
		Left:  -1,
		Right: -1,
		Value: -g / (h + t.params.Lambda),
		Cover: h,
	})

	if depth >= t.params.MaxDepth || len(rows) < 2 {
		return idx
	}
	best := t.findBestSplit(rows, features, g, h)
	if !best.valid {
		return idx
	}

	left, right := t.partition(rows, best)

	n := &tree.Nodes[idx]
	n.Feature = best.feature
	n.Threshold = best.threshold
	n.DefaultLeft = best.defaultLeft
	n.Gain = best.gain

	l := t.grow(tree, left, features, depth+1)
	r := t.grow(tree, right, features, depth+1)
	tree.Nodes[idx].Left = l
	tree.Nodes[idx].Right = r
	return idx
}

func (t *trainer) sums(rows []int) (g, h float64) {
	for _, i := range rows {
		g += t.grad[i]
		h += t.hess[i]
	}
	return g, h
}

// findBestSplit evaluates every sampled feature and keeps the highest gain.
// Ties go to the earlier feature.
func (t *trainer) findBestSplit(rows, features []int, g, h float64) splitInfo {
	results := make([]splitInfo, len(features))
	parallel.ParallelizeWithThreshold(len(features), splitSearchThreshold/max(len(rows), 1), func(start, end int) {
		for k := start; k < end; k++ {
			results[k] = t.bestSplitForFeature(rows, features[k], g, h)
		}
	})

	var best splitInfo
	for _, s := range results {
		if s.valid && (!best.valid || s.gain > best.gain) {
			best = s
		}
	}
	return best
}

type valueRow struct {
	value float64
	row   int
}

// bestSplitForFeature scans the sorted present values of one feature. Rows
// with NaN are tried on both sides and the better side becomes the default
// direction.
func (t *trainer) bestSplitForFeature(rows []int, feature int, g, h float64) splitInfo {
	col := t.cols[feature]
	present := make([]valueRow, 0, len(rows))
	var gMiss, hMiss float64
	for _, i := range rows {
		v := col[i]
		if math.IsNaN(v) {
			gMiss += t.grad[i]
			hMiss += t.hess[i]
			continue
		}
		present = append(present, valueRow{v, i})
	}
	sort.Slice(present, func(a, b int) bool { return present[a].value < present[b].value })

	lambda := t.params.Lambda
	minChild := t.params.MinChildWeight
	parent := g * g / (h + lambda)
	best := splitInfo{feature: feature}

	try := func(gl, hl float64, threshold float64, defaultLeft bool) {
		gr, hr := g-gl, h-hl
		if hl < minChild || hr < minChild {
			return
		}
		gain := 0.5 * (gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent)
		if gain <= 0 {
			return
		}
		if !best.valid || gain > best.gain {
			best = splitInfo{
				feature:     feature,
				threshold:   threshold,
				defaultLeft: defaultLeft,
				gain:        gain,
				valid:       true,
			}
		}
	}

	var gl, hl float64
	for k := 0; k+1 < len(present); k++ {
		gl += t.grad[present[k].row]
		hl += t.hess[present[k].row]
		if present[k].value == present[k+1].value {
			continue
		}
		threshold := (present[k].value + present[k+1].value) / 2
		try(gl, hl, threshold, false)
		if hMiss > 0 {
			try(gl+gMiss, hl+hMiss, threshold, true)
		}
	}
	return best
}

// partition splits rows by the chosen split, routing NaN to the default side.
func (t *trainer) partition(rows []int, s splitInfo) (left, right []int) {
	col := t.cols[s.feature]
	for _, i := range rows {
		v := col[i]
		goLeft := v <= s.threshold
		if math.IsNaN(v) {
			goLeft = s.defaultLeft
		}
		if goLeft {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

// splitStats sums the gain and counts the splits of each of m features over
// the internal nodes of trees.
func splitStats(trees []Tree, m int) ([]float64, []int) {
	gainSum := make([]float64, m)
	splitCount := make([]int, m)
	for i := range trees {
		for _, n := range trees[i].Nodes {
			if n.IsLeaf() {
				continue
			}
			gainSum[n.Feature] += n.Gain
			splitCount[n.Feature]++
		}
	}
	return gainSum, splitCount
}

// normalizedImportance returns the average gain per split of each feature,
// scaled to sum to one. Unused features score zero.
func normalizedImportance(gainSum []float64, splitCount []int) []float64 {
	out := make([]float64, len(gainSum))
	for j := range out {
		if splitCount[j] > 0 {
			out[j] = gainSum[j] / float64(splitCount[j])
		}
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}
