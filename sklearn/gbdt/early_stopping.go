package gbdt

import "math"

// EarlyStopping tracks the evaluation score across boosting rounds.
type EarlyStopping struct {
	Rounds          int     // rounds without improvement before stopping
	BestScore       float64 // best score so far
	BestIteration   int     // iteration of BestScore
	RoundsNoImprove int     // rounds since BestScore
	Minimize        bool
	Enabled         bool
}

// NewEarlyStopping creates a handler. rounds <= 0 disables it.
func NewEarlyStopping(rounds int, minimize bool) *EarlyStopping {
	if rounds <= 0 {
		return &EarlyStopping{Enabled: false, BestIteration: -1}
	}
	best := math.Inf(1)
	if !minimize {
		best = math.Inf(-1)
	}
	return &EarlyStopping{
		Rounds:    rounds,
		BestScore: best,
		Minimize:  minimize,
		Enabled:   true,
	}
}

// Update records the score of iteration.
func (es *EarlyStopping) Update(iteration int, score float64) {
	if !es.Enabled {
		return
	}

	improved := score > es.BestScore
	if es.Minimize {
		improved = score < es.BestScore
	}

	if improved {
		es.BestScore = score
		es.BestIteration = iteration
		es.RoundsNoImprove = 0
	} else {
		es.RoundsNoImprove++
	}
}

// ShouldStop returns whether training should stop.
func (es *EarlyStopping) ShouldStop() bool {
	return es.Enabled && es.RoundsNoImprove >= es.Rounds
}
