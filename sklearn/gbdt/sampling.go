package gbdt

import (
	"math/rand/v2"
	"sort"
)

// sampler draws the row and column subsets of each tree from a seeded
// source, so training is reproducible for a given seed.
type sampler struct {
	rng             *rand.Rand
	subsample       float64
	colsampleByTree float64
}

func newSampler(p Params) *sampler {
	seed := uint64(p.Seed)
	return &sampler{
		rng:             rand.New(rand.NewPCG(seed, seed)),
		subsample:       p.Subsample,
		colsampleByTree: p.ColsampleByTree,
	}
}

// Rows samples rows without replacement, in ascending order.
func (s *sampler) Rows(n int) []int {
	return s.draw(n, s.subsample)
}

// Features samples the columns available to one tree, in ascending order.
func (s *sampler) Features(n int) []int {
	return s.draw(n, s.colsampleByTree)
}

func (s *sampler) draw(n int, fraction float64) []int {
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	// Partial Fisher-Yates
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	out := perm[:k]
	sort.Ints(out)
	return out
}
