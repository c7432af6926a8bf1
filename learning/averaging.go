package learning

import (
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/transition"
)

// SampleAveragingRule keeps each state's estimate at the running mean of the
// rewards received on entering it:
//
//	n <- n + 1
//	V <- V + (R - V) / n
//
// The opening observation of an episode (NoAction) carries no reward and
// is not averaged in.
type SampleAveragingRule struct {
	base
}

func NewSampleAveraging(mem *memory.Memory) *SampleAveragingRule {
	return &SampleAveragingRule{base: newBase(mem, 2)}
}

func (r *SampleAveragingRule) Name() string { return SampleAveraging }

func (r *SampleAveragingRule) Observe(t transition.Transition) {
	r.push(t)
	if t.Action == transition.NoAction {
		return
	}
	v := r.mem.Values.Get(t.State)
	v.VisitCount++
	v.Estimate += (t.Reward - v.Estimate) / v.VisitCount
}

// WeightedAveragingRule is an exponential recency-weighted average with a
// fixed step size:
//
//	V <- V + alpha (R - V)
type WeightedAveragingRule struct {
	base
	Alpha float64
}

func NewWeightedAveraging(mem *memory.Memory, alpha float64) *WeightedAveragingRule {
	return &WeightedAveragingRule{base: newBase(mem, 2), Alpha: alpha}
}

func (r *WeightedAveragingRule) Name() string { return WeightedAveraging }

func (r *WeightedAveragingRule) Observe(t transition.Transition) {
	r.push(t)
	if t.Action == transition.NoAction {
		return
	}
	v := r.mem.Values.Get(t.State)
	v.VisitCount++
	v.Estimate += r.Alpha * (t.Reward - v.Estimate)
}
