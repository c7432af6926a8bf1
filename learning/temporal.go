package learning

import (
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

// TDZeroRule is one-step temporal difference learning. On every step after
// the first of an episode:
//
//	n_cur <- n_cur + 1
//	V_cur <- V_cur + R
//	V_prev <- V_prev + alpha(n_prev) (gamma V_cur - V_prev)
//
// The first transition of an episode only bumps its state's visit count.
type TDZeroRule struct {
	base
	Rate     Rate
	Discount float64
	// Unbiased rescales the step size by a single trace constant
	// o <- o + alpha (1 - o), stepping by alpha/o. With a constant rate this
	// removes the bias toward the initial estimate.
	Unbiased bool
	trace    float64
}

func NewTDZero(mem *memory.Memory, rate Rate, discount float64) *TDZeroRule {
	return &TDZeroRule{base: newBase(mem, 2), Rate: rate, Discount: discount}
}

func (r *TDZeroRule) Name() string { return TDZero }

func (r *TDZeroRule) Observe(t transition.Transition) {
	prev, cur, ok := stepCurrent(&r.base, t)
	if !ok {
		return
	}
	pv := r.mem.Values.Get(prev.State)
	step := r.Rate(pv.VisitCount)
	if r.Unbiased {
		r.trace += step * (1 - r.trace)
		step /= r.trace
	}
	pv.Estimate += step * (r.Discount*cur.Estimate - pv.Estimate)
}

// TDAveragingRule is TD(0) with the step size fixed at 1/(n_prev+1), the
// running-mean step for the predecessor's next visit.
type TDAveragingRule struct {
	base
	Discount float64
}

func NewTDAveraging(mem *memory.Memory, discount float64) *TDAveragingRule {
	return &TDAveragingRule{base: newBase(mem, 2), Discount: discount}
}

func (r *TDAveragingRule) Name() string { return TDAveraging }

func (r *TDAveragingRule) Observe(t transition.Transition) {
	prev, cur, ok := stepCurrent(&r.base, t)
	if !ok {
		return
	}
	pv := r.mem.Values.Get(prev.State)
	pv.Estimate += InverseCount(pv.VisitCount) * (r.Discount*cur.Estimate - pv.Estimate)
}

// ImplicitCountTDRule sweeps the change in the newest state back over the whole
// episode so far, stepping each predecessor by 1/(n+1) toward the discounted
// estimate of the state after it. The sweep only runs once the newest
// state's estimate is non-zero.
type ImplicitCountTDRule struct {
	base
	Discount float64
}

func NewImplicitCountTD(mem *memory.Memory, discount float64) *ImplicitCountTDRule {
	return &ImplicitCountTDRule{base: newBase(mem, 0), Discount: discount}
}

func (r *ImplicitCountTDRule) Name() string { return ImplicitCountTD }

func (r *ImplicitCountTDRule) Observe(t transition.Transition) {
	_, cur, ok := stepCurrent(&r.base, t)
	if !ok || cur.Estimate == 0 {
		return
	}
	steps := r.mem.Trajectory.Steps()
	for k := len(steps) - 1; k >= 1; k-- {
		next := r.mem.Values.Get(steps[k].State)
		pv := r.mem.Values.Get(steps[k-1].State)
		pv.Estimate += InverseCount(pv.VisitCount) * (r.Discount*next.Estimate - pv.Estimate)
	}
}

// stepCurrent does the part every one-step TD rule shares: buffer t, bump
// the visit count of its state, and (if t has a predecessor) add the reward
// into that state's estimate. ok is false for the first transition of an
// episode, which has nothing to back up into.
func stepCurrent(b *base, t transition.Transition) (prev transition.Transition, cur *value.Value, ok bool) {
	prev, ok = b.push(t)
	cur = b.mem.Values.Get(t.State)
	cur.VisitCount++
	if !ok {
		return prev, cur, false
	}
	cur.Estimate += t.Reward
	return prev, cur, true
}
