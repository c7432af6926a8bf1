package learning

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/transition"
)

// TDOneRule is episodic TD(1). During the episode it only counts visits;
// when the episode ends it discounts the whole reward sequence at once with
//
//	D[i][j] = gamma^(n-1-max(i,j))
//
// and sets V[i] = (D r - V)[i] / n[i] for every step i.
type TDOneRule struct {
	base
	Discount float64
}

func NewTDOne(mem *memory.Memory, discount float64) *TDOneRule {
	return &TDOneRule{base: newBase(mem, 0), Discount: discount}
}

func (r *TDOneRule) Name() string { return TDOne }

func (r *TDOneRule) Observe(t transition.Transition) {
	r.push(t)
	r.mem.Values.Get(t.State).VisitCount++
}

func (r *TDOneRule) FinalizeEpisode() {
	defer r.mem.Trajectory.Clear()
	steps := r.mem.Trajectory.Steps()
	n := len(steps)
	if n == 0 {
		return
	}
	discounts := mat.NewDense(n, n, nil)
	rewards := mat.NewVecDense(n, nil)
	values := mat.NewVecDense(n, nil)
	for i, st := range steps {
		for j := 0; j < n; j++ {
			discounts.Set(i, j, math.Pow(r.Discount, float64(n-1-max(i, j))))
		}
		rewards.SetVec(i, st.Reward)
		values.SetVec(i, r.mem.Values.Get(st.State).Estimate)
	}
	returns := mat.NewVecDense(n, nil)
	returns.MulVec(discounts, rewards)
	returns.SubVec(returns, values)

	for i, st := range steps {
		v := r.mem.Values.Get(st.State)
		if v.VisitCount == 0 {
			continue
		}
		v.Estimate = returns.AtVec(i) / v.VisitCount
	}
}
