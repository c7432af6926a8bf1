package transition

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/domino14/tabrl/state"
)

// Afterstate deterministically applies action to s. Environments that know
// their own dynamics can supply one to stand in for missing observations.
type Afterstate func(s state.State, action int) state.State

// Model is an empirical transition model built on a frequency table.
type Model struct {
	Table *Table
	Rand  *rand.Rand
	// Fallback is used when (state, action) has no usable observations. If
	// nil the input state is returned unchanged.
	Fallback Afterstate
}

// NewModel makes a model over table drawing from rng.
func NewModel(table *Table, rng *rand.Rand) *Model {
	return &Model{Table: table, Rand: rng}
}

// Predict samples a successor of (s, action) in proportion to how often
// each successor was observed. It makes exactly one draw from the model's
// random stream when there is data, and none when there isn't.
func (m *Model) Predict(s state.State, action int) state.State {
	succ := m.Table.Counter(s, action).Successors()
	if len(succ) == 0 {
		return m.fallback(s, action)
	}
	weights := make([]float64, len(succ))
	for i, sc := range succ {
		weights[i] = max(sc.Count, 0)
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return m.fallback(s, action)
	}
	return succ[sample(weights, total, m.Rand.Float64())].State.Clone()
}

// Distribution returns the successors of (s, action) and their
// probabilities. Both slices are empty if nothing usable was observed.
func (m *Model) Distribution(s state.State, action int) ([]state.State, []float64) {
	succ := m.Table.Counter(s, action).Successors()
	states := make([]state.State, 0, len(succ))
	probs := make([]float64, 0, len(succ))
	for _, sc := range succ {
		if sc.Count <= 0 {
			continue
		}
		states = append(states, sc.State.Clone())
		probs = append(probs, sc.Count)
	}
	total := floats.Sum(probs)
	if total <= 0 {
		return nil, nil
	}
	floats.Scale(1/total, probs)
	return states, probs
}

func (m *Model) fallback(s state.State, action int) state.State {
	if m.Fallback != nil {
		return m.Fallback(s, action)
	}
	return s.Clone()
}

// sample picks an index from weights using the uniform draw u in [0, 1).
func sample(weights []float64, total, u float64) int {
	target := u * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		target -= w
		if target < 0 {
			return i
		}
	}
	return last
}
