package transition

import (
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tabrl/state"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewChaCha8([32]byte{1, 2, 3}))
}

func TestTrajectoryWindow(t *testing.T) {
	is := is.New(t)
	tr := NewTrajectory(2)
	_, ok := tr.Back(0)
	is.True(!ok)
	for i := 0; i < 5; i++ {
		tr.Push(New(state.Of(i), i, 0))
	}
	is.Equal(tr.Len(), 2)
	newest, _ := tr.Back(0)
	prev, _ := tr.Back(1)
	is.Equal(newest.Action, 4)
	is.Equal(prev.Action, 3)
	_, ok = tr.Back(2)
	is.True(!ok)

	tr.Clear()
	is.Equal(tr.Len(), 0)
}

func TestTrajectoryUnbounded(t *testing.T) {
	is := is.New(t)
	tr := NewTrajectory(0)
	for i := 0; i < 10; i++ {
		tr.Push(New(state.Of(i), i, float64(i)))
	}
	is.Equal(tr.Len(), 10)
	is.Equal(tr.Steps()[0].Reward, 0.0)
	tr.SetWindow(3)
	is.Equal(tr.Len(), 3)
	is.Equal(tr.Steps()[0].Action, 7)
}

func TestTableRecordAndMerge(t *testing.T) {
	is := is.New(t)
	a := NewTable()
	a.Record(state.Of(0), 1, state.Of(1))
	a.Record(state.Of(0), 1, state.Of(1))
	a.Record(state.Of(0), 1, state.Of(2))

	b := NewTable()
	b.Record(state.Of(0), 1, state.Of(2))
	b.Record(state.Of(5), 0, state.Of(6))

	a.Merge(b)
	is.Equal(a.Len(), 2)
	c := a.Counter(state.Of(0), 1)
	is.Equal(c.Count(state.Of(1)), 2.0)
	is.Equal(c.Count(state.Of(2)), 2.0)
	is.Equal(a.Counter(state.Of(5), 0).Count(state.Of(6)), 1.0)
	// src untouched
	is.Equal(b.Counter(state.Of(0), 1).Count(state.Of(2)), 1.0)
	is.Equal(b.Counter(state.Of(0), 1).Len(), 1)
}

func TestTableSubUndoesMerge(t *testing.T) {
	is := is.New(t)
	seed := NewTable()
	seed.Record(state.Of(7), 0, state.Of(8))
	seed.Record(state.Of(7), 0, state.Of(9))

	a := seed.Clone()
	a.Record(state.Of(7), 0, state.Of(8))
	a.Record(state.Of(1), 1, state.Of(2))
	a.Sub(seed)

	is.Equal(a.Len(), 2)
	c := a.Counter(state.Of(7), 0)
	is.Equal(c.Count(state.Of(8)), 1.0)
	is.Equal(c.Len(), 1) // (9) dropped at zero
	is.Equal(a.Counter(state.Of(1), 1).Count(state.Of(2)), 1.0)

	untouched := seed.Clone()
	untouched.Sub(seed)
	is.Equal(untouched.Len(), 0)
	// src untouched
	is.Equal(seed.Counter(state.Of(7), 0).Count(state.Of(8)), 1.0)
}

func TestCounterNilSafe(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	c := tbl.Counter(state.Of(1), 1)
	is.True(c == nil)
	is.Equal(c.Len(), 0)
	is.Equal(c.Count(state.Of(1)), 0.0)
	is.Equal(len(c.Successors()), 0)
}

func TestPredictNoDataReturnsInput(t *testing.T) {
	is := is.New(t)
	m := NewModel(NewTable(), newRand())
	s := state.Of(3, 4)
	next := m.Predict(s, 0)
	is.True(next.Equal(s))
	next[0] = 9
	is.Equal(s[0], 3.0)
}

func TestPredictZeroCountsFallBack(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	tbl.Add(state.Of(1), 0, state.Of(2), 0)
	tbl.Add(state.Of(1), 0, state.Of(3), -2)
	m := NewModel(tbl, newRand())
	is.True(m.Predict(state.Of(1), 0).Equal(state.Of(1)))

	m.Fallback = func(s state.State, action int) state.State {
		return state.Of(int(s[0]) + action + 10)
	}
	is.True(m.Predict(state.Of(1), 0).Equal(state.Of(11)))
	states, probs := m.Distribution(state.Of(1), 0)
	is.Equal(len(states), 0)
	is.Equal(len(probs), 0)
}

func TestPredictProportionalToCounts(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	tbl.Add(state.Of(0), 0, state.Of(1), 1)
	tbl.Add(state.Of(0), 0, state.Of(2), 3)
	m := NewModel(tbl, newRand())

	hits := map[float64]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		hits[m.Predict(state.Of(0), 0)[0]]++
	}
	frac := float64(hits[2]) / n
	is.True(frac > 0.72 && frac < 0.78)
	is.Equal(hits[1]+hits[2], n)

	_, probs := m.Distribution(state.Of(0), 0)
	is.Equal(probs, []float64{0.25, 0.75})
}

func TestPredictSingleDraw(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	tbl.Add(state.Of(0), 0, state.Of(1), 1)
	tbl.Add(state.Of(0), 0, state.Of(2), 1)

	r1 := newRand()
	m := NewModel(tbl, r1)
	m.Predict(state.Of(0), 0)
	m.Predict(state.Of(0), 0)

	r2 := newRand()
	r2.Float64()
	r2.Float64()
	is.Equal(r1.Uint64(), r2.Uint64())
}
