package agent

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

func tdAgent(t *testing.T, seed uint64) *Agent {
	b := NewBuilder()
	if err := b.Configure(policy.EGreedy, learning.TDZero); err != nil {
		t.Fatal(err)
	}
	args := DefaultArgs()
	args.Rate = learning.InverseCount
	b.SetArgs(args)
	return b.BuildWithSeed(seed)
}

func TestMergeDisjointStates(t *testing.T) {
	is := is.New(t)
	a, b := tdAgent(t, 1), tdAgent(t, 2)
	a.Values().Set(state.Of(0), value.Value{Estimate: 1, VisitCount: 3})
	b.Values().Set(state.Of(1), value.Value{Estimate: 2, VisitCount: 4})
	b.Transitions().Record(state.Of(1), 0, state.Of(2))

	a.Merge(b)
	is.Equal(a.Values().Len(), 2)
	is.Equal(*a.Values().Get(state.Of(0)), value.Value{Estimate: 1, VisitCount: 3})
	is.Equal(*a.Values().Get(state.Of(1)), value.Value{Estimate: 2, VisitCount: 4})
	is.Equal(a.Transitions().Counter(state.Of(1), 0).Count(state.Of(2)), 1.0)
	is.Equal(b.Values().Len(), 1)
}

func TestMergeEqualCounts(t *testing.T) {
	a, b := tdAgent(t, 1), tdAgent(t, 2)
	a.Values().Set(state.Of(0), value.Value{Estimate: 0.3, VisitCount: 1})
	b.Values().Set(state.Of(0), value.Value{Estimate: 0.9, VisitCount: 1})
	Merge(a, b)
	v := a.Values().Get(state.Of(0))
	assert.InDelta(t, 0.6, v.Estimate, 1e-12)
	assert.Equal(t, 1.0, v.VisitCount)
	assert.Equal(t, value.Value{Estimate: 0.9, VisitCount: 1}, *b.Values().Get(state.Of(0)))
}

func TestMergeSumsTransitions(t *testing.T) {
	is := is.New(t)
	a, b := tdAgent(t, 1), tdAgent(t, 2)
	for i := 0; i < 3; i++ {
		a.Transitions().Record(state.Of(0), 1, state.Of(1))
	}
	b.Transitions().Record(state.Of(0), 1, state.Of(1))
	b.Transitions().Record(state.Of(0), 1, state.Of(2))
	a.Merge(b)
	c := a.Transitions().Counter(state.Of(0), 1)
	is.Equal(c.Count(state.Of(1)), 4.0)
	is.Equal(c.Count(state.Of(2)), 1.0)
}

// Two TD(0) agents each see the same two-state chain once and are merged.
func TestTwoAgentsChainEndToEnd(t *testing.T) {
	is := is.New(t)
	start, terminal := state.Of(0), state.Of(1)
	agents := []*Agent{tdAgent(t, 1), tdAgent(t, 2)}
	for _, a := range agents {
		a.Observe(transition.Start(start))
		a.Observe(transition.New(terminal, 0, 1))
		a.FinalizeEpisode()

		term := a.Values().Get(terminal)
		is.Equal(term.VisitCount, 1.0)
		pred := a.Values().Get(start)
		is.True(pred.Estimate > 0)
		is.True(pred.Estimate <= term.Estimate)
	}
	agents[0].Merge(agents[1])
	m := agents[0].Values()
	is.Equal(m.Get(terminal).VisitCount, 1.0)
	assert.InDelta(t, 0.5, m.Get(start).Estimate, 1e-12)
	is.Equal(agents[0].Transitions().Counter(start, 0).Count(terminal), 2.0)
}

func TestCloneIsIndependent(t *testing.T) {
	is := is.New(t)
	a := tdAgent(t, 7)
	a.Values().Set(state.Of(3), value.Value{Estimate: 2, VisitCount: 1})
	a.Transitions().Record(state.Of(3), 0, state.Of(4))

	c := a.Clone()
	is.Equal(c.Name(), a.Name())
	is.Equal(c.Memory().Seed, a.Memory().Seed)
	is.Equal(c.Values().Estimate(state.Of(3)), 2.0)

	c.Values().Get(state.Of(3)).Estimate = 5
	c.Transitions().Record(state.Of(3), 0, state.Of(4))
	is.Equal(a.Values().Estimate(state.Of(3)), 2.0)
	is.Equal(a.Transitions().Counter(state.Of(3), 0).Count(state.Of(4)), 1.0)
}

func TestCloneKeepsInitialEstimate(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	is.NoErr(b.Configure(policy.EGreedy, learning.SampleAveraging))
	args := DefaultArgs()
	args.InitialEstimate = 5
	args.Values = value.NewTable()
	args.Values.Set(state.Of(1), value.Value{Estimate: 1, VisitCount: 1})
	b.SetArgs(args)

	a := b.BuildWithSeed(3)
	is.Equal(a.Values().Estimate(state.Of(0)), 5.0)
	is.Equal(a.Values().Estimate(state.Of(1)), 1.0)
	is.Equal(args.Values.Prior, value.Value{}) // seed table untouched

	c := a.Clone()
	is.Equal(c.Values().Get(state.Of(9)).Estimate, 5.0)
	is.Equal(c.Values().Get(state.Of(9)).VisitCount, 0.0)
}
