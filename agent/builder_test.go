package agent

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

func TestBuildUnconfiguredIsNull(t *testing.T) {
	is := is.New(t)
	a := NewBuilder().Build()
	is.Equal(a.Policy.Name(), policy.Null)
	is.Equal(a.Learner.Name(), learning.Null)
	act, err := a.SelectAction(state.Of(0), []int{0, 1})
	is.NoErr(err)
	is.Equal(act, transition.NoAction)
	a.Observe(transition.Start(state.Of(0)))
	a.FinalizeEpisode()
	is.Equal(a.Values().Len(), 0)
}

func TestConfigureUnknownName(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	err := b.Configure("Clairvoyant", learning.TDZero)
	is.True(errors.Is(err, ErrInvalidAgentType))
	err = b.Configure(policy.EGreedy, "Osmosis")
	is.True(errors.Is(err, ErrInvalidAgentType))
	// nothing was half-applied
	is.Equal(b.PolicyName(), policy.Null)
	is.Equal(b.LearningName(), learning.Null)

	is.True(errors.Is(b.Add("nope"), ErrInvalidAgentType))
}

func TestConfigureTwoPolicies(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	err := b.Configure(policy.EGreedy, policy.Random)
	is.True(errors.Is(err, ErrInvalidAgentType))

	is.NoErr(b.Add(policy.EGreedy))
	err = b.Add(policy.Random)
	is.True(errors.Is(err, ErrTooManyCapabilities))
	is.Equal(b.PolicyName(), policy.EGreedy)
}

func TestAddThirdCapability(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	is.NoErr(b.Configure(policy.EGreedy, learning.TDZero))
	is.True(errors.Is(b.Add(learning.SampleAveraging), ErrTooManyCapabilities))
	is.True(errors.Is(b.Configure(policy.Random, ""), ErrTooManyCapabilities))
	is.Equal(b.PolicyName(), policy.EGreedy)
	is.Equal(b.LearningName(), learning.TDZero)
}

func TestResetKeepsBuiltAgents(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	is.NoErr(b.Configure(policy.Random, learning.SampleAveraging))
	a := b.Build()
	b.Reset()
	is.Equal(b.PolicyName(), policy.Null)
	is.Equal(a.Name(), policy.Random+learning.SampleAveraging)
	is.NoErr(b.Configure(policy.EGreedy, learning.TDOne))
}

func TestEveryRegisteredPairBuilds(t *testing.T) {
	is := is.New(t)
	for _, p := range PolicyNames() {
		for _, l := range LearningNames() {
			b := NewBuilder()
			is.NoErr(b.Configure(p, l))
			a := b.BuildWithSeed(1)
			is.Equal(a.Policy.Name(), p)
			is.Equal(a.Learner.Name(), l)
		}
	}
	is.Equal(len(PolicyNames()), 7)
	is.Equal(len(LearningNames()), 7)
}

func TestHalvesShareMemory(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	is.NoErr(b.Configure(policy.EGreedy, learning.SampleAveraging))
	args := DefaultArgs()
	args.ExploratoryRate = 0
	b.SetArgs(args)
	a := b.BuildWithSeed(9)

	origin := state.Of(5)
	// teach the agent that action 1 from origin leads to a rewarding state
	a.Observe(transition.Start(origin))
	a.Observe(transition.New(state.Of(1), 1, 10))
	a.FinalizeEpisode()
	a.Observe(transition.Start(origin))
	a.Observe(transition.New(state.Of(0), 0, -1))
	a.FinalizeEpisode()

	is.True(a.Policy.(*policy.EGreedyPolicy) != nil)
	act, err := a.SelectAction(origin, []int{0, 1})
	is.NoErr(err)
	is.Equal(act, 1)
	is.Equal(a.Memory().Model.Table, a.Transitions())
}

func TestBuildCopiesSeedTables(t *testing.T) {
	is := is.New(t)
	vals := value.NewTable()
	vals.Set(state.Of(1), value.Value{Estimate: 1, VisitCount: 1})
	b := NewBuilder()
	is.NoErr(b.Configure("", learning.SampleAveraging))
	args := b.Args()
	args.Values = vals
	b.SetArgs(args)

	a1, a2 := b.Build(), b.Build()
	a1.Observe(transition.New(state.Of(1), 0, 3))
	is.Equal(vals.Get(state.Of(1)).VisitCount, 1.0)
	is.Equal(a2.Values().Get(state.Of(1)).VisitCount, 1.0)
	is.Equal(a1.Values().Get(state.Of(1)).VisitCount, 2.0)
}

func TestSeedReplays(t *testing.T) {
	is := is.New(t)
	b := NewBuilder()
	is.NoErr(b.Add(policy.Random))
	run := func() []int {
		a := b.BuildWithSeed(42)
		var out []int
		for i := 0; i < 20; i++ {
			act, _ := a.SelectAction(state.Of(0), []int{0, 1, 2, 3})
			out = append(out, act)
		}
		return out
	}
	is.Equal(run(), run())
}
