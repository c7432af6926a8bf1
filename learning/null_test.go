package learning_test

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tabrl/agent"
	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
)

func playOut(a *agent.Agent) {
	a.Observe(transition.Start(state.Of(0)))
	a.Observe(transition.New(state.Of(1), 0, 1))
	a.Observe(transition.New(state.Of(2), 1, 2))
	a.FinalizeEpisode()
}

func TestNullRuleDoesNothing(t *testing.T) {
	is := is.New(t)
	b := agent.NewBuilder()
	is.NoErr(b.Configure(policy.EGreedy, learning.Null))
	a := b.BuildWithSeed(1)
	is.Equal(a.Learner.Name(), learning.Null)

	playOut(a)
	is.Equal(a.Values().Len(), 0)
	is.Equal(a.Transitions().Len(), 0)
	is.Equal(a.Memory().Trajectory.Len(), 0)

	// the same episode does reach the tables through a real rule
	b.Reset()
	is.NoErr(b.Configure(policy.EGreedy, learning.SampleAveraging))
	learner := b.BuildWithSeed(1)
	playOut(learner)
	is.Equal(learner.Values().Len(), 2)
	is.Equal(learner.Transitions().Len(), 2)
}
