// Package agent composes a policy and a learning rule into a runnable
// agent, and merges what separately trained agents have learned.
package agent

import (
	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

// Agent is one policy and one learning rule sharing a single Memory.
type Agent struct {
	Policy  policy.Policy
	Learner learning.Rule
	mem     *memory.Memory

	// what the agent was built from, for Clone
	policyName   string
	learningName string
	args         Args
}

// SelectAction asks the policy for an action.
func (a *Agent) SelectAction(s state.State, actions []int) (int, error) {
	return a.Policy.SelectAction(s, actions)
}

// Observe hands a transition to the learning rule.
func (a *Agent) Observe(t transition.Transition) {
	a.Learner.Observe(t)
}

// FinalizeEpisode tells both capabilities the episode is over.
func (a *Agent) FinalizeEpisode() {
	a.Learner.FinalizeEpisode()
	if ea, ok := a.Policy.(policy.EpisodeAware); ok {
		ea.EndEpisode()
	}
}

func (a *Agent) Values() *value.Table {
	return a.mem.Values
}

func (a *Agent) Transitions() *transition.Table {
	return a.mem.Transitions
}

func (a *Agent) Memory() *memory.Memory {
	return a.mem
}

// Name is the policy name followed by the learning rule name, e.g.
// EGreedyTemporalDifferenceZero.
func (a *Agent) Name() string {
	return a.Policy.Name() + a.Learner.Name()
}

// Merge folds src's knowledge into a. See Merge.
func (a *Agent) Merge(src *Agent) {
	Merge(a, src)
}

// Clone builds a new agent of the same kind with its own copy of a's
// tables and the same seed. Policy and learning rule bookkeeping (decayed
// epsilon, the open episode) starts fresh.
func (a *Agent) Clone() *Agent {
	b := &Builder{policy: a.policyName, learning: a.learningName, args: a.args}
	b.args.Values = a.mem.Values
	b.args.Transitions = a.mem.Transitions
	return b.BuildWithSeed(a.mem.Seed)
}
