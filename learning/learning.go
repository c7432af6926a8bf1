// Package learning contains the tabular learning rules. A rule turns the
// transitions an agent observes into updates of its value table; it has no
// idea which policy is reading those values.
package learning

import (
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/transition"
)

// Registered rule names.
const (
	Null              = "NullLearning"
	SampleAveraging   = "SampleAveraging"
	WeightedAveraging = "WeightedAveraging"
	TDZero            = "TemporalDifferenceZero"
	TDOne             = "TemporalDifferenceOne"
	TDAveraging       = "TemporalDifferenceAveraging"
	ImplicitCountTD   = "ImplicitCountTD"
)

// Rule is a learning rule.
type Rule interface {
	Name() string
	// Observe feeds the rule the next transition of the current episode.
	Observe(t transition.Transition)
	// FinalizeEpisode is called once the episode has ended.
	FinalizeEpisode()
}

// Rate maps the visit count of the state being updated to a step size.
type Rate func(count float64) float64

// Constant is a fixed step size.
func Constant(alpha float64) Rate {
	return func(float64) float64 { return alpha }
}

// InverseCount is the step size 1/(n+1).
func InverseCount(count float64) float64 {
	return 1 / (count + 1)
}

// base is embedded by every rule that keeps a trajectory.
type base struct {
	mem *memory.Memory
}

func newBase(mem *memory.Memory, window int) base {
	mem.Trajectory.SetWindow(window)
	return base{mem: mem}
}

// push buffers t and, if there is a predecessor in this episode, records the
// observed (predecessor state, action) -> state step in the frequency table.
func (b *base) push(t transition.Transition) (prev transition.Transition, ok bool) {
	prev, ok = b.mem.Trajectory.Back(0)
	b.mem.Trajectory.Push(t)
	if ok {
		b.mem.Transitions.Record(prev.State, t.Action, t.State)
	}
	return prev, ok
}

func (b *base) FinalizeEpisode() {
	b.mem.Trajectory.Clear()
}

// NullRule learns nothing. It fills the learning slot of agents that only
// need a policy.
type NullRule struct{}

func (NullRule) Name() string { return Null }

func (NullRule) Observe(transition.Transition) {}

func (NullRule) FinalizeEpisode() {}
