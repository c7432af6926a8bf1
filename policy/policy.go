// Package policy contains the action-selection strategies. Policies that
// need value information read it from the agent's shared memory; they never
// own or write the tables.
package policy

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
)

// Registered policy names.
const (
	Null                         = "NullPolicy"
	Random                       = "Random"
	EGreedy                      = "EGreedy"
	DecayingEGreedy              = "DecayingEGreedy"
	UpperConfidenceBound         = "UpperConfidenceBound"
	DecayingUpperConfidenceBound = "DecayingUpperConfidenceBound"
	Human                        = "Human"
)

var (
	// ErrQuit is returned when a human asks to stop. Nothing else should be
	// called on the agent afterwards.
	ErrQuit = errors.New("user quit")
	// ErrNoActions is returned when asked to choose from an empty action set.
	ErrNoActions = errors.New("no available actions")
)

// Policy picks one of the available actions for a state.
type Policy interface {
	Name() string
	SelectAction(s state.State, actions []int) (int, error)
}

// EpisodeAware policies want to know when an episode ends.
type EpisodeAware interface {
	EndEpisode()
}

// NullPolicy never picks anything. It fills the policy slot of agents that
// only learn.
type NullPolicy struct{}

func (NullPolicy) Name() string { return Null }

func (NullPolicy) SelectAction(state.State, []int) (int, error) {
	return transition.NoAction, nil
}

// greedy ranks actions by the estimated value of the state the transition
// model predicts each one leads to.
type greedy struct {
	mem *memory.Memory
}

// scores simulates each action once.
func (g greedy) scores(s state.State, actions []int) []float64 {
	out := make([]float64, len(actions))
	for i, a := range actions {
		next := g.mem.Model.Predict(s, a)
		out[i] = g.mem.Values.Estimate(next)
	}
	return out
}

// best returns the highest-scoring action and its score. Ties go to the
// earliest action in the given order.
func (g greedy) best(s state.State, actions []int) (int, float64) {
	sc := g.scores(s, actions)
	idx := floats.MaxIdx(sc)
	return actions[idx], sc[idx]
}

// RandomPolicy picks uniformly among the available actions.
type RandomPolicy struct {
	mem *memory.Memory
}

func NewRandom(mem *memory.Memory) *RandomPolicy {
	return &RandomPolicy{mem: mem}
}

func (p *RandomPolicy) Name() string { return Random }

func (p *RandomPolicy) SelectAction(s state.State, actions []int) (int, error) {
	if len(actions) == 0 {
		return transition.NoAction, ErrNoActions
	}
	return actions[p.mem.Rand.IntN(len(actions))], nil
}
