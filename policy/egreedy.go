package policy

import (
	"math"

	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
)

// EGreedyPolicy explores uniformly with probability Epsilon and otherwise
// takes the greedy action.
type EGreedyPolicy struct {
	greedy
	Epsilon float64
}

func NewEGreedy(mem *memory.Memory, epsilon float64) *EGreedyPolicy {
	return &EGreedyPolicy{greedy: greedy{mem: mem}, Epsilon: epsilon}
}

func (p *EGreedyPolicy) Name() string { return EGreedy }

func (p *EGreedyPolicy) SelectAction(s state.State, actions []int) (int, error) {
	if len(actions) == 0 {
		return transition.NoAction, ErrNoActions
	}
	if p.mem.Rand.Float64() < p.Epsilon {
		return actions[p.mem.Rand.IntN(len(actions))], nil
	}
	a, _ := p.best(s, actions)
	return a, nil
}

// DecayingEGreedyPolicy is epsilon-greedy with a heuristic schedule on
// epsilon. Every greedy pick whose value falls below the best greedy value
// of the previous episode multiplies epsilon by exp(-DecayRate). After
// Window greedy picks in a row that do not, epsilon goes back to Initial.
type DecayingEGreedyPolicy struct {
	greedy
	Initial   float64
	Epsilon   float64
	DecayRate float64
	Window    int

	prevBest float64
	curBest  float64
	misses   int
}

func NewDecayingEGreedy(mem *memory.Memory, epsilon, decayRate float64, window int) *DecayingEGreedyPolicy {
	if window <= 0 {
		window = 1
	}
	return &DecayingEGreedyPolicy{
		greedy:    greedy{mem: mem},
		Initial:   epsilon,
		Epsilon:   epsilon,
		DecayRate: decayRate,
		Window:    window,
		prevBest:  math.Inf(-1),
		curBest:   math.Inf(-1),
	}
}

func (p *DecayingEGreedyPolicy) Name() string { return DecayingEGreedy }

func (p *DecayingEGreedyPolicy) SelectAction(s state.State, actions []int) (int, error) {
	if len(actions) == 0 {
		return transition.NoAction, ErrNoActions
	}
	if p.mem.Rand.Float64() < p.Epsilon {
		return actions[p.mem.Rand.IntN(len(actions))], nil
	}
	a, v := p.best(s, actions)
	p.curBest = max(p.curBest, v)
	if v < p.prevBest {
		p.Epsilon *= math.Exp(-p.DecayRate)
		p.misses = 0
	} else {
		p.misses++
		if p.misses >= p.Window {
			p.Epsilon = p.Initial
			p.misses = 0
		}
	}
	return a, nil
}

// EndEpisode rolls this episode's best greedy value over as the bar for the
// next one.
func (p *DecayingEGreedyPolicy) EndEpisode() {
	p.prevBest = p.curBest
	p.curBest = math.Inf(-1)
}
