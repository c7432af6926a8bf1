package env

import (
	"fmt"
	"math/rand/v2"

	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/state"
)

// Bandit is a k-armed Gaussian testbed. Each arm's mean is drawn from a
// standard normal when the bandit is made; pulling an arm pays its mean
// plus unit-variance noise. The observation is the arm last pulled.
// A bandit never finishes on its own, so it has to be run for a fixed
// number of steps.
//
// With a non-zero Drift the testbed is nonstationary: after every pull each
// arm's mean takes an independent N(0, Drift) step. The walk carries over
// Reset.
type Bandit struct {
	Means []float64
	Drift float64
	rng   *rand.Rand
	last  int
}

func NewBandit(arms int, seed uint64) *Bandit {
	rng := memory.NewRand(seed)
	means := make([]float64, arms)
	for i := range means {
		means[i] = rng.NormFloat64()
	}
	return &Bandit{Means: means, rng: rng}
}

func (b *Bandit) Reset() state.State {
	b.last = 0
	return state.Of(b.last)
}

func (b *Bandit) Step(action int) (Outcome, error) {
	if action < 0 || action >= len(b.Means) {
		return Outcome{}, fmt.Errorf("%w: arm %d", ErrIllegalAction, action)
	}
	b.last = action
	reward := b.Means[action] + b.rng.NormFloat64()
	if b.Drift > 0 {
		for i := range b.Means {
			b.Means[i] += b.Drift * b.rng.NormFloat64()
		}
	}
	return Outcome{
		State:  state.Of(action),
		Reward: reward,
		Info:   Info{Status: InProgress},
	}, nil
}

func (b *Bandit) AvailableActions(state.State) []int {
	out := make([]int, len(b.Means))
	for i := range out {
		out[i] = i
	}
	return out
}

// Afterstate: pulling an arm always lands on that arm's state.
func (b *Bandit) Afterstate(_ state.State, action int) state.State {
	return state.Of(action)
}

// BestArm is the arm with the highest mean.
func (b *Bandit) BestArm() int {
	best := 0
	for i, m := range b.Means {
		if m > b.Means[best] {
			best = i
		}
	}
	return best
}
