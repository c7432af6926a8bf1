package policy

import (
	"math"

	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
)

// UCBPolicy ranks actions by
//
//	V(next) + c * sqrt(ln(t) / N(a))
//
// where t counts selections and N(a) counts how often action a was picked.
// Both start at 1. When Decay is non-zero, c shrinks by exp(-Decay) after
// every pick but never below Floor.
type UCBPolicy struct {
	greedy
	Confidence float64
	Floor      float64
	Decay      float64

	time   float64
	counts map[int]float64
	name   string
}

func NewUCB(mem *memory.Memory, confidence float64) *UCBPolicy {
	return &UCBPolicy{
		greedy:     greedy{mem: mem},
		Confidence: confidence,
		time:       1,
		counts:     make(map[int]float64),
		name:       UpperConfidenceBound,
	}
}

func NewDecayingUCB(mem *memory.Memory, confidence, floor, decay float64) *UCBPolicy {
	p := NewUCB(mem, confidence)
	p.Floor = floor
	p.Decay = decay
	p.name = DecayingUpperConfidenceBound
	return p
}

func (p *UCBPolicy) Name() string { return p.name }

func (p *UCBPolicy) count(a int) float64 {
	if n, ok := p.counts[a]; ok {
		return n
	}
	return 1
}

// Bound is the exploration bonus for a right now.
func (p *UCBPolicy) Bound(a int) float64 {
	return p.Confidence * math.Sqrt(math.Log(p.time)/p.count(a))
}

func (p *UCBPolicy) SelectAction(s state.State, actions []int) (int, error) {
	if len(actions) == 0 {
		return transition.NoAction, ErrNoActions
	}
	sc := p.scores(s, actions)
	bestIdx := 0
	for i, a := range actions {
		sc[i] += p.Bound(a)
		if sc[i] > sc[bestIdx] {
			bestIdx = i
		}
	}
	a := actions[bestIdx]
	p.counts[a] = p.count(a) + 1
	p.time++
	if p.Decay != 0 {
		p.Confidence = max(p.Floor, p.Confidence*math.Exp(-p.Decay))
	}
	return a, nil
}
