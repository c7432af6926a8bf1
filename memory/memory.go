// Package memory is the state shared between the two halves of an agent:
// the learning rule writes to it and the policy reads from it.
package memory

import (
	"math/rand/v2"

	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

// Memory bundles everything an agent knows. A single Memory is handed to
// both the policy and the learning rule when an agent is built so the two
// always see the same tables.
type Memory struct {
	Values      *value.Table
	Transitions *transition.Table
	Trajectory  *transition.Trajectory
	Model       *transition.Model
	Rand        *rand.Rand
	Seed        uint64
}

// Options controls New. Nil tables are replaced by empty ones.
type Options struct {
	Values      *value.Table
	Transitions *transition.Table
	Seed        uint64
	Afterstate  transition.Afterstate
	// InitialEstimate, when non-zero, becomes the value table's prior.
	InitialEstimate float64
}

// New builds a Memory. The random stream is a ChaCha8 generator keyed from
// Seed, so agents built with the same seed replay the same draws.
func New(opts Options) *Memory {
	vals := opts.Values
	if vals == nil {
		vals = value.NewTable()
	}
	if opts.InitialEstimate != 0 {
		vals.Prior = value.Value{Estimate: opts.InitialEstimate}
	}
	trans := opts.Transitions
	if trans == nil {
		trans = transition.NewTable()
	}
	rng := NewRand(opts.Seed)
	model := transition.NewModel(trans, rng)
	model.Fallback = opts.Afterstate
	return &Memory{
		Values:      vals,
		Transitions: trans,
		Trajectory:  transition.NewTrajectory(0),
		Model:       model,
		Rand:        rng,
		Seed:        opts.Seed,
	}
}

// NewRand returns the generator used for a given seed.
func NewRand(seed uint64) *rand.Rand {
	var key [32]byte
	for i := 0; i < 4; i++ {
		s := seed + uint64(i)*0x9e3779b97f4a7c15
		for j := 0; j < 8; j++ {
			key[i*8+j] = byte(s >> (8 * j))
		}
	}
	return rand.New(rand.NewChaCha8(key))
}

// Merge folds src's value and transition tables into m.
func (m *Memory) Merge(src *Memory) {
	m.Values.Merge(src.Values)
	m.Transitions.Merge(src.Transitions)
}
