package agent

import (
	"io"

	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

// Args are the constructor arguments shared by both halves of an agent.
// Each capability reads the fields it cares about and ignores the rest.
type Args struct {
	// LearningRate is the constant step size. Rate, if set, takes
	// precedence for rules that accept a schedule.
	LearningRate float64
	Rate         learning.Rate
	DiscountRate float64
	// Unbiased turns on the constant-step trace correction for TD(0).
	Unbiased bool

	ExploratoryRate float64
	DecayRate       float64
	DecayWindow     int

	Confidence      float64
	ConfidenceFloor float64
	ConfidenceDecay float64

	// Values and Transitions seed the agent with previously learned
	// tables. Each built agent gets its own copy.
	Values      *value.Table
	Transitions *transition.Table
	// InitialEstimate is the estimate a state starts at before its first
	// update. A high value makes greedy policies try everything once.
	InitialEstimate float64
	// Afterstate is an optional environment model consulted when the
	// transition table has nothing for a (state, action).
	Afterstate transition.Afterstate

	// Seed fixes the agent's random stream. Zero picks a random seed.
	Seed uint64

	// Input and Output are used by the human policy.
	Input  policy.LineReader
	Output io.Writer
}

// DefaultArgs mirrors the defaults of the command line driver.
func DefaultArgs() Args {
	return Args{
		LearningRate:    0.5,
		DiscountRate:    1,
		ExploratoryRate: 0.1,
		DecayRate:       0.01,
		DecayWindow:     10,
		Confidence:      2,
		ConfidenceFloor: 0.1,
		ConfidenceDecay: 0.001,
	}
}

func (a Args) rate() learning.Rate {
	if a.Rate != nil {
		return a.Rate
	}
	return learning.Constant(a.LearningRate)
}
