package agent

import (
	"slices"

	"github.com/samber/lo"

	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/policy"
)

type policyCtor func(mem *memory.Memory, args Args) policy.Policy

type learningCtor func(mem *memory.Memory, args Args) learning.Rule

// The registry is closed: these are all the capabilities there are.
var policies = map[string]policyCtor{
	policy.Null: func(*memory.Memory, Args) policy.Policy {
		return policy.NullPolicy{}
	},
	policy.Random: func(mem *memory.Memory, _ Args) policy.Policy {
		return policy.NewRandom(mem)
	},
	policy.EGreedy: func(mem *memory.Memory, a Args) policy.Policy {
		return policy.NewEGreedy(mem, a.ExploratoryRate)
	},
	policy.DecayingEGreedy: func(mem *memory.Memory, a Args) policy.Policy {
		return policy.NewDecayingEGreedy(mem, a.ExploratoryRate, a.DecayRate, a.DecayWindow)
	},
	policy.UpperConfidenceBound: func(mem *memory.Memory, a Args) policy.Policy {
		return policy.NewUCB(mem, a.Confidence)
	},
	policy.DecayingUpperConfidenceBound: func(mem *memory.Memory, a Args) policy.Policy {
		return policy.NewDecayingUCB(mem, a.Confidence, a.ConfidenceFloor, a.ConfidenceDecay)
	},
	policy.Human: func(_ *memory.Memory, a Args) policy.Policy {
		return policy.NewHuman(a.Input, a.Output)
	},
}

var learners = map[string]learningCtor{
	learning.Null: func(*memory.Memory, Args) learning.Rule {
		return learning.NullRule{}
	},
	learning.SampleAveraging: func(mem *memory.Memory, _ Args) learning.Rule {
		return learning.NewSampleAveraging(mem)
	},
	learning.WeightedAveraging: func(mem *memory.Memory, a Args) learning.Rule {
		return learning.NewWeightedAveraging(mem, a.LearningRate)
	},
	learning.TDZero: func(mem *memory.Memory, a Args) learning.Rule {
		r := learning.NewTDZero(mem, a.rate(), a.DiscountRate)
		r.Unbiased = a.Unbiased
		return r
	},
	learning.TDOne: func(mem *memory.Memory, a Args) learning.Rule {
		return learning.NewTDOne(mem, a.DiscountRate)
	},
	learning.TDAveraging: func(mem *memory.Memory, a Args) learning.Rule {
		return learning.NewTDAveraging(mem, a.DiscountRate)
	},
	learning.ImplicitCountTD: func(mem *memory.Memory, a Args) learning.Rule {
		return learning.NewImplicitCountTD(mem, a.DiscountRate)
	},
}

// PolicyNames lists the registered policies.
func PolicyNames() []string {
	names := lo.Keys(policies)
	slices.Sort(names)
	return names
}

// LearningNames lists the registered learning rules.
func LearningNames() []string {
	names := lo.Keys(learners)
	slices.Sort(names)
	return names
}

// IsPolicy reports whether name is a registered policy.
func IsPolicy(name string) bool {
	_, ok := policies[name]
	return ok
}

// IsLearning reports whether name is a registered learning rule.
func IsLearning(name string) bool {
	_, ok := learners[name]
	return ok
}
