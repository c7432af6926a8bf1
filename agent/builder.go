package agent

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/policy"
)

// Builder assembles agents out of one policy and one learning rule. Slots
// that were never filled hold the null capability, so building an
// unconfigured Builder gives an agent that does nothing.
type Builder struct {
	policy   string
	learning string
	args     Args
}

// NewBuilder returns an empty builder with default arguments.
func NewBuilder() *Builder {
	return &Builder{
		policy:   policy.Null,
		learning: learning.Null,
		args:     DefaultArgs(),
	}
}

// Add puts the named capability into its slot. It fails if the name is not
// registered or the slot already holds a non-null capability.
func (b *Builder) Add(name string) error {
	switch {
	case IsPolicy(name):
		if b.policy != policy.Null {
			return fmt.Errorf("%w: policy is already %s, cannot add %s",
				ErrTooManyCapabilities, b.policy, name)
		}
		b.policy = name
	case IsLearning(name):
		if b.learning != learning.Null {
			return fmt.Errorf("%w: learning rule is already %s, cannot add %s",
				ErrTooManyCapabilities, b.learning, name)
		}
		b.learning = name
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAgentType, name)
	}
	return nil
}

// Configure fills both slots at once. Either name may be empty to leave
// that slot alone. Nothing changes if any part fails.
func (b *Builder) Configure(policyName, learningName string) error {
	if policyName != "" && !IsPolicy(policyName) {
		return fmt.Errorf("%w: %q is not a policy (have %v)", ErrInvalidAgentType,
			policyName, PolicyNames())
	}
	if learningName != "" && !IsLearning(learningName) {
		return fmt.Errorf("%w: %q is not a learning rule (have %v)", ErrInvalidAgentType,
			learningName, LearningNames())
	}
	saved := *b
	for _, name := range []string{policyName, learningName} {
		if name == "" {
			continue
		}
		if err := b.Add(name); err != nil {
			*b = saved
			return err
		}
	}
	return nil
}

// SetArgs replaces the constructor arguments.
func (b *Builder) SetArgs(args Args) {
	b.args = args
}

// Args returns the current constructor arguments.
func (b *Builder) Args() Args {
	return b.args
}

// Reset puts both slots back to null. Agents already built are unaffected.
func (b *Builder) Reset() {
	b.policy = policy.Null
	b.learning = learning.Null
}

// PolicyName is the name in the policy slot.
func (b *Builder) PolicyName() string { return b.policy }

// LearningName is the name in the learning slot.
func (b *Builder) LearningName() string { return b.learning }

// Build makes a new agent using the configured seed, or a random seed if
// none was set.
func (b *Builder) Build() *Agent {
	seed := b.args.Seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64) + 1
	}
	return b.BuildWithSeed(seed)
}

// BuildWithSeed makes a new agent whose random stream is keyed by seed.
// Both capabilities are handed the same Memory.
func (b *Builder) BuildWithSeed(seed uint64) *Agent {
	opts := memory.Options{
		Seed:            seed,
		Afterstate:      b.args.Afterstate,
		InitialEstimate: b.args.InitialEstimate,
	}
	if b.args.Values != nil {
		opts.Values = b.args.Values.Clone()
	}
	if b.args.Transitions != nil {
		opts.Transitions = b.args.Transitions.Clone()
	}
	mem := memory.New(opts)
	a := &Agent{
		Policy:  policies[b.policy](mem, b.args),
		Learner: learners[b.learning](mem, b.args),
		mem:     mem,

		policyName:   b.policy,
		learningName: b.learning,
		args:         b.args,
	}
	log.Debug().Str("policy", b.policy).Str("learning", b.learning).
		Uint64("seed", seed).Msg("built-agent")
	return a
}
