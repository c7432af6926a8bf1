// Package config holds the settings for the tabrl command. Values come from
// flags, TABRL_* environment variables and an optional yaml file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/tabrl/agent"
	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/policy"
)

const (
	ConfigPolicy               = "policy"
	ConfigLearning             = "learning"
	ConfigLearningRate         = "learning-rate"
	ConfigLearningRateSchedule = "learning-rate-schedule"
	ConfigUnbiased             = "unbiased"
	ConfigDiscountRate         = "discount-rate"
	ConfigExploratoryRate      = "exploratory-rate"
	ConfigDecayRate            = "decay-rate"
	ConfigDecayWindow          = "decay-window"
	ConfigConfidence           = "confidence"
	ConfigConfidenceFloor      = "confidence-floor"
	ConfigConfidenceDecay      = "confidence-decay"
	ConfigInitialEstimate      = "initial-estimate"
	ConfigEpisodes             = "episodes"
	ConfigMaxSteps             = "max-steps"
	ConfigWorkers              = "workers"
	ConfigReduce               = "reduce"
	ConfigEnv                  = "env"
	ConfigBanditArms           = "bandit-arms"
	ConfigBanditDrift          = "bandit-drift"
	ConfigChainLength          = "chain-length"
	ConfigPolicyFile           = "policy-file"
	ConfigOut                  = "out"
	ConfigSeed                 = "seed"
	ConfigX                    = "x"
	ConfigO                    = "o"
	ConfigDebug                = "debug"
	ConfigCPUProfile           = "cpu-profile"
	ConfigFile                 = "config"
)

// Learning rate schedules.
const (
	ScheduleConstant     = "constant"
	ScheduleInverseCount = "inverse-count"
)

var ErrInvalidSetting = errors.New("invalid setting")

type Config struct {
	*viper.Viper
	args []string
}

func flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tabrl", pflag.ContinueOnError)
	fs.String(ConfigPolicy, policy.EGreedy, "policy name")
	fs.String(ConfigLearning, learning.TDZero, "learning rule name")
	fs.Float64(ConfigLearningRate, 0.5, "constant learning rate")
	fs.String(ConfigLearningRateSchedule, ScheduleConstant, "constant or inverse-count")
	fs.Bool(ConfigUnbiased, false, "use the unbiased constant step size for TD(0)")
	fs.Float64(ConfigDiscountRate, 1, "discount rate")
	fs.Float64(ConfigExploratoryRate, 0.1, "exploratory rate for the e-greedy policies")
	fs.Float64(ConfigDecayRate, 0.01, "exploratory rate decay")
	fs.Int(ConfigDecayWindow, 10, "greedy picks without decay before eps resets")
	fs.Float64(ConfigConfidence, 2, "UCB confidence")
	fs.Float64(ConfigConfidenceFloor, 0.1, "lowest UCB confidence when decaying")
	fs.Float64(ConfigConfidenceDecay, 0.001, "UCB confidence decay")
	fs.Float64(ConfigInitialEstimate, 0, "estimate every state starts at, 5 is optimistic for bandits")
	fs.Int(ConfigEpisodes, 1000, "episodes per worker")
	fs.Int(ConfigMaxSteps, 0, "steps per episode, 0 runs to the end (bandits default to 1000)")
	fs.Int(ConfigWorkers, 0, "parallel workers, 0 means one per CPU")
	fs.String(ConfigReduce, "sequential", "how to merge workers: sequential or tree")
	fs.String(ConfigEnv, "tictactoe", "environment: tictactoe, bandit or chain")
	fs.Int(ConfigBanditArms, 10, "arms of the bandit environment")
	fs.Float64(ConfigBanditDrift, 0, "std dev of the per-step random walk of each arm's mean")
	fs.Int(ConfigChainLength, 5, "length of the chain environment")
	fs.String(ConfigPolicyFile, "", "previously saved tables to start from")
	fs.String(ConfigOut, "", "where to save learned tables (.json, .yaml or .db)")
	fs.Uint64(ConfigSeed, 0, "random seed, 0 picks one")
	fs.String(ConfigX, "smart", "X player for play: human, base or smart")
	fs.String(ConfigO, "human", "O player for play: human, base or smart")
	fs.Bool(ConfigDebug, false, "debug logging")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.String(ConfigFile, "", "yaml config file")
	return fs
}

// Load parses args and the environment. Arguments that are not flags are
// kept and available through Args.
func (c *Config) Load(args []string) error {
	fs := flags()
	if err := fs.Parse(args); err != nil {
		return err
	}
	v := viper.New()
	v.SetEnvPrefix("tabrl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	if f := v.GetString(ConfigFile); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
	}
	c.Viper = v
	c.args = fs.Args()
	return c.Validate()
}

// DefaultConfig has every setting at its default. The environment is not
// consulted.
func DefaultConfig() *Config {
	fs := flags()
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		panic(err)
	}
	return &Config{Viper: v}
}

// Args are the positional arguments left over after flags.
func (c *Config) Args() []string {
	return c.args
}

// Validate checks the settings that have a fixed set of values.
func (c *Config) Validate() error {
	if p := c.GetString(ConfigPolicy); !agent.IsPolicy(p) {
		return fmt.Errorf("%w: policy %q (have %v)", agent.ErrInvalidAgentType, p, agent.PolicyNames())
	}
	if l := c.GetString(ConfigLearning); !agent.IsLearning(l) {
		return fmt.Errorf("%w: learning %q (have %v)", agent.ErrInvalidAgentType, l, agent.LearningNames())
	}
	checks := []struct {
		key     string
		allowed []string
	}{
		{ConfigLearningRateSchedule, []string{ScheduleConstant, ScheduleInverseCount}},
		{ConfigReduce, []string{"sequential", "tree"}},
		{ConfigEnv, []string{"tictactoe", "bandit", "chain"}},
		{ConfigX, []string{"human", "base", "smart"}},
		{ConfigO, []string{"human", "base", "smart"}},
	}
	for _, ch := range checks {
		val := c.GetString(ch.key)
		ok := false
		for _, a := range ch.allowed {
			ok = ok || val == a
		}
		if !ok {
			return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidSetting, ch.key, ch.allowed, val)
		}
	}
	if c.GetInt(ConfigEpisodes) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, ConfigEpisodes)
	}
	if c.GetFloat64(ConfigBanditDrift) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, ConfigBanditDrift)
	}
	return nil
}

// SanitizedSettings is every setting that has a value, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	out := map[string]any{}
	for k, v := range c.AllSettings() {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// AgentArgs maps the settings onto builder arguments. Tables, the
// environment model and human input are left for the caller.
func (c *Config) AgentArgs() agent.Args {
	args := agent.DefaultArgs()
	args.LearningRate = c.GetFloat64(ConfigLearningRate)
	if c.GetString(ConfigLearningRateSchedule) == ScheduleInverseCount {
		args.Rate = learning.InverseCount
	}
	args.Unbiased = c.GetBool(ConfigUnbiased)
	args.DiscountRate = c.GetFloat64(ConfigDiscountRate)
	args.ExploratoryRate = c.GetFloat64(ConfigExploratoryRate)
	args.DecayRate = c.GetFloat64(ConfigDecayRate)
	args.DecayWindow = c.GetInt(ConfigDecayWindow)
	args.Confidence = c.GetFloat64(ConfigConfidence)
	args.ConfidenceFloor = c.GetFloat64(ConfigConfidenceFloor)
	args.ConfidenceDecay = c.GetFloat64(ConfigConfidenceDecay)
	args.InitialEstimate = c.GetFloat64(ConfigInitialEstimate)
	args.Seed = c.GetUint64(ConfigSeed)
	return args
}
