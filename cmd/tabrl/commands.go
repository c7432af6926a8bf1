package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	"github.com/chzyer/readline"
	"lukechampine.com/frand"

	"github.com/domino14/tabrl/agent"
	"github.com/domino14/tabrl/config"
	"github.com/domino14/tabrl/env"
	"github.com/domino14/tabrl/learning"
	"github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/stats"
	"github.com/domino14/tabrl/store"
	"github.com/domino14/tabrl/trainer"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

const defaultBanditSteps = 1000

// environment returns the factory for the configured environment and the
// per-episode step limit to use with it.
func environment(cfg *config.Config) (env.Factory, int) {
	maxSteps := cfg.GetInt(config.ConfigMaxSteps)
	switch cfg.GetString(config.ConfigEnv) {
	case "bandit":
		arms := cfg.GetInt(config.ConfigBanditArms)
		// every worker faces the same arms
		seed := cfg.GetUint64(config.ConfigSeed)
		if seed == 0 {
			seed = frand.Uint64n(math.MaxUint64) + 1
		}
		if maxSteps <= 0 {
			maxSteps = defaultBanditSteps
		}
		drift := cfg.GetFloat64(config.ConfigBanditDrift)
		return func(uint64) env.Environment {
			b := env.NewBandit(arms, seed)
			b.Drift = drift
			return b
		}, maxSteps
	case "chain":
		length := cfg.GetInt(config.ConfigChainLength)
		return func(uint64) env.Environment { return env.NewChain(length, 1) }, maxSteps
	}
	return func(uint64) env.Environment { return env.NewTicTacToe() }, maxSteps
}

func loadSeedTables(ctx context.Context, cfg *config.Config, args *agent.Args) error {
	f := cfg.GetString(config.ConfigPolicyFile)
	if f == "" {
		return nil
	}
	vals, trans, err := store.LoadFile(ctx, f)
	if err != nil {
		return err
	}
	args.Values, args.Transitions = vals, trans
	return nil
}

func train(ctx context.Context, cfg *config.Config) error {
	b := agent.NewBuilder()
	if err := b.Configure(cfg.GetString(config.ConfigPolicy), cfg.GetString(config.ConfigLearning)); err != nil {
		return err
	}
	args := cfg.AgentArgs()
	if err := loadSeedTables(ctx, cfg, &args); err != nil {
		return err
	}
	b.SetArgs(args)

	factory, maxSteps := environment(cfg)
	rep, err := trainer.Train(ctx, b, factory, trainer.Options{
		Episodes: cfg.GetInt(config.ConfigEpisodes),
		Workers:  cfg.GetInt(config.ConfigWorkers),
		MaxSteps: maxSteps,
		Reduce:   trainer.Reduction(cfg.GetString(config.ConfigReduce)),
	})
	if err != nil {
		return err
	}

	fmt.Printf("agent:       %s\n", rep.Agent.Name())
	fmt.Printf("workers:     %d\n", rep.Workers)
	fmt.Printf("episodes:    %d in %v\n", rep.Episodes, rep.Elapsed.Round(time.Millisecond))
	fmt.Printf("return:      %.4f ± %.4f (95%%), min %.4f, max %.4f\n", rep.Returns.Mean(),
		rep.Returns.ConfidenceInterval(95), rep.Returns.Min(), rep.Returns.Max())
	for _, st := range []env.Status{env.XWins, env.OWins, env.Draw, env.Finished, env.InProgress} {
		if n := rep.Outcomes[st]; n > 0 {
			fmt.Printf("%-12s %d\n", st.String()+":", n)
		}
	}
	fmt.Printf("states:      %d\n", rep.Agent.Values().Len())

	out := cfg.GetString(config.ConfigOut)
	if out == "" {
		out = time.Now().Format("20060102_150405") + ".json"
	}
	return store.SaveFile(ctx, out, rep.Agent.Values(), rep.Agent.Transitions())
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// watched prints the board whenever it changes.
type watched struct {
	*env.TicTacToe
	out io.Writer
}

func (w *watched) Reset() state.State {
	s := w.TicTacToe.Reset()
	fmt.Fprintln(w.out, w.TicTacToe)
	return s
}

func (w *watched) Step(action int) (env.Outcome, error) {
	out, err := w.TicTacToe.Step(action)
	if err == nil {
		fmt.Fprintln(w.out, w.TicTacToe)
	}
	return out, err
}

func play(ctx context.Context, cfg *config.Config) error {
	game := &watched{TicTacToe: env.NewTicTacToe(), out: os.Stdout}
	kinds := []string{cfg.GetString(config.ConfigX), cfg.GetString(config.ConfigO)}

	var rl *readline.Instance
	if slices.Contains(kinds, "human") {
		var err error
		rl, err = readline.NewEx(&readline.Config{
			Prompt:          "\033[31mtabrl>\033[0m ",
			HistoryFile:     "/tmp/tabrl_readline.tmp",
			EOFPrompt:       "exit",
			InterruptPrompt: "^C",

			FuncFilterInputRune: filterInput,
		})
		if err != nil {
			return err
		}
		defer rl.Close()
	}

	base := cfg.AgentArgs()
	if err := loadSeedTables(ctx, cfg, &base); err != nil {
		return err
	}
	base.Afterstate = game.Afterstate

	players := make([]*agent.Agent, len(kinds))
	for i, kind := range kinds {
		b := agent.NewBuilder()
		args := base
		var pol string
		switch kind {
		case "human":
			pol = policy.Human
			args.Input = rl
			args.Output = rl.Stdout()
		case "base":
			pol = policy.Random
		default:
			pol = cfg.GetString(config.ConfigPolicy)
			if pol == policy.Human {
				pol = policy.EGreedy
			}
		}
		if err := b.Configure(pol, learning.Null); err != nil {
			return err
		}
		b.SetArgs(args)
		players[i] = b.Build()
	}

	for {
		res, err := trainer.SelfPlay(ctx, players, game)
		if err != nil {
			return err
		}
		fmt.Printf("%s after %d moves\n\n", res.Status, res.Steps)
		if rl == nil {
			return nil
		}
	}
}

func merge(ctx context.Context, paths []string) error {
	if len(paths) < 2 {
		return fmt.Errorf("merge needs an output file and at least one input")
	}
	dst := memory.New(memory.Options{})
	for _, p := range paths[1:] {
		vals, trans, err := store.LoadFile(ctx, p)
		if err != nil {
			return err
		}
		dst.Merge(memory.New(memory.Options{Values: vals, Transitions: trans}))
	}
	return store.SaveFile(ctx, paths[0], dst.Values, dst.Transitions)
}

const topStates = 5

func inspect(ctx context.Context, paths []string) error {
	if len(paths) != 1 {
		return fmt.Errorf("inspect needs exactly one file")
	}
	vals, trans, err := store.LoadFile(ctx, paths[0])
	if err != nil {
		return err
	}

	type scored struct {
		s state.State
		v value.Value
	}
	var all []scored
	var ests, counts []float64
	vals.Range(func(s state.State, v *value.Value) bool {
		all = append(all, scored{s, *v})
		ests = append(ests, v.Estimate)
		counts = append(counts, v.VisitCount)
		return true
	})
	var observed float64
	successors := 0
	trans.Range(func(_ state.State, _ int, c *transition.Counter) bool {
		for _, succ := range c.Successors() {
			observed += succ.Count
		}
		successors += c.Len()
		return true
	})

	es, cs := stats.Summarize(ests), stats.Summarize(counts)
	fmt.Printf("states:          %d\n", vals.Len())
	fmt.Printf("estimate:        mean %.4f, stdev %.4f, median %.4f, min %.4f, max %.4f\n",
		es.Mean, es.Stdev, es.Median, es.Min, es.Max)
	fmt.Printf("visit count:     mean %.2f, median %.2f, max %.2f\n", cs.Mean, cs.Median, cs.Max)
	fmt.Printf("state-actions:   %d\n", trans.Len())
	fmt.Printf("successors:      %d (%.0f observations)\n", successors, observed)

	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.v.Estimate > b.v.Estimate:
			return -1
		case a.v.Estimate < b.v.Estimate:
			return 1
		}
		return 0
	})
	for _, sc := range all[:min(topStates, len(all))] {
		fmt.Printf("  %v %v\n", sc.s, sc.v)
	}
	return nil
}
