package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/tabrl/agent"
	"github.com/domino14/tabrl/env"
	tmem "github.com/domino14/tabrl/memory"
	"github.com/domino14/tabrl/policy"
	"github.com/domino14/tabrl/stats"
)

// Reduction picks how worker agents are folded into the master.
type Reduction string

const (
	Sequential Reduction = "sequential"
	Tree       Reduction = "tree"
)

// Rough per-worker memory footprint, used to cap the worker count.
const (
	baseWorkerBytes = 16 << 20
	bytesPerEntry   = 512
	progressEvery   = 1000
)

var ErrInteractive = errors.New("the human policy cannot run in a training worker")

// Options controls Train.
type Options struct {
	// Episodes is the number of episodes each worker plays.
	Episodes int
	// Workers is the number of parallel workers. Zero means one per CPU.
	Workers int
	// MaxSteps bounds each episode. Environments that never finish on
	// their own (bandits) need it set.
	MaxSteps int
	Reduce   Reduction
}

// Report is what a training run produced.
type Report struct {
	Agent    *agent.Agent
	Returns  stats.Running
	Outcomes map[env.Status]int
	Workers  int
	Episodes int
	Elapsed  time.Duration
}

type workerResult struct {
	agent    *agent.Agent
	returns  stats.Running
	outcomes map[env.Status]int
}

// Train builds one agent per worker from b, lets each play opts.Episodes
// episodes against its own environment from factory, then merges them all
// into a master agent. Turn-based environments are played in self-play,
// one agent per seat.
//
// Workers share nothing while they play. If ctx is cancelled Train returns
// its error without merging anything.
func Train(ctx context.Context, b *agent.Builder, factory env.Factory, opts Options) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	if b.PolicyName() == policy.Human {
		return nil, ErrInteractive
	}
	args := b.Args()
	entries := 0
	if args.Values != nil {
		entries += args.Values.Len()
	}
	if args.Transitions != nil {
		entries += args.Transitions.Len()
	}
	n := WorkerCount(opts.Workers, entries)
	seeds := workerSeeds(args.Seed, n+1)

	logger.Info().Int("workers", n).Int("episodes-per-worker", opts.Episodes).
		Str("policy", b.PolicyName()).Str("learning", b.LearningName()).
		Msg("training-started")
	tstart := time.Now()

	results := make([]workerResult, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			wr, err := runWorker(gctx, b, factory, seeds[i+1], opts)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			results[i] = wr
			logger.Debug().Int("worker", i).Int("episodes", wr.returns.N()).
				Float64("mean-return", wr.returns.Mean()).Msg("worker-finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{Outcomes: map[env.Status]int{}, Workers: n}
	agents := make([]*agent.Agent, 0, n+1)
	agents = append(agents, b.BuildWithSeed(seeds[0]))
	for _, wr := range results {
		agents = append(agents, wr.agent)
		rep.Returns.Merge(wr.returns)
		for st, c := range wr.outcomes {
			rep.Outcomes[st] += c
		}
	}
	var err error
	switch opts.Reduce {
	case Tree:
		rep.Agent, err = TreeReduce(ctx, agents)
		if err != nil {
			return nil, err
		}
	default:
		rep.Agent = ReduceSequential(agents[0], agents[1:]...)
	}
	rep.Episodes = rep.Returns.N()
	rep.Elapsed = time.Since(tstart)
	logger.Info().Int("episodes", rep.Episodes).Float64("mean-return", rep.Returns.Mean()).
		Int("states", rep.Agent.Values().Len()).Dur("elapsed", rep.Elapsed).
		Msg("training-done")
	return rep, nil
}

func runWorker(ctx context.Context, b *agent.Builder, factory env.Factory, seed uint64, opts Options) (workerResult, error) {
	wr := workerResult{outcomes: map[env.Status]int{}}
	e := factory(seed)

	wb := *b
	args := wb.Args()
	if sim, ok := e.(env.Simulator); ok && args.Afterstate == nil {
		args.Afterstate = sim.Afterstate
	}
	wb.SetArgs(args)

	var (
		play    func() (Result, error)
		players []*agent.Agent
	)
	if tb, ok := e.(env.TurnBased); ok && tb.Players() > 1 {
		players = make([]*agent.Agent, tb.Players())
		for p := range players {
			players[p] = wb.BuildWithSeed(seed + uint64(p))
		}
		play = func() (Result, error) { return SelfPlay(ctx, players, tb) }
	} else {
		players = []*agent.Agent{wb.BuildWithSeed(seed)}
		play = func() (Result, error) { return RunEpisode(ctx, players[0], e, opts.MaxSteps) }
	}
	wr.agent = players[0]

	for ep := 1; ep <= opts.Episodes; ep++ {
		res, err := play()
		if err != nil {
			return wr, err
		}
		wr.returns.Push(res.Return)
		wr.outcomes[res.Status]++
		if ep%progressEvery == 0 {
			zerolog.Ctx(ctx).Debug().Uint64("seed", seed).Int("episodes", ep).
				Float64("mean-return", wr.returns.Mean()).Msg("worker-progress")
		}
	}
	// The master already holds the starting counts; every seat keeps only
	// what it observed itself so merging adds them exactly once.
	if args.Transitions != nil {
		for _, p := range players {
			p.Transitions().Sub(args.Transitions)
		}
	}
	ReduceSequential(players[0], players[1:]...)
	return wr, nil
}

// WorkerCount resolves the number of workers to run. Zero or less means
// one per CPU. The result is capped so that every worker's copy of the
// starting tables fits in half of system memory.
func WorkerCount(requested, tableEntries int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
	}
	total := memory.TotalMemory()
	if total == 0 {
		return n
	}
	per := uint64(baseWorkerBytes) + uint64(bytesPerEntry)*uint64(tableEntries)
	limit := int(total / 2 / per)
	if limit < 1 {
		limit = 1
	}
	if n > limit {
		log.Warn().Int("requested", n).Int("limit", limit).
			Msg("capping-workers-by-memory")
		n = limit
	}
	return n
}

// workerSeeds draws n non-zero seeds. A non-zero base makes them
// reproducible.
func workerSeeds(base uint64, n int) []uint64 {
	seeds := make([]uint64, n)
	if base == 0 {
		for i := range seeds {
			seeds[i] = frand.Uint64n(math.MaxUint64) + 1
		}
		return seeds
	}
	seeds[0] = base
	rng := tmem.NewRand(base)
	for i := 1; i < n; i++ {
		seeds[i] = rng.Uint64() | 1
	}
	return seeds
}
