package trainer

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tabrl/agent"
)

// ReduceSequential folds every src into dst, in order, and returns dst.
func ReduceSequential(dst *agent.Agent, srcs ...*agent.Agent) *agent.Agent {
	for _, src := range srcs {
		dst.Merge(src)
	}
	return dst
}

// TreeReduce merges agents pairwise, level by level, into agents[0] and
// returns it. Merges within a level touch disjoint agents and run in
// parallel; each level waits for the previous one.
//
// Merge is not exactly associative, so the result can differ slightly from
// ReduceSequential over the same agents.
func TreeReduce(ctx context.Context, agents []*agent.Agent) (*agent.Agent, error) {
	if len(agents) == 0 {
		return nil, nil
	}
	for stride := 1; stride < len(agents); stride *= 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var g errgroup.Group
		for i := 0; i+stride < len(agents); i += 2 * stride {
			dst, src := agents[i], agents[i+stride]
			g.Go(func() error {
				dst.Merge(src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Debug().Int("stride", stride).Msg("merge-level-done")
	}
	return agents[0], nil
}
