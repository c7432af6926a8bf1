// Package trainer drives agents through episodes, fans training out over
// worker goroutines and merges what the workers learned.
package trainer

import (
	"context"
	"fmt"

	"github.com/domino14/tabrl/agent"
	"github.com/domino14/tabrl/env"
	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
)

// Result sums up one episode.
type Result struct {
	// Return is the undiscounted sum of rewards, from the point of view of
	// the first player in self-play.
	Return float64
	Steps  int
	Status env.Status
}

// RunEpisode plays one episode of a single agent against e. The reset
// observation is fed to the agent first so the first real step has a
// predecessor. maxSteps <= 0 means run until the environment is done.
func RunEpisode(ctx context.Context, a *agent.Agent, e env.Environment, maxSteps int) (Result, error) {
	res := Result{Status: env.InProgress}
	s := e.Reset()
	a.Observe(transition.Start(s))
	for maxSteps <= 0 || res.Steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		action, err := a.SelectAction(s, e.AvailableActions(s))
		if err != nil {
			return res, err
		}
		out, err := e.Step(action)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		}
		a.Observe(transition.New(out.State, action, out.Reward))
		res.Steps++
		res.Return += out.Reward
		res.Status = out.Info.Status
		s = out.State
		if out.Done {
			break
		}
	}
	a.FinalizeEpisode()
	return res, nil
}

// SelfPlay plays one game between players, one agent per seat. Each player
// observes the outcome of its own moves. When the game ends, every player
// but the one who made the last move also observes that final transition
// with the reward negated.
func SelfPlay(ctx context.Context, players []*agent.Agent, g env.TurnBased) (Result, error) {
	if len(players) != g.Players() {
		return Result{}, fmt.Errorf("game wants %d players, have %d", g.Players(), len(players))
	}
	res := Result{Status: env.InProgress}
	s := g.Reset()
	for _, p := range players {
		p.Observe(transition.Start(s))
	}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		mover := g.ToMove()
		action, err := players[mover].SelectAction(s, g.AvailableActions(s))
		if err != nil {
			return res, err
		}
		out, err := g.Step(action)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		}
		players[mover].Observe(transition.New(out.State, action, out.Reward))
		res.Steps++
		res.Status = out.Info.Status
		if mover == 0 {
			res.Return += out.Reward
		} else {
			res.Return -= out.Reward
		}
		s = out.State
		if out.Done {
			finish(players, mover, out.State, action, out.Reward)
			break
		}
	}
	for _, p := range players {
		p.FinalizeEpisode()
	}
	return res, nil
}

func finish(players []*agent.Agent, mover int, s state.State, action int, reward float64) {
	for i, p := range players {
		if i != mover {
			p.Observe(transition.New(s, action, -reward))
		}
	}
}
