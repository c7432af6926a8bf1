package env

import (
	"fmt"

	"github.com/domino14/tabrl/state"
)

// Chain is a deterministic corridor of Length states with a single
// action that moves one state forward. Entering the last state pays
// Reward and ends the episode.
type Chain struct {
	Length int
	Reward float64
	pos    int
}

func NewChain(length int, reward float64) *Chain {
	if length < 2 {
		length = 2
	}
	return &Chain{Length: length, Reward: reward}
}

func (c *Chain) Reset() state.State {
	c.pos = 0
	return state.Of(c.pos)
}

func (c *Chain) Step(action int) (Outcome, error) {
	if action != 0 {
		return Outcome{}, fmt.Errorf("%w: %d", ErrIllegalAction, action)
	}
	if c.pos == c.Length-1 {
		return Outcome{}, fmt.Errorf("%w: episode is over", ErrIllegalAction)
	}
	c.pos++
	out := Outcome{State: state.Of(c.pos), Info: Info{Status: InProgress}}
	if c.pos == c.Length-1 {
		out.Reward = c.Reward
		out.Done = true
		out.Info.Status = Finished
	}
	return out, nil
}

func (c *Chain) AvailableActions(state.State) []int {
	return []int{0}
}

func (c *Chain) Afterstate(s state.State, _ int) state.State {
	return state.Of(min(int(s[0])+1, c.Length-1))
}
