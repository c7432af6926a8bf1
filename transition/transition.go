// Package transition records what an agent has seen happen after taking an
// action, and uses those observations to guess at what happens next.
package transition

import (
	"fmt"

	"github.com/domino14/tabrl/state"
)

// NoAction marks a transition that was not caused by an action, such as the
// observation an environment returns from reset.
const NoAction = -1

// Transition is one observed step: the state the agent ended up in, the
// action that got it there, and the reward for it. Transitions are treated as
// immutable once created.
type Transition struct {
	State  state.State
	Action int
	Reward float64
}

// New makes a transition, copying s.
func New(s state.State, action int, reward float64) Transition {
	return Transition{State: s.Clone(), Action: action, Reward: reward}
}

// Start is the transition for an episode's initial observation.
func Start(s state.State) Transition {
	return New(s, NoAction, 0)
}

func (t Transition) String() string {
	return fmt.Sprintf("<transition %v a=%d r=%g>", t.State, t.Action, t.Reward)
}
