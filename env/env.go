// Package env defines what tabrl needs from an environment, along with a
// few small environments for the command line driver and for tests.
package env

import (
	"errors"
	"fmt"

	"github.com/domino14/tabrl/state"
)

// Status describes how an episode stands after a step.
type Status int

const (
	InProgress Status = iota
	XWins
	OWins
	Draw
	Finished
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case XWins:
		return "x-wins"
	case OWins:
		return "o-wins"
	case Draw:
		return "draw"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Info carries extra detail about a step.
type Info struct {
	Status Status
}

// Outcome is the result of one step.
type Outcome struct {
	State  state.State
	Reward float64
	Done   bool
	Info   Info
}

var ErrIllegalAction = errors.New("illegal action")

// Environment is the contract the trainer drives.
type Environment interface {
	Reset() state.State
	Step(action int) (Outcome, error)
	AvailableActions(s state.State) []int
}

// TurnBased environments have several players taking turns.
type TurnBased interface {
	Environment
	Players() int
	// ToMove is the index of the player whose turn it is.
	ToMove() int
}

// Simulator environments can predict the result of an action without
// taking it.
type Simulator interface {
	Afterstate(s state.State, action int) state.State
}

// Factory makes independent environment instances, one per worker.
type Factory func(seed uint64) Environment
