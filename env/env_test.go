package env

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/tabrl/state"
)

func play(t *testing.T, g *TicTacToe, moves ...int) Outcome {
	t.Helper()
	var out Outcome
	for _, m := range moves {
		var err error
		out, err = g.Step(m)
		if err != nil {
			t.Fatal(err)
		}
	}
	return out
}

func TestTicTacToeXWins(t *testing.T) {
	is := is.New(t)
	g := NewTicTacToe()
	s := g.Reset()
	is.Equal(len(s), 10)
	is.Equal(s[9], float64(X))
	is.Equal(g.ToMove(), 0)

	out := play(t, g, 0, 3, 1, 4, 2)
	is.True(out.Done)
	is.Equal(out.Info.Status, XWins)
	is.Equal(out.Reward, 1.0/5)

	_, err := g.Step(5)
	is.True(errors.Is(err, ErrIllegalAction))
}

func TestTicTacToeOWins(t *testing.T) {
	is := is.New(t)
	g := NewTicTacToe()
	out := play(t, g, 0, 3, 1, 4, 8, 5)
	is.Equal(out.Info.Status, OWins)
	is.Equal(out.Reward, 1.0/5)
}

func TestTicTacToeDraw(t *testing.T) {
	is := is.New(t)
	g := NewTicTacToe()
	out := play(t, g, 0, 1, 2, 4, 3, 5, 7, 6, 8)
	is.Equal(out.Info.Status, Draw)
	is.Equal(out.Reward, 0.0)
	is.True(out.Done)
}

func TestTicTacToeOccupied(t *testing.T) {
	is := is.New(t)
	g := NewTicTacToe()
	play(t, g, 4)
	_, err := g.Step(4)
	is.True(errors.Is(err, ErrIllegalAction))
}

func TestTicTacToeActionsAndAfterstate(t *testing.T) {
	is := is.New(t)
	g := NewTicTacToe()
	g.Reset()
	out := play(t, g, 4, 0)
	is.Equal(g.AvailableActions(out.State), []int{1, 2, 3, 5, 6, 7, 8})

	before := out.State
	predicted := g.Afterstate(before, 8)
	actual := play(t, g, 8)
	is.True(predicted.Equal(actual.State))
	is.Equal(before[8], 0.0)
}

func TestBandit(t *testing.T) {
	is := is.New(t)
	b := NewBandit(5, 3)
	is.Equal(len(b.Means), 5)
	is.Equal(b.AvailableActions(nil), []int{0, 1, 2, 3, 4})
	b.Reset()
	out, err := b.Step(2)
	is.NoErr(err)
	is.True(out.State.Equal(state.Of(2)))
	is.True(!out.Done)
	is.True(b.Afterstate(state.Of(0), 3).Equal(state.Of(3)))
	_, err = b.Step(9)
	is.True(errors.Is(err, ErrIllegalAction))

	// same seed, same testbed
	is.Equal(NewBandit(5, 3).Means, b.Means)
}

func TestBanditDrift(t *testing.T) {
	is := is.New(t)
	still := NewBandit(4, 3)
	start := slices.Clone(still.Means)
	for range 50 {
		_, err := still.Step(1)
		is.NoErr(err)
	}
	is.Equal(still.Means, start)

	moving := NewBandit(4, 3)
	moving.Drift = 0.1
	for range 50 {
		_, err := moving.Step(1)
		is.NoErr(err)
	}
	moving.Reset()
	for i := range start {
		is.True(moving.Means[i] != start[i]) // every arm walks, pulled or not
	}
	// 50 steps of N(0, 0.1) stay well inside a few standard deviations
	for i := range start {
		assert.InDelta(t, start[i], moving.Means[i], 5*0.1*math.Sqrt(50))
	}
}

func TestChain(t *testing.T) {
	is := is.New(t)
	c := NewChain(3, 1)
	is.True(c.Reset().Equal(state.Of(0)))
	out, err := c.Step(0)
	is.NoErr(err)
	is.True(!out.Done)
	is.Equal(out.Reward, 0.0)
	out, err = c.Step(0)
	is.NoErr(err)
	is.True(out.Done)
	is.Equal(out.Reward, 1.0)
	is.Equal(out.Info.Status, Finished)
	_, err = c.Step(0)
	is.True(errors.Is(err, ErrIllegalAction))
	is.True(c.Afterstate(state.Of(2), 0).Equal(state.Of(2)))
}
