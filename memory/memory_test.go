package memory

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/value"
)

func TestNewSharesTablesWithModel(t *testing.T) {
	is := is.New(t)
	m := New(Options{Seed: 4})
	is.True(m.Model.Table == m.Transitions)
	is.True(m.Model.Rand == m.Rand)
	is.Equal(m.Trajectory.Len(), 0)
}

func TestNewKeepsInjectedTables(t *testing.T) {
	is := is.New(t)
	vals := value.NewTable()
	vals.Set(state.Of(1), value.Value{Estimate: 2, VisitCount: 1})
	m := New(Options{Values: vals})
	is.True(m.Values == vals)
}

func TestSeedReproducible(t *testing.T) {
	is := is.New(t)
	a, b, c := NewRand(10), NewRand(10), NewRand(11)
	x := a.Uint64()
	is.Equal(x, b.Uint64())
	is.True(x != c.Uint64())
}

func TestMergeBothTables(t *testing.T) {
	is := is.New(t)
	dst := New(Options{})
	src := New(Options{})
	src.Values.Set(state.Of(1), value.Value{Estimate: 1, VisitCount: 1})
	src.Transitions.Record(state.Of(0), 0, state.Of(1))
	dst.Merge(src)
	is.Equal(dst.Values.Len(), 1)
	is.Equal(dst.Transitions.Counter(state.Of(0), 0).Count(state.Of(1)), 1.0)
}
