package value

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/tabrl/state"
)

func TestGetMaterializesDefault(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	v := tbl.Get(state.Of(1, 2, 3))
	is.Equal(*v, Value{})
	is.Equal(tbl.Len(), 1)

	v.Estimate = 4
	is.Equal(tbl.Get(state.Of(1, 2, 3)).Estimate, 4.0)
	is.Equal(tbl.Len(), 1)
}

func TestEstimateDoesNotInsert(t *testing.T) {
	is := is.New(t)
	tbl := NewOptimisticTable(5)
	is.Equal(tbl.Estimate(state.Of(7)), 5.0)
	is.Equal(tbl.Len(), 0)
	_, ok := tbl.Lookup(state.Of(7))
	is.True(!ok)
	is.Equal(*tbl.Get(state.Of(7)), Value{Estimate: 5})
}

func TestGetCopiesKeyState(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	s := state.Of(1, 1)
	tbl.Get(s).VisitCount = 1
	s[0] = 2
	var seen []state.State
	tbl.Range(func(st state.State, v *Value) bool {
		seen = append(seen, st)
		return true
	})
	is.Equal(len(seen), 1)
	is.True(seen[0].Equal(state.Of(1, 1)))
}

func TestMergeDisjoint(t *testing.T) {
	is := is.New(t)
	a := NewTable()
	a.Set(state.Of(0), Value{Estimate: 1, VisitCount: 2})
	b := NewTable()
	b.Set(state.Of(1), Value{Estimate: 3, VisitCount: 5})
	b.Set(state.Of(2), Value{Estimate: -1, VisitCount: 0.5})

	a.Merge(b)
	is.Equal(a.Len(), 3)
	is.Equal(*a.Get(state.Of(0)), Value{Estimate: 1, VisitCount: 2})
	is.Equal(*a.Get(state.Of(1)), Value{Estimate: 3, VisitCount: 5})
	is.Equal(*a.Get(state.Of(2)), Value{Estimate: -1, VisitCount: 0.5})
	// source untouched
	is.Equal(b.Len(), 2)
	a.Get(state.Of(1)).Estimate = 100
	is.Equal(b.Get(state.Of(1)).Estimate, 3.0)
}

func TestMergeWeightsByVisitCount(t *testing.T) {
	a := NewTable()
	a.Set(state.Of(0), Value{Estimate: 0.2, VisitCount: 1})
	b := NewTable()
	b.Set(state.Of(0), Value{Estimate: 0.6, VisitCount: 1})
	a.Merge(b)
	v := a.Get(state.Of(0))
	assert.InDelta(t, 0.4, v.Estimate, 1e-12)
	assert.Equal(t, 1.0, v.VisitCount)

	c := NewTable()
	c.Set(state.Of(0), Value{Estimate: 1, VisitCount: 3})
	a.Merge(c)
	// (1*0.4 + 3*1) / 4
	assert.InDelta(t, 0.85, v.Estimate, 1e-12)
	assert.Equal(t, 2.0, v.VisitCount)
}

func TestMergeOrderStaysClose(t *testing.T) {
	build := func(est, n float64) *Table {
		tbl := NewTable()
		tbl.Set(state.Of(0), Value{Estimate: est, VisitCount: n})
		return tbl
	}
	// A <- B <- C
	left := build(1, 2)
	left.Merge(build(2, 2))
	left.Merge(build(3, 2))

	// A <- (C <- B)
	right := build(1, 2)
	cb := build(3, 2)
	cb.Merge(build(2, 2))
	right.Merge(cb)

	l, _ := left.Lookup(state.Of(0))
	r, _ := right.Lookup(state.Of(0))
	assert.Equal(t, l.VisitCount, r.VisitCount)
	assert.InDelta(t, 2.25, l.Estimate, 1e-12)
	assert.InDelta(t, 1.75, r.Estimate, 1e-12)
	for _, v := range []Value{l, r} {
		assert.GreaterOrEqual(t, v.Estimate, 1.0)
		assert.LessOrEqual(t, v.Estimate, 3.0)
	}
}
