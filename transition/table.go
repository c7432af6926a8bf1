package transition

import (
	"slices"

	"github.com/domino14/tabrl/state"
)

// Successor is one successor state and how many times it was observed.
type Successor struct {
	State state.State
	Count float64
}

// Counter is the histogram of successor states seen after one (state,
// action) pair. Successors keep the order they were first seen in.
type Counter struct {
	order   []state.Key
	entries map[state.Key]*Successor
}

func newCounter() *Counter {
	return &Counter{entries: make(map[state.Key]*Successor)}
}

// Add adds count observations of next.
func (c *Counter) Add(next state.State, count float64) {
	k := next.Key()
	if s, ok := c.entries[k]; ok {
		s.Count += count
		return
	}
	c.entries[k] = &Successor{State: next.Clone(), Count: count}
	c.order = append(c.order, k)
}

// Count returns how often next was observed.
func (c *Counter) Count(next state.State) float64 {
	if c == nil {
		return 0
	}
	if s, ok := c.entries[next.Key()]; ok {
		return s.Count
	}
	return 0
}

// Len is the number of distinct successors.
func (c *Counter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

func (c *Counter) prune() {
	c.order = slices.DeleteFunc(c.order, func(k state.Key) bool {
		if c.entries[k].Count > 0 {
			return false
		}
		delete(c.entries, k)
		return true
	})
}

// Successors returns the successors in first-seen order.
func (c *Counter) Successors() []Successor {
	if c == nil {
		return nil
	}
	out := make([]Successor, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.entries[k])
	}
	return out
}

type pairEntry struct {
	state   state.State
	action  int
	counter *Counter
}

// Table is the transition frequency table: for every (state, action) it
// keeps a Counter of successor states. It only ever grows.
type Table struct {
	pairs map[state.Key]*pairEntry
	order []state.Key
}

// NewTable makes an empty frequency table.
func NewTable() *Table {
	return &Table{pairs: make(map[state.Key]*pairEntry)}
}

func (t *Table) pair(s state.State, action int) *pairEntry {
	k := s.WithAction(action)
	p, ok := t.pairs[k]
	if !ok {
		p = &pairEntry{state: s.Clone(), action: action, counter: newCounter()}
		t.pairs[k] = p
		t.order = append(t.order, k)
	}
	return p
}

// Record counts one observation of next after taking action from s.
func (t *Table) Record(s state.State, action int, next state.State) {
	t.pair(s, action).counter.Add(next, 1)
}

// Add counts count observations of next after taking action from s.
func (t *Table) Add(s state.State, action int, next state.State, count float64) {
	t.pair(s, action).counter.Add(next, count)
}

// Counter returns the successor histogram for (s, action), or nil if that
// pair was never observed. A nil Counter is safe to read.
func (t *Table) Counter(s state.State, action int) *Counter {
	if p, ok := t.pairs[s.WithAction(action)]; ok {
		return p.counter
	}
	return nil
}

// Len is the number of (state, action) pairs observed.
func (t *Table) Len() int {
	return len(t.pairs)
}

// Range calls fn for each (state, action) pair in first-seen order,
// stopping if fn returns false.
func (t *Table) Range(fn func(s state.State, action int, c *Counter) bool) {
	for _, k := range t.order {
		p := t.pairs[k]
		if !fn(p.state, p.action, p.counter) {
			return
		}
	}
}

// Merge adds every count in src into t. Counts are summed, never averaged.
// src is not modified.
func (t *Table) Merge(src *Table) {
	src.Range(func(s state.State, action int, c *Counter) bool {
		dst := t.pair(s, action).counter
		for _, k := range c.order {
			succ := c.entries[k]
			dst.Add(succ.State, succ.Count)
		}
		return true
	})
}

// Sub removes src's counts from t, the inverse of Merge. Successors whose
// count drops to zero or below are dropped, and so are pairs left with no
// successors. Pairs t never observed are ignored.
func (t *Table) Sub(src *Table) {
	src.Range(func(s state.State, action int, c *Counter) bool {
		k := s.WithAction(action)
		p, ok := t.pairs[k]
		if !ok {
			return true
		}
		for _, sk := range c.order {
			if succ, ok := p.counter.entries[sk]; ok {
				succ.Count -= c.entries[sk].Count
			}
		}
		p.counter.prune()
		if p.counter.Len() == 0 {
			delete(t.pairs, k)
			t.order = slices.DeleteFunc(t.order, func(o state.Key) bool { return o == k })
		}
		return true
	})
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.Merge(t)
	return c
}
