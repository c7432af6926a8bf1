// Package value holds the per-state value estimates learned by an agent.
package value

import (
	"fmt"

	"github.com/domino14/tabrl/state"
)

// Value is the estimate for a single state along with how many times that
// state has taken part in an update. Count may be fractional after merges.
type Value struct {
	Estimate   float64 `json:"estimate" yaml:"estimate"`
	VisitCount float64 `json:"visit_count" yaml:"visit_count"`
}

func (v Value) String() string {
	return fmt.Sprintf("<value %.4f n=%.2f>", v.Estimate, v.VisitCount)
}

type entry struct {
	state state.State
	value *Value
}

// Table maps states to values. Looking up a state that is not present
// materializes a default entry; it never fails.
type Table struct {
	entries map[state.Key]*entry
	order   []state.Key
	// Prior is the value a fresh entry starts with. The zero Prior is the
	// plain (0, 0) default; a non-zero Estimate gives optimistic
	// initialization.
	Prior Value
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[state.Key]*entry)}
}

// NewOptimisticTable creates an empty table whose new entries start at the
// given estimate with a zero visit count.
func NewOptimisticTable(estimate float64) *Table {
	t := NewTable()
	t.Prior = Value{Estimate: estimate}
	return t
}

// Get returns the value for s, inserting the prior if s was never seen.
// The returned pointer stays valid for the life of the table.
func (t *Table) Get(s state.State) *Value {
	k := s.Key()
	if e, ok := t.entries[k]; ok {
		return e.value
	}
	v := t.Prior
	t.entries[k] = &entry{state: s.Clone(), value: &v}
	t.order = append(t.order, k)
	return &v
}

// Estimate reads the estimate for s without inserting anything.
func (t *Table) Estimate(s state.State) float64 {
	if e, ok := t.entries[s.Key()]; ok {
		return e.value.Estimate
	}
	return t.Prior.Estimate
}

// Lookup returns a copy of the value for s and whether it was present.
func (t *Table) Lookup(s state.State) (Value, bool) {
	if e, ok := t.entries[s.Key()]; ok {
		return *e.value, true
	}
	return t.Prior, false
}

// Set overwrites the value stored for s.
func (t *Table) Set(s state.State, v Value) {
	*t.Get(s) = v
}

// Len is the number of materialized entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Range calls fn for every entry in insertion order, stopping early if fn
// returns false. fn must not insert into the table.
func (t *Table) Range(fn func(s state.State, v *Value) bool) {
	for _, k := range t.order {
		e := t.entries[k]
		if !fn(e.state, e.value) {
			return
		}
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.Prior = t.Prior
	t.Range(func(s state.State, v *Value) bool {
		c.Set(s, *v)
		return true
	})
	return c
}
