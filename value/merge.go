package value

import "github.com/domino14/tabrl/state"

// Merge folds src into t. src is not modified.
//
// A state t has never visited adopts the source value as is. Otherwise the
// estimates are averaged, weighted by visit count, and the combined count is
// halved.
func (t *Table) Merge(src *Table) {
	src.Range(func(s state.State, other *Value) bool {
		v := t.Get(s)
		if v.VisitCount == 0 {
			*v = *other
			return true
		}
		total := v.VisitCount + other.VisitCount
		v.Estimate = (v.VisitCount*v.Estimate + other.VisitCount*other.Estimate) / total
		v.VisitCount = total / 2
		return true
	})
}
