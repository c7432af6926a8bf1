// Package state holds the environment observation type used as the lookup
// key for every table in tabrl.
package state

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// State is an ordered, fixed-length tuple of small numbers: board cells, a
// bandit arm index, a discretized observation. States are compared by exact
// value; there is no interpolation between them.
type State []float64

// Key is the comparable form of a State, suitable as a map key.
type Key string

// Of builds a State out of integer cells.
func Of(cells ...int) State {
	s := make(State, len(cells))
	for i, c := range cells {
		s[i] = float64(c)
	}
	return s
}

// Key encodes the state as a fixed-width byte string. -0 and +0 map to the
// same key.
func (s State) Key() Key {
	buf := make([]byte, 8*len(s))
	for i, v := range s {
		if v == 0 {
			v = 0
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return Key(buf)
}

// WithAction returns the key of the (state, action) pair.
func (s State) WithAction(action int) Key {
	return Key(string(s.Key()) + string(binary.LittleEndian.AppendUint64(nil, uint64(int64(action)))))
}

// Clone returns a copy that does not share the backing array.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Equal reports whether both states hold the same values.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Ints returns the cells truncated to ints.
func (s State) Ints() []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

func (s State) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteByte(')')
	return sb.String()
}
