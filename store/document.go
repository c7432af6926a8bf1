// Package store reads and writes learned tables. The logical document is
// the same in every format: a list of state values and a list of
// transition counts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrUnknownFormat    = errors.New("unknown format")
	ErrMalformed        = errors.New("malformed document")
	ErrUnencodable      = errors.New("tables cannot be encoded")
)

// StateValue is one (state, value) pair. It is written as a two element
// array: [[cells...], {estimate, visit_count}].
type StateValue struct {
	State []float64
	Value value.Value
}

// SuccessorCount is written as [[cells...], count].
type SuccessorCount struct {
	State []float64
	Count float64
}

// PairCounts is the histogram for one (state, action) pair, written as
// [[cells..., action], [[[cells...], count], ...]].
type PairCounts struct {
	StateAction []float64
	Successors  []SuccessorCount
}

// Document is the persisted form of an agent's tables.
type Document struct {
	StateValues []StateValue `json:"state_values" yaml:"state_values"`
	Transitions []PairCounts `json:"transitions" yaml:"transitions"`
	Checksum    string       `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

func (sv StateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{sv.State, sv.Value})
}

func (sv *StateValue) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: state value has %d parts", ErrMalformed, len(raw))
	}
	if err := json.Unmarshal(raw[0], &sv.State); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &sv.Value)
}

func (sc SuccessorCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{sc.State, sc.Count})
}

func (sc *SuccessorCount) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: successor has %d parts", ErrMalformed, len(raw))
	}
	if err := json.Unmarshal(raw[0], &sc.State); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &sc.Count)
}

func (pc PairCounts) MarshalJSON() ([]byte, error) {
	succ := pc.Successors
	if succ == nil {
		succ = []SuccessorCount{}
	}
	return json.Marshal([]any{pc.StateAction, succ})
}

func (pc *PairCounts) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: transition has %d parts", ErrMalformed, len(raw))
	}
	if err := json.Unmarshal(raw[0], &pc.StateAction); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &pc.Successors)
}

func (sv StateValue) MarshalYAML() (any, error) {
	return []any{flow(sv.State), sv.Value}, nil
}

func (sv *StateValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		return fmt.Errorf("%w: state value at line %d", ErrMalformed, n.Line)
	}
	if err := n.Content[0].Decode(&sv.State); err != nil {
		return err
	}
	return n.Content[1].Decode(&sv.Value)
}

func (sc SuccessorCount) MarshalYAML() (any, error) {
	return []any{flow(sc.State), sc.Count}, nil
}

func (sc *SuccessorCount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		return fmt.Errorf("%w: successor at line %d", ErrMalformed, n.Line)
	}
	if err := n.Content[0].Decode(&sc.State); err != nil {
		return err
	}
	return n.Content[1].Decode(&sc.Count)
}

func (pc PairCounts) MarshalYAML() (any, error) {
	succ := pc.Successors
	if succ == nil {
		succ = []SuccessorCount{}
	}
	return []any{flow(pc.StateAction), succ}, nil
}

func (pc *PairCounts) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		return fmt.Errorf("%w: transition at line %d", ErrMalformed, n.Line)
	}
	if err := n.Content[0].Decode(&pc.StateAction); err != nil {
		return err
	}
	return n.Content[1].Decode(&pc.Successors)
}

// flow renders a float list on one line in YAML.
func flow(xs []float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, x := range xs {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(x, 'g', -1, 64),
		})
	}
	return n
}

// NewDocument captures the tables. Only states that have been visited are
// written; everything else comes back as a default on load anyway. It
// fails with ErrUnencodable if a number has no JSON form (NaN, ±Inf).
func NewDocument(vals *value.Table, trans *transition.Table) (*Document, error) {
	doc := &Document{StateValues: []StateValue{}, Transitions: []PairCounts{}}
	if vals != nil {
		vals.Range(func(s state.State, v *value.Value) bool {
			if v.VisitCount > 0 {
				doc.StateValues = append(doc.StateValues, StateValue{State: s.Clone(), Value: *v})
			}
			return true
		})
	}
	if trans != nil {
		trans.Range(func(s state.State, action int, c *transition.Counter) bool {
			pc := PairCounts{StateAction: append(s.Clone(), float64(action))}
			for _, succ := range c.Successors() {
				pc.Successors = append(pc.Successors, SuccessorCount{State: succ.State, Count: succ.Count})
			}
			doc.Transitions = append(doc.Transitions, pc)
			return true
		})
	}
	sum, err := doc.sum()
	if err != nil {
		return nil, err
	}
	doc.Checksum = sum
	return doc, nil
}

// Tables rebuilds the in-memory tables from the document.
func (d *Document) Tables() (*value.Table, *transition.Table, error) {
	vals := value.NewTable()
	for _, sv := range d.StateValues {
		vals.Set(state.State(sv.State), sv.Value)
	}
	trans := transition.NewTable()
	for _, pc := range d.Transitions {
		n := len(pc.StateAction)
		if n == 0 {
			return nil, nil, fmt.Errorf("%w: empty state-action key", ErrMalformed)
		}
		a := pc.StateAction[n-1]
		if a != math.Trunc(a) {
			return nil, nil, fmt.Errorf("%w: action %v is not an integer", ErrMalformed, a)
		}
		s := state.State(pc.StateAction[:n-1])
		for _, succ := range pc.Successors {
			trans.Add(s, int(a), state.State(succ.State), succ.Count)
		}
	}
	return vals, trans, nil
}

// Verify checks the checksum if the document carries one.
func (d *Document) Verify() error {
	if d.Checksum == "" {
		return nil
	}
	got, err := d.sum()
	if err != nil {
		return err
	}
	if got != d.Checksum {
		return fmt.Errorf("%w: have %s, computed %s", ErrChecksumMismatch, d.Checksum, got)
	}
	return nil
}

func (d *Document) sum() (string, error) {
	svs, pcs := d.StateValues, d.Transitions
	if svs == nil {
		svs = []StateValue{}
	}
	if pcs == nil {
		pcs = []PairCounts{}
	}
	body, err := json.Marshal(struct {
		StateValues []StateValue `json:"state_values"`
		Transitions []PairCounts `json:"transitions"`
	}{svs, pcs})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnencodable, err)
	}
	return strconv.FormatUint(xxhash.Sum64(body), 16), nil
}
