package transition

// Trajectory is the buffer of transitions seen so far in the current
// episode. A bounded trajectory only keeps its most recent Window entries,
// which is all the one-step learning rules ever look at.
type Trajectory struct {
	steps  []Transition
	window int
}

// NewTrajectory makes a trajectory. window <= 0 keeps the whole episode.
func NewTrajectory(window int) *Trajectory {
	return &Trajectory{window: window}
}

// Push appends t, dropping the oldest entry if the window is full.
func (tr *Trajectory) Push(t Transition) {
	if tr.window > 0 && len(tr.steps) == tr.window {
		copy(tr.steps, tr.steps[1:])
		tr.steps = tr.steps[:len(tr.steps)-1]
	}
	tr.steps = append(tr.steps, t)
}

// Len is the number of buffered transitions.
func (tr *Trajectory) Len() int {
	return len(tr.steps)
}

// Window returns the configured window; 0 means unbounded.
func (tr *Trajectory) Window() int {
	return tr.window
}

// SetWindow changes the window. Shrinking it drops the oldest entries.
func (tr *Trajectory) SetWindow(w int) {
	tr.window = w
	if w > 0 && len(tr.steps) > w {
		tr.steps = append(tr.steps[:0], tr.steps[len(tr.steps)-w:]...)
	}
}

// Back returns the transition i steps back from the newest one; Back(0) is
// the newest. ok is false when the buffer is too short.
func (tr *Trajectory) Back(i int) (t Transition, ok bool) {
	idx := len(tr.steps) - 1 - i
	if idx < 0 || i < 0 {
		return Transition{}, false
	}
	return tr.steps[idx], true
}

// Steps returns the buffered transitions, oldest first. The slice must not
// be modified.
func (tr *Trajectory) Steps() []Transition {
	return tr.steps
}

// Clear empties the buffer.
func (tr *Trajectory) Clear() {
	tr.steps = tr.steps[:0]
}
