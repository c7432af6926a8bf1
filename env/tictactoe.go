package env

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/tabrl/state"
)

// Cell marks.
const (
	Empty = 0
	X     = 1
	O     = 2
)

const boardSize = 9

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToe is noughts and crosses. The observation is the nine cells in
// row-major order followed by the mark of the player to move. X moves
// first. The winner is rewarded 1/ticks (X) or 1/(ticks-1) (O), so faster
// wins are worth more.
type TicTacToe struct {
	board  [boardSize]int
	toMove int
	ticks  int
	status Status
}

func NewTicTacToe() *TicTacToe {
	t := &TicTacToe{}
	t.Reset()
	return t
}

func (t *TicTacToe) Reset() state.State {
	t.board = [boardSize]int{}
	t.toMove = X
	t.ticks = 0
	t.status = InProgress
	return t.observation()
}

func (t *TicTacToe) observation() state.State {
	s := make(state.State, boardSize+1)
	for i, c := range t.board {
		s[i] = float64(c)
	}
	s[boardSize] = float64(t.toMove)
	return s
}

func (t *TicTacToe) Players() int { return 2 }

// ToMove is 0 for X and 1 for O.
func (t *TicTacToe) ToMove() int { return t.toMove - 1 }

func (t *TicTacToe) Status() Status { return t.status }

func (t *TicTacToe) Step(action int) (Outcome, error) {
	if t.status != InProgress {
		return Outcome{}, fmt.Errorf("%w: game is over", ErrIllegalAction)
	}
	if action < 0 || action >= boardSize || t.board[action] != Empty {
		return Outcome{}, fmt.Errorf("%w: cell %d", ErrIllegalAction, action)
	}
	t.ticks++
	t.board[action] = t.toMove
	t.status = gameStatus(t.board)

	var reward float64
	switch t.status {
	case XWins:
		reward = 1 / float64(t.ticks)
	case OWins:
		reward = 1 / float64(t.ticks-1)
	}
	t.toMove = other(t.toMove)
	return Outcome{
		State:  t.observation(),
		Reward: reward,
		Done:   t.status != InProgress,
		Info:   Info{Status: t.status},
	}, nil
}

// AvailableActions lists the empty cells.
func (t *TicTacToe) AvailableActions(s state.State) []int {
	return lo.Filter(lo.Range(boardSize), func(i int, _ int) bool {
		return int(s[i]) == Empty
	})
}

// Afterstate places the mover's mark on cell action and hands the turn over.
func (t *TicTacToe) Afterstate(s state.State, action int) state.State {
	next := s.Clone()
	mover := int(s[boardSize])
	next[action] = float64(mover)
	next[boardSize] = float64(other(mover))
	return next
}

func (t *TicTacToe) String() string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sb.WriteString(" " + markString(t.board[r*3+c], r*3+c) + " ")
			if c < 2 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
		if r < 2 {
			sb.WriteString("---+---+---\n")
		}
	}
	return sb.String()
}

func markString(m, idx int) string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	}
	return fmt.Sprint(idx + 1)
}

func other(mark int) int {
	if mark == X {
		return O
	}
	return X
}

func gameStatus(b [boardSize]int) Status {
	for _, l := range lines {
		m := b[l[0]]
		if m != Empty && m == b[l[1]] && m == b[l[2]] {
			if m == X {
				return XWins
			}
			return OWins
		}
	}
	if lo.Contains(b[:], Empty) {
		return InProgress
	}
	return Draw
}
