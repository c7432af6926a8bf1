package policy

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tabrl/state"
	"github.com/domino14/tabrl/transition"
)

// LineReader is where a human's input comes from. *readline.Instance
// satisfies it.
type LineReader interface {
	Readline() (string, error)
}

// HumanPolicy asks a person to choose. It blocks until a legal action is
// entered; actions are shown and read 1-based. Entering q or quit returns
// ErrQuit, as does closing the input.
type HumanPolicy struct {
	In  LineReader
	Out io.Writer
}

func NewHuman(in LineReader, out io.Writer) *HumanPolicy {
	if out == nil {
		out = io.Discard
	}
	return &HumanPolicy{In: in, Out: out}
}

func (p *HumanPolicy) Name() string { return Human }

func (p *HumanPolicy) SelectAction(s state.State, actions []int) (int, error) {
	if len(actions) == 0 {
		return transition.NoAction, ErrNoActions
	}
	if p.In == nil {
		return transition.NoAction, ErrQuit
	}
	shown := lo.Map(actions, func(a int, _ int) int { return a + 1 })
	for {
		fmt.Fprintf(p.Out, "available actions: %v\n", shown)
		line, err := p.In.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return transition.NoAction, ErrQuit
		} else if err != nil {
			return transition.NoAction, err
		}
		fields, err := shellquote.Split(line)
		if err != nil || len(fields) == 0 {
			fmt.Fprintf(p.Out, "Illegal action: %q\n", line)
			continue
		}
		in := strings.ToLower(fields[0])
		if strings.HasPrefix(in, "q") || strings.Contains(in, "quit") {
			log.Debug().Msg("human-quit")
			return transition.NoAction, ErrQuit
		}
		n, err := strconv.Atoi(in)
		if err == nil && lo.Contains(actions, n-1) {
			return n - 1, nil
		}
		fmt.Fprintf(p.Out, "Illegal action: %q\n", line)
	}
}
