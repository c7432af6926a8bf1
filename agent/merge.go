package agent

import (
	"github.com/rs/zerolog/log"
)

// Merge folds what src has learned into dst, leaving src untouched.
//
// For every state in src's value table: if dst never visited it, dst takes
// src's value outright; otherwise the estimates are averaged weighted by
// visit count and the summed count is halved. Transition counts are added.
// Merge must not run concurrently with anything else touching dst.
func Merge(dst, src *Agent) {
	before := dst.Values().Len()
	dst.mem.Merge(src.mem)
	log.Debug().Int("src-states", src.Values().Len()).
		Int("new-states", dst.Values().Len()-before).
		Int("transitions", dst.Transitions().Len()).
		Msg("merged-agent")
}
