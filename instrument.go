package fastparse

import (
	"go.uber.org/zap"
)

// NewLogInstrument returns an Instrument that logs every named-rule
// invocation and its outcome at debug level.  It calls the thunk
// exactly once, so parse semantics are untouched.
func NewLogInstrument(logger *zap.Logger) Instrument {
	return func(p Parser, index int, parse func() Result) Result {
		res := parse()
		switch r := res.(type) {
		case *Success:
			logger.Debug("rule matched",
				zap.Stringer("rule", p),
				zap.Int("index", index),
				zap.Int("end", r.Index()))
		case *Failure:
			logger.Debug("rule failed",
				zap.Stringer("rule", p),
				zap.Int("index", index),
				zap.Int("at", r.Index()),
				zap.Bool("cut", r.Cut))
		}
		return res
	}
}

// RuleCounter tallies named-rule invocations by rule name.  Useful
// for profiling a grammar or sanity-checking memoization experiments.
type RuleCounter struct {
	Counts map[string]int
}

// NewRuleCounter returns an empty counter.
func NewRuleCounter() *RuleCounter {
	return &RuleCounter{Counts: map[string]int{}}
}

// Instrument returns the hook that does the counting.  Not safe for
// concurrent parse calls; use one counter per call.
func (c *RuleCounter) Instrument() Instrument {
	return func(p Parser, index int, parse func() Result) Result {
		c.Counts[p.String()]++
		return parse()
	}
}
