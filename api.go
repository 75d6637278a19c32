package fastparse

// ParseOption adjusts a single top-level Parse call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	index      int
	trace      bool
	traceIndex int
	instrument Instrument
}

// WithIndex starts the parse at the given byte offset instead of 0.
func WithIndex(index int) ParseOption {
	return func(cfg *parseConfig) { cfg.index = index }
}

// WithTrace controls whether failures record their enclosing-parser
// stack while unwinding.  It defaults to true; turning it off removes
// the per-level Frame bookkeeping on the failure path.
func WithTrace(trace bool) ParseOption {
	return func(cfg *parseConfig) { cfg.trace = trace }
}

// WithTraceIndex requests deep-trace capture at the given offset:
// every parser that fails exactly there is collected into the
// failure's TraceParsers.  This is what the second trace-recovery pass
// uses once it knows where the parse died.
func WithTraceIndex(traceIndex int) ParseOption {
	return func(cfg *parseConfig) { cfg.traceIndex = traceIndex }
}

// WithInstrument installs a hook invoked around every named rule.  A
// nil hook means rules call straight through with no indirection.
func WithInstrument(instrument Instrument) ParseOption {
	return func(cfg *parseConfig) { cfg.instrument = instrument }
}

// Parse runs p against input from the configured start offset.  It
// builds exactly one ParseCtx, scratch cells included, for the entire
// recursive descent, and returns whichever scratch cell the descent
// ended in.  The result is only valid until the next Parse call that
// could reuse it; copy out any fields that must live longer.
func Parse(p Parser, input string, opts ...ParseOption) Result {
	cfg := parseConfig{trace: true, traceIndex: NoTrace}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.index < 0 || cfg.index > len(input) {
		contractViolation("parse start index %d outside input of length %d", cfg.index, len(input))
	}
	ctx := newParseCtx(p, input, cfg.index, cfg.trace, cfg.traceIndex, cfg.instrument)
	return p.ParseRec(ctx, cfg.index)
}
