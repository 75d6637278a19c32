package fastparse

import (
	"fmt"
)

// NoTrace is the sentinel traceIndex meaning no deep-trace capture was
// requested for the current parse.
const NoTrace = -1

// Parser is the contract every grammar element implements.  A Parser
// owns no mutable state of its own; everything that changes during a
// parse lives in the ParseCtx threaded through ParseRec.  That makes a
// Parser instance safe to share between combinators and between
// independent top-level parse calls.
type Parser interface {
	// ParseRec is the recursive entry point.  It must be
	// deterministic given (ctx.Input, index) and the parser's own
	// configuration, and must report its outcome through the
	// context's scratch cells: Succeed on a match, Fail when this
	// parser is the most specific failing site, FailMore when it is
	// merely propagating a child's failure one level up.
	ParseRec(ctx *ParseCtx, index int) Result

	// ShortTraced reports whether this parser shows up in the
	// abbreviated failure trace.  Named, user-facing rules return
	// true; anonymous plumbing returns false.
	ShortTraced() bool

	// OpPred is the display precedence of this parser's textual
	// form.  A child whose precedence is lower than its parent's
	// gets parenthesized when the parent renders itself.
	OpPred() int

	String() string
}

// Result is the outcome of one ParseRec invocation.  Exactly two
// variants exist: *Success and *Failure.  Index reports the final
// cursor position of the attempt, which is always within
// [0, len(input)].
type Result interface {
	Index() int
	result()
}

// Frame identifies a point in the recursive descent: parser p was
// active at input offset index.  Frames are cheap immutable values
// created only while a failure propagates upward.
type Frame struct {
	Index  int
	Parser Parser
}

// Success represents a completed parse ending at Index().  Value holds
// whatever the matched parsers produced; parsers that capture nothing
// produce nil.  Cut records whether a commit point was crossed while
// producing this success, which the enclosing alternation consults
// before trying a sibling branch.
//
// The Success returned by ParseRec is the context's shared scratch
// cell: its fields are overwritten by the next Succeed call, so a
// caller that needs them past a subsequent child invocation must copy
// them out first.
type Success struct {
	Value any
	Cut   bool

	index int
}

func (s *Success) Index() int { return s.index }
func (s *Success) result()    {}

func (s *Success) String() string {
	return fmt.Sprintf("Success(%v, %d)", s.Value, s.index)
}

// Failure represents a parse attempt that could not produce a value.
// LastParser is the deepest parser that failed; FullStack is the chain
// of enclosing parsers above it, appended one frame at a time as the
// failure unwinds, so the innermost frame sits first and the outermost
// last.  Cut, once set on the way up, is never cleared for this
// failure (see ParseCtx.FailMore).
//
// OriginalParser, OriginalIndex, TraceIndex and TraceParsers exist for
// trace reconstruction; see trace.go.  Like Success, the Failure
// handed back by ParseRec is the context's shared scratch cell.
type Failure struct {
	Input      string
	FullStack  []Frame
	LastParser Parser
	Cut        bool

	OriginalParser Parser
	OriginalIndex  int
	TraceIndex     int
	TraceParsers   []Parser

	index int
}

func (f *Failure) Index() int { return f.index }
func (f *Failure) result()    {}

func (f *Failure) String() string {
	return fmt.Sprintf("Failure(%s, %d)", f.LastParser, f.index)
}

// AsSuccess extracts (value, index) from a Result if it is a Success.
func AsSuccess(r Result) (value any, index int, ok bool) {
	if s, isSuccess := r.(*Success); isSuccess {
		return s.Value, s.index, true
	}
	return nil, 0, false
}

// AsFailure extracts (lastParser, index) from a Result if it is a
// Failure.
func AsFailure(r Result) (lastParser Parser, index int, ok bool) {
	if f, isFailure := r.(*Failure); isFailure {
		return f.LastParser, f.index, true
	}
	return nil, 0, false
}

// Instrument is the optional hook invoked by every named rule around
// its own recursive call.  The thunk performs the actual parse;
// instrumentation may call it zero, one, or several times (memoization
// experiments, counting, logging) but must hand back a Result.
type Instrument func(p Parser, index int, parse func() Result) Result

// ParseCtx is the value bundle threaded through every recursive call
// of one top-level parse.  It is immutable except for logDepth and the
// two embedded scratch cells, which every nested invocation reuses so
// that the hot path allocates nothing per call.  A context is never
// shared across top-level calls and must never be touched by two
// goroutines at once.
type ParseCtx struct {
	Input string

	logDepth   int
	trace      bool
	traceIndex int

	originalParser Parser
	originalIndex  int
	instrument     Instrument

	success Success
	failure Failure
}

func newParseCtx(p Parser, input string, index int, trace bool, traceIndex int, instrument Instrument) *ParseCtx {
	return &ParseCtx{
		Input:          input,
		trace:          trace,
		traceIndex:     traceIndex,
		originalParser: p,
		originalIndex:  index,
		instrument:     instrument,
	}
}

// Succeed overwrites the shared Success cell in place and returns it.
// The previous contents are gone after this call, which is exactly the
// point: one cell serves the whole descent.
func (c *ParseCtx) Succeed(value any, index int, cut bool) *Success {
	s := &c.success
	s.Value = value
	s.index = index
	s.Cut = cut
	return s
}

// Fail resets the shared Failure cell to report "p failed at index".
// The stack is cleared, cut and the last parser are recorded, and when
// index hits the context's traceIndex the parser is prepended to
// TraceParsers, keeping the most recent attempt first, so the deep
// trace knows every alternative attempted at that offset.
// TraceParsers deliberately survives the reset: it accumulates across
// sibling attempts for the whole parse.
func (c *ParseCtx) Fail(p Parser, index int, cut bool) *Failure {
	f := &c.failure
	f.Input = c.Input
	f.FullStack = f.FullStack[:0]
	f.LastParser = p
	f.Cut = cut
	f.OriginalParser = c.originalParser
	f.OriginalIndex = c.originalIndex
	f.TraceIndex = c.traceIndex
	f.index = index
	if index == c.traceIndex {
		f.TraceParsers = append([]Parser{p}, f.TraceParsers...)
	}
	return f
}

// FailMore is called by an enclosing combinator as a failure
// propagates one level up through p.  When tracing is on it records a
// Frame for the level being crossed.  Cut is ORed in, never cleared:
// once a failure is committed it stays committed all the way up.
func (c *ParseCtx) FailMore(f *Failure, p Parser, index int, cut bool) *Failure {
	if c.trace {
		f.FullStack = append(f.FullStack, Frame{Index: index, Parser: p})
	}
	f.Cut = f.Cut || cut
	return f
}

// ContractError reports a violation of the programming contract
// between this core and the combinator layer, like a nondeterministic
// parser or an instrument hook returning nil.  It is raised as a
// panic because it is a bug in the grammar's construction, not a
// data-dependent parse failure; those are always Failure values.
type ContractError struct {
	Message string
}

func (e ContractError) Error() string { return e.Message }

func contractViolation(format string, args ...any) {
	panic(ContractError{Message: fmt.Sprintf(format, args...)})
}
