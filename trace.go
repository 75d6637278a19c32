package fastparse

import (
	"math"
	"strconv"
	"strings"
)

// Display precedences, lowest binds loosest.  Anything that is not an
// operator form renders at predMax and never gets parenthesized.
const (
	predEither = 1
	predSeq    = 2
	predPrefix = 3
	predMax    = math.MaxInt32
)

// opWrap renders child for embedding inside parent's textual form,
// adding parentheses when the child binds looser than the parent.
func opWrap(parent, child Parser) string {
	if child.OpPred() < parent.OpPred() {
		return "(" + child.String() + ")"
	}
	return child.String()
}

// frameText renders a frame's parser for display next to its offset.
// Operator forms get parenthesized so the ":index" suffix cannot read
// as part of the last operand.
func frameText(p Parser) string {
	if p.OpPred() < predMax {
		return "(" + p.String() + ")"
	}
	return p.String()
}

// literalize quotes and escapes s the way it would appear in source,
// so control characters in the input stay readable in traces.
func literalize(s string) string {
	return strconv.Quote(s)
}

// sliceRunes takes up to n characters of s starting at byte offset
// index.  Trace snippets are measured in characters, not bytes, so a
// multi-byte rune never gets chopped in half.
func sliceRunes(s string, index, n int) string {
	if index >= len(s) {
		return ""
	}
	end := index
	for i := 0; i < n && end < len(s); i++ {
		_, size := decodeRune(s[end:])
		end += size
	}
	return s[index:end]
}

// FullTrace returns every distinct parser that was attempted at the
// failing offset.  When the original descent already captured them
// (its traceIndex happened to match), they are used directly.
// Otherwise the entire parse is replayed once from the original
// parser and start index, this time with the traceIndex aimed at the
// known failure offset, and the capture from that second pass is kept.
// Knowing the offset in advance is what makes the capture cheap; the
// first pass cannot know it, so it never pays for it.
func (f *Failure) FullTrace() []Parser {
	if len(f.TraceParsers) == 0 {
		f.TraceParsers = f.reparse()
	}
	return distinctParsers(f.TraceParsers)
}

func (f *Failure) reparse() []Parser {
	if f.OriginalParser == nil {
		contractViolation("trace requested on a failure with no original parser recorded")
	}
	r := Parse(f.OriginalParser, f.Input,
		WithIndex(f.OriginalIndex),
		WithTrace(true),
		WithTraceIndex(f.index))
	second, ok := r.(*Failure)
	if !ok {
		contractViolation("trace replay of %s unexpectedly succeeded; parsers must be deterministic", f.OriginalParser)
	}
	if len(second.TraceParsers) == 0 {
		contractViolation("trace replay of %s captured nothing at offset %d", f.OriginalParser, f.index)
	}
	return second.TraceParsers
}

func distinctParsers(ps []Parser) []Parser {
	seen := make(map[Parser]struct{}, len(ps))
	out := make([]Parser, 0, len(ps))
	for _, p := range ps {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Stack collapses the full failure stack into the short trace: only
// frames whose parser is short-traced survive, ordered outermost
// first, and a final synthetic frame at the failing offset holds the
// alternation of everything that could have matched there.
func (f *Failure) Stack() []Frame {
	frames := make([]Frame, 0, len(f.FullStack)+1)
	for i := len(f.FullStack) - 1; i >= 0; i-- {
		if fr := f.FullStack[i]; fr.Parser.ShortTraced() {
			frames = append(frames, fr)
		}
	}
	return append(frames, Frame{Index: f.index, Parser: Either(f.FullTrace()...)})
}

// Trace renders the short trace on a single line: each frame as
// parser:index joined by " / ", then the next ten characters of input
// at the failure site.
func (f *Failure) Trace() string {
	var b strings.Builder
	for i, fr := range f.Stack() {
		if i > 0 {
			b.WriteString(" / ")
		}
		b.WriteString(frameText(fr.Parser))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(fr.Index))
	}
	b.WriteString(" ... ")
	b.WriteString(literalize(sliceRunes(f.Input, f.index, 10)))
	return b.String()
}

// VerboseTrace renders the short trace one frame per line, each with
// its offset and a five-character peek at the input from there.
func (f *Failure) VerboseTrace() string {
	var b strings.Builder
	for i, fr := range f.Stack() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(fr.Index))
		b.WriteString("\t...")
		b.WriteString(literalize(sliceRunes(f.Input, fr.Index, 5)))
		b.WriteByte('\t')
		b.WriteString(frameText(fr.Parser))
	}
	return b.String()
}
