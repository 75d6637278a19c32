package fastparse

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Indices are byte offsets into the input; terminal matchers that
// inspect single characters decode runes at the cursor so multi-byte
// input behaves.
func decodeRune(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

// literal matches an exact string.  It produces no value; wrap it in
// Capture to keep the matched text.
type literal struct {
	s string
}

// Literal returns a parser matching exactly s.
func Literal(s string) Parser { return &literal{s: s} }

func (l *literal) ParseRec(ctx *ParseCtx, index int) Result {
	if strings.HasPrefix(ctx.Input[index:], l.s) {
		return ctx.Succeed(nil, index+len(l.s), false)
	}
	return ctx.Fail(l, index, false)
}

func (l *literal) ShortTraced() bool { return false }
func (l *literal) OpPred() int       { return predMax }
func (l *literal) String() string    { return literalize(l.s) }

// ignoreCase matches s case-insensitively.  It compares len(s) bytes
// of input, so it is meant for the usual keyword/identifier cases, not
// for case foldings that change length.
type ignoreCase struct {
	s string
}

// IgnoreCase returns a parser matching s without regard to case.
func IgnoreCase(s string) Parser { return &ignoreCase{s: s} }

func (l *ignoreCase) ParseRec(ctx *ParseCtx, index int) Result {
	end := index + len(l.s)
	if end <= len(ctx.Input) && strings.EqualFold(ctx.Input[index:end], l.s) {
		return ctx.Succeed(nil, end, false)
	}
	return ctx.Fail(l, index, false)
}

func (l *ignoreCase) ShortTraced() bool { return false }
func (l *ignoreCase) OpPred() int       { return predMax }
func (l *ignoreCase) String() string    { return "IgnoreCase(" + literalize(l.s) + ")" }

// anyChar consumes any single character, failing only at end of input.
type anyChar struct{}

// AnyChar returns a parser consuming exactly one character.
func AnyChar() Parser { return anyCharInstance }

var anyCharInstance = &anyChar{}

func (a *anyChar) ParseRec(ctx *ParseCtx, index int) Result {
	if index >= len(ctx.Input) {
		return ctx.Fail(a, index, false)
	}
	_, size := decodeRune(ctx.Input[index:])
	return ctx.Succeed(nil, index+size, false)
}

func (a *anyChar) ShortTraced() bool { return false }
func (a *anyChar) OpPred() int       { return predMax }
func (a *anyChar) String() string    { return "AnyChar" }

// start succeeds only at offset zero, consuming nothing.
type start struct{}

// Start returns a parser anchoring the match to the beginning of the
// input.
func Start() Parser { return startInstance }

var startInstance = &start{}

func (s *start) ParseRec(ctx *ParseCtx, index int) Result {
	if index == 0 {
		return ctx.Succeed(nil, index, false)
	}
	return ctx.Fail(s, index, false)
}

func (s *start) ShortTraced() bool { return false }
func (s *start) OpPred() int       { return predMax }
func (s *start) String() string    { return "Start" }

// end succeeds only when the whole input has been consumed.
type end struct{}

// End returns a parser anchoring the match to the end of the input.
func End() Parser { return endInstance }

var endInstance = &end{}

func (e *end) ParseRec(ctx *ParseCtx, index int) Result {
	if index == len(ctx.Input) {
		return ctx.Succeed(nil, index, false)
	}
	return ctx.Fail(e, index, false)
}

func (e *end) ShortTraced() bool { return false }
func (e *end) OpPred() int       { return predMax }
func (e *end) String() string    { return "End" }

// pass always succeeds without consuming; fail always fails.  Both are
// useful as identities when assembling grammars programmatically.
type pass struct{}

// Pass returns a parser that succeeds consuming nothing.
func Pass() Parser { return passInstance }

var passInstance = &pass{}

func (p *pass) ParseRec(ctx *ParseCtx, index int) Result {
	return ctx.Succeed(nil, index, false)
}

func (p *pass) ShortTraced() bool { return false }
func (p *pass) OpPred() int       { return predMax }
func (p *pass) String() string    { return "Pass" }

type failParser struct{}

// Fail returns a parser that fails at any offset.
func Fail() Parser { return failInstance }

var failInstance = &failParser{}

func (p *failParser) ParseRec(ctx *ParseCtx, index int) Result {
	return ctx.Fail(p, index, false)
}

func (p *failParser) ShortTraced() bool { return false }
func (p *failParser) OpPred() int       { return predMax }
func (p *failParser) String() string    { return "Fail" }

// indexParser yields the current offset as its value, consuming
// nothing.
type indexParser struct{}

// Index returns a parser whose value is the current byte offset.
func Index() Parser { return indexInstance }

var indexInstance = &indexParser{}

func (p *indexParser) ParseRec(ctx *ParseCtx, index int) Result {
	return ctx.Succeed(index, index, false)
}

func (p *indexParser) ShortTraced() bool { return false }
func (p *indexParser) OpPred() int       { return predMax }
func (p *indexParser) String() string    { return "Index" }

// charIn matches one character drawn from an explicit set.
type charIn struct {
	chars string
	set   map[rune]struct{}
}

// CharIn returns a parser matching any single character in chars.
func CharIn(chars string) Parser {
	set := make(map[rune]struct{}, len(chars))
	for _, r := range chars {
		set[r] = struct{}{}
	}
	return &charIn{chars: chars, set: set}
}

func (c *charIn) ParseRec(ctx *ParseCtx, index int) Result {
	if index < len(ctx.Input) {
		r, size := decodeRune(ctx.Input[index:])
		if _, ok := c.set[r]; ok {
			return ctx.Succeed(nil, index+size, false)
		}
	}
	return ctx.Fail(c, index, false)
}

func (c *charIn) ShortTraced() bool { return false }
func (c *charIn) OpPred() int       { return predMax }
func (c *charIn) String() string    { return "CharIn(" + literalize(c.chars) + ")" }

// charRange matches one character between lo and hi inclusive.
type charRange struct {
	lo, hi rune
}

// CharRange returns a parser matching a single character in
// [lo, hi].
func CharRange(lo, hi rune) Parser { return &charRange{lo: lo, hi: hi} }

func (c *charRange) ParseRec(ctx *ParseCtx, index int) Result {
	if index < len(ctx.Input) {
		r, size := decodeRune(ctx.Input[index:])
		if r >= c.lo && r <= c.hi {
			return ctx.Succeed(nil, index+size, false)
		}
	}
	return ctx.Fail(c, index, false)
}

func (c *charRange) ShortTraced() bool { return false }
func (c *charRange) OpPred() int       { return predMax }

func (c *charRange) String() string {
	return "CharIn(" + literalize(string(c.lo)+"-"+string(c.hi)) + ")"
}

// charPred matches one character satisfying an arbitrary predicate.
type charPred struct {
	name string
	pred func(rune) bool
}

// CharPred returns a parser matching a single character for which
// pred returns true.  The name only shows up in traces.
func CharPred(name string, pred func(rune) bool) Parser {
	return &charPred{name: name, pred: pred}
}

func (c *charPred) ParseRec(ctx *ParseCtx, index int) Result {
	if index < len(ctx.Input) {
		r, size := decodeRune(ctx.Input[index:])
		if c.pred(r) {
			return ctx.Succeed(nil, index+size, false)
		}
	}
	return ctx.Fail(c, index, false)
}

func (c *charPred) ShortTraced() bool { return false }
func (c *charPred) OpPred() int       { return predMax }
func (c *charPred) String() string    { return "CharPred(" + c.name + ")" }

// charsWhile greedily consumes characters satisfying pred, requiring
// at least min of them.
type charsWhile struct {
	name string
	pred func(rune) bool
	min  int
}

// CharsWhile returns a parser consuming the longest run of characters
// for which pred holds, failing when the run is shorter than min.
func CharsWhile(name string, pred func(rune) bool, min int) Parser {
	return &charsWhile{name: name, pred: pred, min: min}
}

func (c *charsWhile) ParseRec(ctx *ParseCtx, index int) Result {
	cur := index
	count := 0
	for cur < len(ctx.Input) {
		r, size := decodeRune(ctx.Input[cur:])
		if !c.pred(r) {
			break
		}
		cur += size
		count++
	}
	if count < c.min {
		return ctx.Fail(c, index, false)
	}
	return ctx.Succeed(nil, cur, false)
}

func (c *charsWhile) ShortTraced() bool { return false }
func (c *charsWhile) OpPred() int       { return predMax }
func (c *charsWhile) String() string    { return "CharsWhile(" + c.name + ")" }

// stringIn matches the longest of a fixed set of strings.
type stringIn struct {
	display []string
	sorted  []string
}

// StringIn returns a parser matching whichever of ss is the longest
// prefix of the remaining input.
func StringIn(ss ...string) Parser {
	sorted := make([]string, len(ss))
	copy(sorted, ss)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return &stringIn{display: ss, sorted: sorted}
}

func (s *stringIn) ParseRec(ctx *ParseCtx, index int) Result {
	for _, candidate := range s.sorted {
		if strings.HasPrefix(ctx.Input[index:], candidate) {
			return ctx.Succeed(nil, index+len(candidate), false)
		}
	}
	return ctx.Fail(s, index, false)
}

func (s *stringIn) ShortTraced() bool { return false }
func (s *stringIn) OpPred() int       { return predMax }

func (s *stringIn) String() string {
	quoted := make([]string, len(s.display))
	for i, v := range s.display {
		quoted[i] = literalize(v)
	}
	return "StringIn(" + strings.Join(quoted, ", ") + ")"
}

// regexParser matches a regular expression anchored at the cursor.
type regexParser struct {
	pattern string
	re      *regexp.Regexp
}

// Regexp returns a parser matching pattern at the current offset.
// The pattern is compiled once, anchored, at construction; an invalid
// pattern is a grammar-construction bug and panics.
func Regexp(pattern string) Parser {
	re, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		contractViolation("invalid regex %q: %v", pattern, err)
	}
	return &regexParser{pattern: pattern, re: re}
}

func (r *regexParser) ParseRec(ctx *ParseCtx, index int) Result {
	loc := r.re.FindStringIndex(ctx.Input[index:])
	if loc == nil {
		return ctx.Fail(r, index, false)
	}
	return ctx.Succeed(nil, index+loc[1], false)
}

func (r *regexParser) ShortTraced() bool { return false }
func (r *regexParser) OpPred() int       { return predMax }
func (r *regexParser) String() string    { return "Regexp(" + literalize(r.pattern) + ")" }
