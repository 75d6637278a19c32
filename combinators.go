package fastparse

import (
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// joinValues merges the values of two sequenced parsers.  Parsers
// that capture nothing produce nil and drop out; multiple captures
// collect into a flat []any.
func joinValues(a, b any) any {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	if xs, ok := a.([]any); ok {
		out := make([]any, 0, len(xs)+1)
		out = append(out, xs...)
		return append(out, b)
	}
	return []any{a, b}
}

// sequence runs p1 then p2 from wherever p1 ended.  A failure in p2
// inherits the commitment of everything already crossed: p1's success
// cut is ORed into it, so an enclosing alternation knows it may not
// retry.
type sequence struct {
	p1, p2 Parser
}

// Seq returns a parser matching each of ps in order, folding them
// into nested pairs.
func Seq(ps ...Parser) Parser {
	if len(ps) == 0 {
		return Pass()
	}
	p := ps[0]
	for _, next := range ps[1:] {
		p = &sequence{p1: p, p2: next}
	}
	return p
}

func (s *sequence) ParseRec(ctx *ParseCtx, index int) Result {
	r1 := s.p1.ParseRec(ctx, index)
	s1, ok := r1.(*Success)
	if !ok {
		f := r1.(*Failure)
		return ctx.FailMore(f, s, index, f.Cut)
	}

	// The success cell is about to be reused by p2; keep what we
	// need from p1 before that happens.
	value1, index1, cut1 := s1.Value, s1.Index(), s1.Cut

	switch r2 := s.p2.ParseRec(ctx, index1).(type) {
	case *Failure:
		return ctx.FailMore(r2, s, index, cut1 || r2.Cut)
	case *Success:
		return ctx.Succeed(joinValues(value1, r2.Value), r2.Index(), cut1 || r2.Cut)
	}
	return nil
}

func (s *sequence) ShortTraced() bool { return false }
func (s *sequence) OpPred() int       { return predSeq }

func (s *sequence) String() string {
	return opWrap(s, s.p1) + " ~ " + opWrap(s, s.p2)
}

// cut marks a commit point: once its child succeeds, backtracking
// past this point is disallowed, so the success carries Cut=true.
type cut struct {
	p Parser
}

// Cut returns p with a commit point on its success.  An alternation
// that sees a later failure carrying this commitment stops trying
// siblings.
func Cut(p Parser) Parser { return &cut{p: p} }

func (c *cut) ParseRec(ctx *ParseCtx, index int) Result {
	switch r := c.p.ParseRec(ctx, index).(type) {
	case *Failure:
		return ctx.FailMore(r, c, index, r.Cut)
	case *Success:
		return ctx.Succeed(r.Value, r.Index(), true)
	}
	return nil
}

func (c *cut) ShortTraced() bool { return false }
func (c *cut) OpPred() int       { return c.p.OpPred() }
func (c *cut) String() string    { return c.p.String() + ".~!" }

// noCut opens a fresh cut scope: whatever commitments its child
// crossed stay inside.  This is the one place a true cut flag may be
// dropped, because the results it applies to are the ones noCut
// itself returns.
type noCut struct {
	p Parser
}

// NoCut returns p with any commit points inside it contained, so an
// enclosing alternation may still backtrack across it.
func NoCut(p Parser) Parser { return &noCut{p: p} }

func (n *noCut) ParseRec(ctx *ParseCtx, index int) Result {
	switch r := n.p.ParseRec(ctx, index).(type) {
	case *Failure:
		r.Cut = false
		return ctx.FailMore(r, n, index, false)
	case *Success:
		return ctx.Succeed(r.Value, r.Index(), false)
	}
	return nil
}

func (n *noCut) ShortTraced() bool { return false }
func (n *noCut) OpPred() int       { return n.p.OpPred() }
func (n *noCut) String() string    { return "NoCut(" + n.p.String() + ")" }

// either is ordered choice: alternatives are tried in order from the
// same offset, and the first success wins.  A failure that crossed a
// commit point ends the whole choice on the spot.
type either struct {
	ps []Parser
}

// Either returns a parser trying each of ps in order and keeping the
// first success.
func Either(ps ...Parser) Parser { return &either{ps: ps} }

func (e *either) ParseRec(ctx *ParseCtx, index int) Result {
	for _, p := range e.ps {
		switch r := p.ParseRec(ctx, index).(type) {
		case *Success:
			return ctx.Succeed(r.Value, r.Index(), r.Cut)
		case *Failure:
			if r.Cut {
				return ctx.FailMore(r, e, index, true)
			}
		}
	}
	return ctx.Fail(e, index, false)
}

func (e *either) ShortTraced() bool { return false }
func (e *either) OpPred() int       { return predEither }

func (e *either) String() string {
	parts := make([]string, len(e.ps))
	for i, p := range e.ps {
		parts[i] = opWrap(e, p)
	}
	return strings.Join(parts, " | ")
}

// repeat matches p as many times as it will go, at least min times,
// with an optional separator between consecutive matches.
type repeat struct {
	p   Parser
	min int
	sep Parser
}

// Repeat returns a parser matching p zero or more times.
func Repeat(p Parser) Parser { return &repeat{p: p} }

// RepeatMin returns a parser matching p at least min times.
func RepeatMin(p Parser, min int) Parser { return &repeat{p: p, min: min} }

// RepeatSep returns a parser matching p at least min times with sep
// between consecutive matches.  The separator's value is dropped.
func RepeatSep(p Parser, min int, sep Parser) Parser {
	return &repeat{p: p, min: min, sep: sep}
}

func (r *repeat) ParseRec(ctx *ParseCtx, index int) Result {
	var (
		values  []any
		count   int
		lastEnd = index
		crossed bool
		cursor  = index
	)
	for {
		sepCut := false
		bodyStart := cursor
		if count > 0 && r.sep != nil {
			switch rs := r.sep.ParseRec(ctx, cursor).(type) {
			case *Failure:
				if rs.Cut {
					return ctx.FailMore(rs, r, index, true)
				}
				return r.finish(ctx, index, lastEnd, count, values, crossed)
			case *Success:
				bodyStart = rs.Index()
				sepCut = rs.Cut
			}
		}
		switch rb := r.p.ParseRec(ctx, bodyStart).(type) {
		case *Failure:
			if rb.Cut || sepCut {
				return ctx.FailMore(rb, r, index, true)
			}
			if count < r.min {
				return ctx.FailMore(rb, r, index, false)
			}
			return r.finish(ctx, index, lastEnd, count, values, crossed)
		case *Success:
			if rb.Value != nil {
				values = append(values, rb.Value)
			}
			crossed = crossed || rb.Cut
			count++
			lastEnd = rb.Index()
			// a zero-width match would repeat forever
			if lastEnd == bodyStart {
				return r.finish(ctx, index, lastEnd, count, values, crossed)
			}
			cursor = lastEnd
		}
	}
}

func (r *repeat) finish(ctx *ParseCtx, index, end, count int, values []any, crossed bool) Result {
	if count < r.min {
		return ctx.Fail(r, end, crossed)
	}
	var value any
	if len(values) > 0 {
		value = values
	}
	return ctx.Succeed(value, end, crossed)
}

func (r *repeat) ShortTraced() bool { return false }
func (r *repeat) OpPred() int       { return predMax }

func (r *repeat) String() string {
	var b strings.Builder
	b.WriteString(opWrap(r, r.p))
	b.WriteString(".rep")
	if r.min > 0 || r.sep != nil {
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(r.min))
		if r.sep != nil {
			b.WriteString(", ")
			b.WriteString(r.sep.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// optional tries p and succeeds either way, consuming nothing on the
// miss.  A committed failure still propagates; Opt is not a way to
// swallow cuts.
type optional struct {
	p Parser
}

// Opt returns a parser matching p or nothing.
func Opt(p Parser) Parser { return &optional{p: p} }

func (o *optional) ParseRec(ctx *ParseCtx, index int) Result {
	switch r := o.p.ParseRec(ctx, index).(type) {
	case *Failure:
		if r.Cut {
			return ctx.FailMore(r, o, index, true)
		}
		return ctx.Succeed(nil, index, false)
	case *Success:
		return ctx.Succeed(r.Value, r.Index(), r.Cut)
	}
	return nil
}

func (o *optional) ShortTraced() bool { return false }
func (o *optional) OpPred() int       { return predMax }
func (o *optional) String() string    { return opWrap(o, o.p) + ".?" }

// lookahead checks that p matches here without consuming anything.
// Predicates never consume, so commitments made inside one are
// discarded on the way out.
type lookahead struct {
	p Parser
}

// Lookahead returns a parser succeeding when p would match at the
// current offset, consuming nothing.
func Lookahead(p Parser) Parser { return &lookahead{p: p} }

func (l *lookahead) ParseRec(ctx *ParseCtx, index int) Result {
	switch r := l.p.ParseRec(ctx, index).(type) {
	case *Failure:
		r.Cut = false
		return ctx.FailMore(r, l, index, false)
	case *Success:
		return ctx.Succeed(nil, index, false)
	}
	return nil
}

func (l *lookahead) ShortTraced() bool { return false }
func (l *lookahead) OpPred() int       { return predPrefix }
func (l *lookahead) String() string    { return "&" + opWrap(l, l.p) }

// not is negative lookahead: it succeeds exactly when p fails,
// consuming nothing either way.
type not struct {
	p Parser
}

// Not returns a parser succeeding when p does not match at the
// current offset.
func Not(p Parser) Parser { return &not{p: p} }

func (n *not) ParseRec(ctx *ParseCtx, index int) Result {
	switch n.p.ParseRec(ctx, index).(type) {
	case *Failure:
		return ctx.Succeed(nil, index, false)
	case *Success:
		return ctx.Fail(n, index, false)
	}
	return nil
}

func (n *not) ShortTraced() bool { return false }
func (n *not) OpPred() int       { return predPrefix }
func (n *not) String() string    { return "!" + opWrap(n, n.p) }

// capture keeps the slice of input its child consumed as the value.
type capture struct {
	p Parser
}

// Capture returns p with its matched text as the value.
func Capture(p Parser) Parser { return &capture{p: p} }

func (c *capture) ParseRec(ctx *ParseCtx, index int) Result {
	switch r := c.p.ParseRec(ctx, index).(type) {
	case *Failure:
		return ctx.FailMore(r, c, index, r.Cut)
	case *Success:
		return ctx.Succeed(ctx.Input[index:r.Index()], r.Index(), r.Cut)
	}
	return nil
}

func (c *capture) ShortTraced() bool { return false }
func (c *capture) OpPred() int       { return c.p.OpPred() }
func (c *capture) String() string    { return c.p.String() + ".!" }

// mapper transforms the value of a successful child parse.
type mapper struct {
	p  Parser
	fn func(any) any
}

// Map returns p with fn applied to its value on success.
func Map(p Parser, fn func(any) any) Parser { return &mapper{p: p, fn: fn} }

func (m *mapper) ParseRec(ctx *ParseCtx, index int) Result {
	switch r := m.p.ParseRec(ctx, index).(type) {
	case *Failure:
		return ctx.FailMore(r, m, index, r.Cut)
	case *Success:
		return ctx.Succeed(m.fn(r.Value), r.Index(), r.Cut)
	}
	return nil
}

func (m *mapper) ShortTraced() bool { return false }
func (m *mapper) OpPred() int       { return m.p.OpPred() }
func (m *mapper) String() string    { return m.p.String() }

// rule is a named grammar production.  Its body is resolved lazily
// through a thunk so productions may refer to each other (and to
// themselves) before the whole grammar exists.  Rules are the frames
// users see in short traces, and the only place the instrumentation
// hook fires.
type rule struct {
	name    string
	resolve func() Parser

	once sync.Once
	p    Parser
}

// Rule returns a named parser whose body is produced by resolve on
// first use.  For non-recursive productions Named is the simpler
// form.
func Rule(name string, resolve func() Parser) Parser {
	return &rule{name: name, resolve: resolve}
}

// Named wraps an already-built parser under a rule name.
func Named(name string, p Parser) Parser {
	return Rule(name, func() Parser { return p })
}

func (r *rule) body() Parser {
	// resolution must be safe under concurrent top-level parses
	// sharing one grammar
	r.once.Do(func() {
		r.p = r.resolve()
		if r.p == nil {
			contractViolation("rule %s resolved to a nil parser", r.name)
		}
	})
	return r.p
}

func (r *rule) ParseRec(ctx *ParseCtx, index int) Result {
	if ctx.instrument == nil {
		return r.parseBody(ctx, index)
	}
	res := ctx.instrument(r, index, func() Result {
		return r.parseBody(ctx, index)
	})
	if res == nil {
		contractViolation("instrument returned no result for rule %s at %d", r.name, index)
	}
	return res
}

func (r *rule) parseBody(ctx *ParseCtx, index int) Result {
	switch res := r.body().ParseRec(ctx, index).(type) {
	case *Failure:
		return ctx.FailMore(res, r, index, res.Cut)
	case *Success:
		return ctx.Succeed(res.Value, res.Index(), res.Cut)
	}
	return nil
}

func (r *rule) ShortTraced() bool { return true }
func (r *rule) OpPred() int       { return predMax }
func (r *rule) String() string    { return r.name }

// logged wraps a parser with enter/exit debug logging, indented by
// the context's nesting depth.  Purely observational; results pass
// through untouched.
type logged struct {
	p      Parser
	name   string
	logger *zap.SugaredLogger
}

// Logged returns p with debug logging of every invocation under the
// given name.
func Logged(p Parser, name string, logger *zap.SugaredLogger) Parser {
	return &logged{p: p, name: name, logger: logger}
}

func (l *logged) ParseRec(ctx *ParseCtx, index int) Result {
	indent := strings.Repeat("  ", ctx.logDepth)
	l.logger.Debugf("%s+%s:%d", indent, l.name, index)
	ctx.logDepth++
	res := l.p.ParseRec(ctx, index)
	ctx.logDepth--
	switch r := res.(type) {
	case *Success:
		l.logger.Debugf("%s-%s:%d success at %d", indent, l.name, index, r.Index())
	case *Failure:
		l.logger.Debugf("%s-%s:%d failure at %d (cut=%t)", indent, l.name, index, r.Index(), r.Cut)
	}
	return res
}

func (l *logged) ShortTraced() bool { return l.p.ShortTraced() }
func (l *logged) OpPred() int       { return l.p.OpPred() }
func (l *logged) String() string    { return l.p.String() }
