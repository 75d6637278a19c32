package fastparse

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEitherPicksFirstMatchingBranch(t *testing.T) {
	grammar := Either(Capture(Literal("A")), Capture(Literal("B")))

	value, index, ok := AsSuccess(Parse(grammar, "B"))
	require.True(t, ok)
	assert.Equal(t, "B", value)
	assert.Equal(t, 1, index)
}

func TestEitherFailsWhenNoBranchMatches(t *testing.T) {
	grammar := Either(Capture(Literal("A")), Capture(Literal("B")))

	last, index, ok := AsFailure(Parse(grammar, "C"))
	require.True(t, ok)
	assert.Equal(t, grammar, last)
	assert.Equal(t, 0, index)
}

func TestCutCommitsTheSequence(t *testing.T) {
	attempts := 0
	sibling := CharPred("sibling", func(r rune) bool {
		attempts++
		return true
	})
	committed := Seq(Cut(Literal("A")), Literal("B"))
	grammar := Either(committed, sibling)

	f, ok := Parse(grammar, "AC").(*Failure)
	require.True(t, ok)
	assert.True(t, f.Cut)
	assert.Equal(t, 1, f.Index())
	// the alternation saw a committed failure and never tried the
	// second branch
	assert.Equal(t, 0, attempts)
}

func TestEitherBacktracksWithoutCut(t *testing.T) {
	grammar := Either(
		Seq(Literal("A"), Literal("B")),
		Capture(Literal("AC")),
	)

	value, index, ok := AsSuccess(Parse(grammar, "AC"))
	require.True(t, ok)
	assert.Equal(t, "AC", value)
	assert.Equal(t, 2, index)
}

func TestNoCutContainsTheCommitment(t *testing.T) {
	grammar := Either(
		NoCut(Seq(Cut(Literal("A")), Literal("B"))),
		Capture(Literal("AC")),
	)

	value, _, ok := AsSuccess(Parse(grammar, "AC"))
	require.True(t, ok)
	assert.Equal(t, "AC", value)
}

func TestSeqThreadsTheCursor(t *testing.T) {
	grammar := Seq(Capture(Literal("a")), Literal("-"), Capture(Literal("b")))

	value, index, ok := AsSuccess(Parse(grammar, "a-b"))
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, value)
	assert.Equal(t, 3, index)
}

func TestSeqFailureKeepsChildCursor(t *testing.T) {
	grammar := Seq(Literal("ab"), Literal("cd"))

	_, index, ok := AsFailure(Parse(grammar, "abXX"))
	require.True(t, ok)
	assert.Equal(t, 2, index)
}

func TestOptMatchesOrSkips(t *testing.T) {
	grammar := Seq(Opt(Capture(Literal("+"))), Capture(Literal("1")))

	value, index, ok := AsSuccess(Parse(grammar, "+1"))
	require.True(t, ok)
	assert.Equal(t, []any{"+", "1"}, value)
	assert.Equal(t, 2, index)

	value, index, ok = AsSuccess(Parse(grammar, "1"))
	require.True(t, ok)
	assert.Equal(t, "1", value)
	assert.Equal(t, 1, index)
}

func TestOptDoesNotSwallowCut(t *testing.T) {
	grammar := Opt(Seq(Cut(Literal("A")), Literal("B")))

	f, ok := Parse(grammar, "AC").(*Failure)
	require.True(t, ok)
	assert.True(t, f.Cut)
}

func TestRepeatCollectsValues(t *testing.T) {
	tests := []struct {
		Name    string
		Grammar Parser
		Input   string
		Success bool
		Value   any
		Index   int
	}{
		{
			Name:    "zero matches",
			Grammar: Repeat(Capture(Literal("a"))),
			Input:   "b",
			Success: true,
			Value:   nil,
			Index:   0,
		},
		{
			Name:    "several matches",
			Grammar: Repeat(Capture(Literal("a"))),
			Input:   "aaab",
			Success: true,
			Value:   []any{"a", "a", "a"},
			Index:   3,
		},
		{
			Name:    "min unmet",
			Grammar: RepeatMin(Capture(Literal("a")), 2),
			Input:   "ab",
			Success: false,
		},
		{
			Name: "separated list",
			Grammar: RepeatSep(
				Capture(CharsWhile("digit", unicode.IsDigit, 1)),
				1,
				Literal(","),
			),
			Input:   "1,23,4",
			Success: true,
			Value:   []any{"1", "23", "4"},
			Index:   6,
		},
		{
			Name: "trailing separator is not consumed",
			Grammar: RepeatSep(
				Capture(CharsWhile("digit", unicode.IsDigit, 1)),
				1,
				Literal(","),
			),
			Input:   "1,2,",
			Success: true,
			Value:   []any{"1", "2"},
			Index:   3,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			r := Parse(test.Grammar, test.Input)
			if !test.Success {
				_, _, ok := AsFailure(r)
				require.True(t, ok)
				return
			}
			value, index, ok := AsSuccess(r)
			require.True(t, ok)
			assert.Equal(t, test.Value, value)
			assert.Equal(t, test.Index, index)
		})
	}
}

func TestRepeatStopsOnZeroWidthMatch(t *testing.T) {
	_, index, ok := AsSuccess(Parse(Repeat(Pass()), "abc"))
	require.True(t, ok)
	assert.Equal(t, 0, index)
}

func TestLookaheadConsumesNothing(t *testing.T) {
	grammar := Seq(Lookahead(Literal("ab")), Capture(Literal("a")))

	value, index, ok := AsSuccess(Parse(grammar, "ab"))
	require.True(t, ok)
	assert.Equal(t, "a", value)
	assert.Equal(t, 1, index)

	_, _, ok = AsFailure(Parse(grammar, "ax"))
	assert.True(t, ok)
}

func TestLookaheadDiscardsCut(t *testing.T) {
	grammar := Either(
		Seq(Lookahead(Cut(Literal("A"))), Literal("X")),
		Capture(Literal("A")),
	)

	value, _, ok := AsSuccess(Parse(grammar, "A"))
	require.True(t, ok)
	assert.Equal(t, "A", value)
}

func TestNotInvertsItsChild(t *testing.T) {
	keyword := Seq(Capture(Literal("if")), Not(CharRange('a', 'z')))

	value, index, ok := AsSuccess(Parse(keyword, "if("))
	require.True(t, ok)
	assert.Equal(t, "if", value)
	assert.Equal(t, 2, index)

	last, index, ok := AsFailure(Parse(keyword, "iffy"))
	require.True(t, ok)
	assert.Equal(t, 2, index)
	_, isNot := last.(*not)
	assert.True(t, isNot)
}

func TestMapTransformsTheValue(t *testing.T) {
	grammar := Map(Capture(CharsWhile("digit", unicode.IsDigit, 1)), func(v any) any {
		return len(v.(string))
	})

	value, _, ok := AsSuccess(Parse(grammar, "12345"))
	require.True(t, ok)
	assert.Equal(t, 5, value)
}

func TestRuleSupportsRecursion(t *testing.T) {
	var expr Parser
	expr = Rule("expr", func() Parser {
		return Either(
			Seq(Literal("("), expr, Literal(")")),
			Capture(Literal("x")),
		)
	})

	value, index, ok := AsSuccess(Parse(expr, "((x))"))
	require.True(t, ok)
	assert.Equal(t, "x", value)
	assert.Equal(t, 5, index)

	_, _, ok = AsFailure(Parse(expr, "((x)"))
	assert.True(t, ok)
}

func TestNamedWrapsAnExistingParser(t *testing.T) {
	digits := Named("digits", Capture(CharsWhile("digit", unicode.IsDigit, 1)))

	value, _, ok := AsSuccess(Parse(digits, "42"))
	require.True(t, ok)
	assert.Equal(t, "42", value)
	assert.True(t, digits.ShortTraced())
	assert.Equal(t, "digits", digits.String())
}

func TestTerminals(t *testing.T) {
	tests := []struct {
		Name    string
		Grammar Parser
		Input   string
		Success bool
		Index   int
	}{
		{Name: "literal", Grammar: Literal("abc"), Input: "abcd", Success: true, Index: 3},
		{Name: "literal miss", Grammar: Literal("abc"), Input: "abd", Success: false, Index: 0},
		{Name: "ignore case", Grammar: IgnoreCase("select"), Input: "SeLeCt", Success: true, Index: 6},
		{Name: "any char", Grammar: AnyChar(), Input: "é", Success: true, Index: 2},
		{Name: "any char at eof", Grammar: AnyChar(), Input: "", Success: false, Index: 0},
		{Name: "start", Grammar: Start(), Input: "a", Success: true, Index: 0},
		{Name: "end at eof", Grammar: End(), Input: "", Success: true, Index: 0},
		{Name: "end mid input", Grammar: End(), Input: "a", Success: false, Index: 0},
		{Name: "pass", Grammar: Pass(), Input: "", Success: true, Index: 0},
		{Name: "fail", Grammar: Fail(), Input: "a", Success: false, Index: 0},
		{Name: "char in", Grammar: CharIn("+-"), Input: "-", Success: true, Index: 1},
		{Name: "char in miss", Grammar: CharIn("+-"), Input: "*", Success: false, Index: 0},
		{Name: "char range", Grammar: CharRange('0', '9'), Input: "7", Success: true, Index: 1},
		{Name: "chars while", Grammar: CharsWhile("letter", unicode.IsLetter, 1), Input: "abc1", Success: true, Index: 3},
		{Name: "chars while min unmet", Grammar: CharsWhile("letter", unicode.IsLetter, 2), Input: "a1", Success: false, Index: 0},
		{Name: "string in longest", Grammar: StringIn("in", "int"), Input: "integer", Success: true, Index: 3},
		{Name: "regexp", Grammar: Regexp(`[0-9]+\.[0-9]+`), Input: "3.14x", Success: true, Index: 4},
		{Name: "regexp anchored", Grammar: Regexp(`[0-9]+`), Input: "x42", Success: false, Index: 0},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			r := Parse(test.Grammar, test.Input)
			_, isSuccess := r.(*Success)
			assert.Equal(t, test.Success, isSuccess)
			assert.Equal(t, test.Index, r.Index())
		})
	}
}

func TestIndexYieldsTheCurrentOffset(t *testing.T) {
	grammar := Seq(Literal("ab"), Index())

	value, _, ok := AsSuccess(Parse(grammar, "abc"))
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestSuccessCutSurvivesEnclosingSequence(t *testing.T) {
	grammar := Seq(Cut(Literal("a")), Literal("b"))

	s, ok := Parse(grammar, "ab").(*Success)
	require.True(t, ok)
	assert.True(t, s.Cut)
}
