package fastparse

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	headerColor  = color.New(color.FgRed, color.Bold)
	parserColor  = color.New(color.FgCyan)
	offsetColor  = color.New(color.FgHiBlack)
	snippetColor = color.New(color.FgYellow)
)

// FormatForTerminal renders the short trace for human consumption:
// a colored header, one aligned line per frame, and the input snippet
// at the failure site.  Display sugar only; the machine-readable
// forms are Trace and VerboseTrace.
func (f *Failure) FormatForTerminal() string {
	frames := f.Stack()

	width := 0
	for _, fr := range frames {
		if w := runewidth.StringWidth(fr.Parser.String()); w > width {
			width = w
		}
	}

	var sb strings.Builder
	sb.WriteString(headerColor.Sprint("parse failure"))
	sb.WriteString(" at offset ")
	sb.WriteString(strconv.Itoa(f.index))
	sb.WriteByte('\n')
	for _, fr := range frames {
		name := fr.Parser.String()
		sb.WriteString("  ")
		sb.WriteString(parserColor.Sprint(name))
		sb.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(name)))
		sb.WriteByte(' ')
		sb.WriteString(offsetColor.Sprint(":" + strconv.Itoa(fr.Index)))
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	sb.WriteString(snippetColor.Sprint(literalize(sliceRunes(f.Input, f.index, 10))))
	sb.WriteByte('\n')
	return sb.String()
}
