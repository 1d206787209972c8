package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergev/lexa/lang"
	"github.com/sergev/lexa/parser"
)

// FormatError renders err for a user, pointing at the offending line of
// src when the error carries a position.
func FormatError(name string, src string, err error) string {
	pos, msg := errorPosition(err)
	if pos.Line == 0 {
		return fmt.Sprintf("%s: error: %s\n", name, msg)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: error: %s\n", name, pos.Line, pos.Column, msg)
	lines := strings.Split(src, "\n")
	if pos.Line <= len(lines) {
		line := strings.TrimRight(lines[pos.Line-1], "\r")
		fmt.Fprintf(&b, "  %s\n", line)
		fmt.Fprintf(&b, "  %s^\n", caretPadding(line, pos.Column))
	}
	return b.String()
}

func errorPosition(err error) (parser.Position, string) {
	var le *lang.Error
	if errors.As(err, &le) {
		return le.Pos, le.Message()
	}
	var pe *parser.Error
	if errors.As(err, &pe) {
		return pe.Pos, pe.Message()
	}
	return parser.Position{}, err.Error()
}

// caretPadding keeps tabs so the caret lines up under column.
func caretPadding(line string, column int) string {
	var b strings.Builder
	col := 1
	for _, r := range line {
		if col >= column {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		col++
	}
	return b.String()
}
