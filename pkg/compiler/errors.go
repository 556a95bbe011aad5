package compiler

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// LexError reports a character that starts no token.
type LexError struct {
	Pos  int  // byte offset into the source
	Char rune // the offending character, utf8.RuneError for a bad byte
	Byte byte // the raw byte when the source is not valid UTF-8 at Pos
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid token %s at offset %d", e.quoted(), e.Pos)
}

func (e *LexError) quoted() string {
	if e.Char == utf8.RuneError && e.Byte != 0 {
		return fmt.Sprintf("'\\x%02x'", e.Byte)
	}
	return fmt.Sprintf("%q", e.Char)
}

func (e *LexError) Position() int { return e.Pos }

func (e *LexError) message() string {
	return "invalid token " + e.quoted()
}

// ParseError reports a token that does not fit the grammar.
type ParseError struct {
	Pos      int    // byte offset of the token actually found
	Expected string // what the grammar required at Pos
	Found    string // human readable form of the token at Pos
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, found %s at offset %d", e.Expected, e.Found, e.Pos)
}

func (e *ParseError) Position() int { return e.Pos }

func (e *ParseError) message() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

// Diagnostic renders err against src with a caret under the failing column:
//
//	a = (1 + 2;
//	          ^ expected ")", found ";"
//
// Multi-line sources show only the failing line, prefixed with its number.
// Errors without a source position are returned as err.Error().
func Diagnostic(src string, err error) string {
	var pe interface {
		Position() int
		message() string
	}
	if !errors.As(err, &pe) {
		return err.Error()
	}

	pos := min(max(pe.Position(), 0), len(src))
	lineStart := strings.LastIndexByte(src[:pos], '\n') + 1
	lineEnd := strings.IndexByte(src[pos:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += pos
	}

	var sb strings.Builder
	prefix := ""
	if strings.Contains(src, "\n") {
		prefix = fmt.Sprintf("%d | ", strings.Count(src[:lineStart], "\n")+1)
	}
	sb.WriteString(prefix)
	sb.WriteString(src[lineStart:lineEnd])
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", len(prefix)))
	sb.WriteString(caretPadding(src[lineStart:pos]))
	fmt.Fprintf(&sb, "^ %s", pe.message())
	return sb.String()
}

// caretPadding blanks out text so a caret written after it lines up with the
// next character. Tabs are kept so they expand to the same width.
func caretPadding(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
