package suggest

import (
	"regexp"
	"strings"

	"github.com/dshills/scriptsense/internal/textmodel"
)

// MinPrefix is the shortest word that produces suggestions.
const MinPrefix = 2

// LexicalContext says what kind of text the cursor is in.
type LexicalContext int

const (
	// Code is ordinary program text.
	Code LexicalContext = iota
	// String is inside a single- or double-quoted literal.
	String
	// LineComment follows a "--" marker on the same line.
	LineComment
	// BlockComment follows an unclosed "--[[" on the same line.
	BlockComment
)

// String returns the context name.
func (c LexicalContext) String() string {
	switch c {
	case Code:
		return "code"
	case String:
		return "string"
	case LineComment:
		return "line-comment"
	case BlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// lineComment matches "--" followed by anything but a block opener.
var lineComment = regexp.MustCompile(`--[^\[]`)

// Classify returns the lexical context of column on line. Only the text of
// the line before the column is considered. Comment markers are checked
// before quotes, so a string literal containing "--" reads as a comment.
func Classify(line string, column int) LexicalContext {
	if column < 1 {
		column = 1
	}
	if column > len(line)+1 {
		column = len(line) + 1
	}
	before := line[:column-1]

	if lineComment.MatchString(before) {
		return LineComment
	}
	if strings.LastIndex(before, "--[[") > strings.LastIndex(before, "]]") {
		return BlockComment
	}
	if inString(before) {
		return String
	}
	return Code
}

// inString toggles on quotes not preceded by a backslash.
func inString(s string) bool {
	var open byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '"' && c != '\'' {
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			continue
		}
		switch open {
		case 0:
			open = c
		case c:
			open = 0
		}
	}
	return open != 0
}

// Context describes the cursor for ranking.
type Context struct {
	Position textmodel.Position
	Prefix   textmodel.Word
	Lexical  LexicalContext
}

// Eligible reports whether suggestions may be produced.
func (c Context) Eligible() bool {
	return c.Lexical == Code && len(c.Prefix.Text) >= MinPrefix
}

// ContextAt computes the suggestion context of pos in text.
func ContextAt(text string, pos textmodel.Position) Context {
	line := textmodel.Line(text, pos.Line)
	return Context{
		Position: pos,
		Prefix:   textmodel.WordUntil(line, pos.Column),
		Lexical:  Classify(line, pos.Column),
	}
}
