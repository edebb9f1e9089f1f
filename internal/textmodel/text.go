package textmodel

import "strings"

// Word is an identifier located on a single line.
type Word struct {
	Text        string
	StartColumn int
	EndColumn   int
}

// IsWordByte reports whether b can be part of an identifier.
func IsWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Line returns the content of the 1-based line of text, without its
// terminator. Out-of-range lines are empty.
func Line(text string, line int) string {
	if line < 1 {
		return ""
	}
	for i := 1; i < line; i++ {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			return ""
		}
		text = text[idx+1:]
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// WordUntil returns the identifier that ends at column on line, scanning
// backward to the nearest non-identifier byte. The word is empty when the
// byte before the column is not part of an identifier.
func WordUntil(line string, column int) Word {
	end := clampColumn(line, column) - 1
	start := end
	for start > 0 && IsWordByte(line[start-1]) {
		start--
	}
	return Word{
		Text:        line[start:end],
		StartColumn: start + 1,
		EndColumn:   end + 1,
	}
}

// WordAt returns the whole identifier touching column on line, extending in
// both directions. ok is false when no identifier touches the column.
func WordAt(line string, column int) (Word, bool) {
	idx := clampColumn(line, column) - 1
	start, end := idx, idx
	for start > 0 && IsWordByte(line[start-1]) {
		start--
	}
	for end < len(line) && IsWordByte(line[end]) {
		end++
	}
	if start == end {
		return Word{}, false
	}
	return Word{
		Text:        line[start:end],
		StartColumn: start + 1,
		EndColumn:   end + 1,
	}, true
}

func clampColumn(line string, column int) int {
	if column < 1 {
		return 1
	}
	if column > len(line)+1 {
		return len(line) + 1
	}
	return column
}

// endOf returns the position reached after inserting text at p.
func endOf(p Position, text string) Position {
	n := strings.Count(text, "\n")
	if n == 0 {
		return Position{Line: p.Line, Column: p.Column + len(text)}
	}
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return Position{Line: p.Line + n, Column: len(last) + 1}
}
