package textmodel

import "fmt"

// Position is a 1-based line/column location in a model.
// Column counts bytes from the start of the line, starting at 1, so the
// position just past the last byte of a line of length n is column n+1.
type Position struct {
	Line   int
	Column int
}

// Start is the first position of every model.
var Start = Position{Line: 1, Column: 1}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// Range is a span between two positions. Start is inclusive, End is exclusive.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range from explicit line and column numbers.
func NewRange(startLine, startColumn, endLine, endColumn int) Range {
	return Range{
		Start: Position{Line: startLine, Column: startColumn},
		End:   Position{Line: endLine, Column: endColumn},
	}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start, r.End)
}

// IsEmpty returns true if start equals end.
func (r Range) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// Contains returns true if p lies within the range. An empty range
// contains its own start position.
func (r Range) Contains(p Position) bool {
	if r.IsEmpty() {
		return p == r.Start
	}
	return p.Compare(r.Start) >= 0 && p.Compare(r.End) < 0
}

// normalized returns the range with Start <= End.
func (r Range) normalized() Range {
	if r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}
