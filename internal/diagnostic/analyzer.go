// Package diagnostic turns script text into error and warning markers and
// keeps the current marker set of every document.
package diagnostic

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/scriptsense/internal/logging"
	"github.com/dshills/scriptsense/internal/textmodel"
)

// Friendly replacements for common parser complaints.
const (
	msgUnexpectedEnd  = "Unexpected 'end' - check if all blocks (if/function/for/while) are properly closed"
	msgUnexpectedThen = "Unexpected 'then' - check if there's a matching 'if' statement"
	msgUnexpectedEOF  = "Unexpected end of input - check if all blocks (if/function/for/while) are closed with 'end'"
	msgDoubleSemi     = "Unnecessary double semicolon"
	msgTrailingSpace  = "Trailing whitespace"
)

// endOfInput is the line the parser reports for errors at end of input.
const endOfInput = -1

var (
	bracketPos = regexp.MustCompile(`\[(\d+):(\d+)\]\s*`)
	linePos    = regexp.MustCompile(`line:(\d+)\(column:(\d+)\)`)
)

// Analyzer parses scripts and scans them for style issues.
type Analyzer struct {
	logger   *logging.Logger
	warnings bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for recovered failures.
func WithLogger(l *logging.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWarnings enables or disables the heuristic line scans.
func WithWarnings(enabled bool) Option {
	return func(a *Analyzer) {
		a.warnings = enabled
	}
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{logger: logging.Nop(), warnings: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the markers for content: at most one error from the
// parser followed by one warning per heuristic finding. It never panics;
// an internal failure yields no markers.
func (a *Analyzer) Analyze(content string) (markers []Marker) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis failed: %v", r)
			markers = nil
		}
	}()

	content = textmodel.Normalize(content)
	lines := strings.Split(content, "\n")

	if err := parseChunk(content); err != nil {
		markers = append(markers, errorMarker(err, lines))
	}
	if a.warnings {
		markers = append(markers, scanLines(lines)...)
	}
	return markers
}

func parseChunk(content string) error {
	_, err := parse.Parse(strings.NewReader(content), "<buffer>")
	return err
}

// errorMarker anchors a parse failure on its reported line, clamped to
// the content, and extends it to the rest of the line. Errors at end of
// input mark the last character of the last non-empty line.
func errorMarker(err error, lines []string) Marker {
	line, col, msg := locate(err)

	switch {
	case line < 1:
		line = lastNonEmpty(lines)
		col = len(lines[line-1])
	case line > len(lines):
		line = len(lines)
	}
	content := lines[line-1]
	if col < 1 {
		col = 1
	}
	if col > len(content)+1 {
		col = len(content) + 1
	}

	return Marker{
		Severity: SeverityError,
		Message:  friendly(msg),
		Range:    textmodel.NewRange(line, col, line, max(col+1, len(content)+1)),
		Source:   Source,
	}
}

// locate extracts the line, column and message of a parse error. A line
// of -1 means end of input, where the reported token is the last one read
// rather than the offending one.
func locate(err error) (line, col int, msg string) {
	var perr *parse.Error
	if errors.As(err, &perr) {
		msg = perr.Message
		if msg == "syntax error" {
			switch {
			case perr.Pos.Line == endOfInput:
				msg = "'<eof>' unexpected"
			case perr.Token != "":
				msg = "'" + perr.Token + "' unexpected"
			}
		}
		return perr.Pos.Line, perr.Pos.Column, msg
	}

	text := strings.TrimSpace(err.Error())
	if m := bracketPos.FindStringSubmatch(text); m != nil {
		line, _ = strconv.Atoi(m[1])
		col, _ = strconv.Atoi(m[2])
		return line, col, bracketPos.ReplaceAllString(text, "")
	}
	if m := linePos.FindStringSubmatch(text); m != nil {
		line, _ = strconv.Atoi(m[1])
		col, _ = strconv.Atoi(m[2])
		return line, col, text
	}
	return 1, 1, text
}

func lastNonEmpty(lines []string) int {
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i + 1
		}
	}
	return 1
}

func friendly(msg string) string {
	switch {
	case strings.Contains(msg, "'<eof>' unexpected"):
		return msgUnexpectedEOF
	case strings.Contains(msg, "'end' unexpected"):
		return msgUnexpectedEnd
	case strings.Contains(msg, "'then' unexpected"):
		return msgUnexpectedThen
	}
	return msg
}

// scanLines reports every ";;" and any trailing whitespace.
func scanLines(lines []string) []Marker {
	var out []Marker
	for i, line := range lines {
		n := i + 1

		for from := 0; ; {
			idx := strings.Index(line[from:], ";;")
			if idx < 0 {
				break
			}
			start := from + idx
			out = append(out, Marker{
				Severity: SeverityWarning,
				Message:  msgDoubleSemi,
				Range:    textmodel.NewRange(n, start+1, n, start+3),
				Source:   Source,
			})
			from = start + 2
		}

		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		if len(trimmed) < len(line) {
			out = append(out, Marker{
				Severity: SeverityWarning,
				Message:  msgTrailingSpace,
				Range:    textmodel.NewRange(n, len(trimmed)+1, n, len(line)+1),
				Source:   Source,
			})
		}
	}
	return out
}
