// Package suggest ranks completion candidates for a cursor position.
package suggest

import (
	"github.com/dshills/scriptsense/internal/index"
	"github.com/dshills/scriptsense/internal/logging"
	"github.com/dshills/scriptsense/internal/symbol"
	"github.com/dshills/scriptsense/internal/textmodel"
)

// DefaultMax is the limit used when no positive limit is given.
const DefaultMax = 10

// Rank returns the suggestions for pos in text: catalog symbols whose label
// contains the current word, then local variables, functions and methods,
// truncated to max. It returns nil when the word is shorter than MinPrefix
// or the cursor is in a comment or string.
func Rank(catalog []symbol.Symbol, text string, pos textmodel.Position, max int) []symbol.Symbol {
	return rank(catalog, text, ContextAt(text, pos), max)
}

func rank(catalog []symbol.Symbol, text string, ctx Context, max int) []symbol.Symbol {
	if !ctx.Eligible() {
		return nil
	}
	if max <= 0 {
		max = DefaultMax
	}
	prefix := ctx.Prefix.Text

	out := make([]symbol.Symbol, 0, max)
	type key struct {
		label  string
		kind   symbol.Kind
		origin symbol.Origin
	}
	seen := make(map[key]bool)
	add := func(s symbol.Symbol) bool {
		k := key{s.Label, s.Kind, s.Origin}
		if !seen[k] {
			seen[k] = true
			out = append(out, s)
		}
		return len(out) < max
	}

	for _, s := range catalog {
		if s.Matches(prefix) && !add(s) {
			return out
		}
	}
	for _, s := range index.Filter(text, prefix) {
		if !add(s) {
			return out
		}
	}
	return out
}

// Source supplies catalog symbols.
type Source interface {
	Symbols() []symbol.Symbol
}

// Ranker ranks against an injected catalog.
type Ranker struct {
	source Source
	logger *logging.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRanker creates a ranker reading catalog symbols from source. A nil
// source ranks local symbols only.
func NewRanker(source Source, opts ...Option) *Ranker {
	r := &Ranker{source: source, logger: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Suggestions ranks the candidates for pos in text. Internal failures
// yield an empty result.
func (r *Ranker) Suggestions(text string, pos textmodel.Position, max int) (out []symbol.Symbol) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("ranking failed at %s: %v", pos, rec)
			out = nil
		}
	}()

	var catalog []symbol.Symbol
	if r.source != nil {
		catalog = r.source.Symbols()
	}
	return Rank(catalog, text, pos, max)
}
