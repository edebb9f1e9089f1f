package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/scriptsense/internal/symbol"
)

// FileFetcher loads the catalog from a YAML (or JSON) file.
type FileFetcher struct {
	Path string
}

// NewFileFetcher creates a fetcher reading path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

type fileEntry struct {
	Label         string `yaml:"label"`
	Kind          string `yaml:"kind"`
	Detail        string `yaml:"detail"`
	Documentation string `yaml:"documentation"`
}

type fileDocument struct {
	Function []fileEntry `yaml:"function"`
	Property []fileEntry `yaml:"property"`
	Class    []fileEntry `yaml:"class"`
	Method   []fileEntry `yaml:"method"`
	Symbols  []fileEntry `yaml:"symbols"`
}

// Fetch implements Fetcher.
func (f *FileFetcher) Fetch(ctx context.Context) ([]symbol.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	syms, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return syms, nil
}

// ParseYAML decodes a catalog file. It accepts the same grouped layout as
// the HTTP service, plus a flat "symbols" list whose entries carry a kind.
func ParseYAML(data []byte) ([]symbol.Symbol, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var out []symbol.Symbol
	groups := []struct {
		kind    symbol.Kind
		entries []fileEntry
	}{
		{symbol.KindFunction, doc.Function},
		{symbol.KindProperty, doc.Property},
		{symbol.KindClass, doc.Class},
		{symbol.KindMethod, doc.Method},
	}
	for _, g := range groups {
		for _, e := range g.entries {
			if e.Label == "" {
				continue
			}
			out = append(out, e.symbol(g.kind))
		}
	}

	for i, e := range doc.Symbols {
		if e.Label == "" {
			continue
		}
		kind, ok := symbol.ParseKind(e.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: symbols[%d] %q has unknown kind %q", ErrInvalidPayload, i, e.Label, e.Kind)
		}
		out = append(out, e.symbol(kind))
	}
	return out, nil
}

func (e fileEntry) symbol(kind symbol.Kind) symbol.Symbol {
	return symbol.Symbol{
		Label:         e.Label,
		Kind:          kind,
		Detail:        e.Detail,
		Documentation: e.Documentation,
		Origin:        symbol.OriginCatalog,
	}
}
