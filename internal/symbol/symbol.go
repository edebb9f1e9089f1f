// Package symbol defines completion candidates shared by the catalog,
// the local indexer, and the ranker.
package symbol

import "strings"

// Kind classifies a symbol.
type Kind string

// Symbol kinds.
const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindVariable  Kind = "variable"
	KindProperty  Kind = "property"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindLibrary   Kind = "library"
	KindKeyword   Kind = "keyword"
)

var kinds = []Kind{
	KindFunction, KindMethod, KindVariable, KindProperty, KindClass,
	KindInterface, KindEnum, KindType, KindLibrary, KindKeyword,
}

// Kinds returns every known kind.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Origin tells where a symbol came from.
type Origin string

// Symbol origins.
const (
	OriginCatalog       Origin = "catalog"
	OriginLocalVariable Origin = "local-variable"
	OriginLocalFunction Origin = "local-function"
	OriginLocalMethod   Origin = "local-method"
)

// IsLocal reports whether the origin is the current document.
func (o Origin) IsLocal() bool {
	return o == OriginLocalVariable || o == OriginLocalFunction || o == OriginLocalMethod
}

// Symbol is a named completion candidate.
type Symbol struct {
	Label         string `json:"label" yaml:"label"`
	Kind          Kind   `json:"kind" yaml:"kind"`
	Detail        string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Origin        Origin `json:"origin" yaml:"origin"`
}

// Matches reports whether the label contains prefix, ignoring case.
func (s Symbol) Matches(prefix string) bool {
	return strings.Contains(strings.ToLower(s.Label), strings.ToLower(prefix))
}
