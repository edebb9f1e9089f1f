// Package index extracts locally declared identifiers from a script by
// pattern scanning. It is a lexical heuristic: block scope, shadowing and
// reachability are not considered.
package index

import (
	"regexp"

	"github.com/dshills/scriptsense/internal/symbol"
)

var (
	localPattern    = regexp.MustCompile(`local\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	functionPattern = regexp.MustCompile(`function\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	methodPattern   = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*):([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// reserved words never name a local variable ("local function f").
var reserved = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// IsReserved reports whether word is a Lua keyword.
func IsReserved(word string) bool {
	return reserved[word]
}

// Index scans text and returns one symbol per declaration match, in the
// order variables, functions, methods. Duplicates are kept.
func Index(text string) []symbol.Symbol {
	var out []symbol.Symbol
	out = appendVariables(out, text)
	out = appendFunctions(out, text)
	out = appendMethods(out, text)
	return out
}

// Filter is Index restricted to labels containing prefix, ignoring case.
func Filter(text, prefix string) []symbol.Symbol {
	all := Index(text)
	out := all[:0]
	for _, s := range all {
		if s.Matches(prefix) {
			out = append(out, s)
		}
	}
	return out
}

func appendVariables(out []symbol.Symbol, text string) []symbol.Symbol {
	for _, m := range localPattern.FindAllStringSubmatch(text, -1) {
		if IsReserved(m[1]) {
			continue
		}
		out = append(out, symbol.Symbol{
			Label:         m[1],
			Kind:          symbol.KindVariable,
			Detail:        "Local Variable",
			Documentation: "Local variable declared in the current file",
			Origin:        symbol.OriginLocalVariable,
		})
	}
	return out
}

func appendFunctions(out []symbol.Symbol, text string) []symbol.Symbol {
	for _, m := range functionPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, symbol.Symbol{
			Label:         m[1],
			Kind:          symbol.KindFunction,
			Detail:        "Function",
			Documentation: "Function declared in the current file",
			Origin:        symbol.OriginLocalFunction,
		})
	}
	return out
}

func appendMethods(out []symbol.Symbol, text string) []symbol.Symbol {
	for _, m := range methodPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, symbol.Symbol{
			Label:         m[2],
			Kind:          symbol.KindMethod,
			Detail:        "Method",
			Documentation: "Method called in the current file",
			Origin:        symbol.OriginLocalMethod,
		})
	}
	return out
}
