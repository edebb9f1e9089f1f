package catalog

import (
	"context"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/scriptsense/internal/symbol"
)

// LuaFetcher builds a catalog from the standard library of an embedded
// Lua runtime, so completion works without a catalog service.
type LuaFetcher struct{}

// NewLuaFetcher creates a runtime-introspection fetcher.
func NewLuaFetcher() *LuaFetcher {
	return &LuaFetcher{}
}

// Fetch implements Fetcher. Global functions become functions, global
// library tables become libraries, and the functions inside a library are
// listed with a "lib.name" detail.
func (LuaFetcher) Fetch(ctx context.Context) ([]symbol.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	L := lua.NewState()
	defer L.Close()

	var out []symbol.Symbol
	L.G.Global.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || string(name) == "_G" {
			return
		}
		switch v.Type() {
		case lua.LTFunction:
			out = append(out, symbol.Symbol{
				Label:         string(name),
				Kind:          symbol.KindFunction,
				Detail:        string(name) + "()",
				Documentation: "Built-in function",
				Origin:        symbol.OriginCatalog,
			})
		case lua.LTTable:
			out = append(out, libraryMembers(string(name), v.(*lua.LTable))...)
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Detail < out[j].Detail
	})
	return out, nil
}

func libraryMembers(lib string, tbl *lua.LTable) []symbol.Symbol {
	var members []symbol.Symbol
	tbl.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || v.Type() != lua.LTFunction {
			return
		}
		members = append(members, symbol.Symbol{
			Label:         string(name),
			Kind:          symbol.KindFunction,
			Detail:        lib + "." + string(name),
			Documentation: "Function of the " + lib + " library",
			Origin:        symbol.OriginCatalog,
		})
	})
	if len(members) == 0 {
		return nil
	}
	return append(members, symbol.Symbol{
		Label:         lib,
		Kind:          symbol.KindLibrary,
		Detail:        lib,
		Documentation: "Built-in library",
		Origin:        symbol.OriginCatalog,
	})
}
