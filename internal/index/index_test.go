package index

import (
	"testing"

	"github.com/dshills/scriptsense/internal/symbol"
)

func labels(syms []symbol.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Label
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestIndex(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "variables in order",
			text: "local array = 1\nlocal arri = 2",
			want: []string{"array", "arri"},
		},
		{
			name: "variables then functions then methods",
			text: "obj:run()\nfunction helper() end\nlocal x = 1",
			want: []string{"x", "helper", "run"},
		},
		{
			name: "local function is a function, not a variable",
			text: "local function build() end",
			want: []string{"build"},
		},
		{
			name: "duplicates are kept",
			text: "local a = 1\nlocal a = 2",
			want: []string{"a", "a"},
		},
		{
			name: "method label is the callee",
			text: "player:getName()",
			want: []string{"getName"},
		},
		{
			name: "no declarations",
			text: "print(1)",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(Index(tt.text))
			if !equal(got, tt.want) {
				t.Errorf("Index() labels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndex_Kinds(t *testing.T) {
	syms := Index("local v = 1\nfunction f() end\no:m()")
	if len(syms) != 3 {
		t.Fatalf("len = %d, want 3", len(syms))
	}

	want := []struct {
		kind   symbol.Kind
		origin symbol.Origin
		detail string
	}{
		{symbol.KindVariable, symbol.OriginLocalVariable, "Local Variable"},
		{symbol.KindFunction, symbol.OriginLocalFunction, "Function"},
		{symbol.KindMethod, symbol.OriginLocalMethod, "Method"},
	}
	for i, w := range want {
		s := syms[i]
		if s.Kind != w.kind || s.Origin != w.origin || s.Detail != w.detail {
			t.Errorf("syms[%d] = %+v, want kind %s origin %s detail %q", i, s, w.kind, w.origin, w.detail)
		}
	}
}

func TestFilter(t *testing.T) {
	got := labels(Filter("local Array = 1\nlocal other = 2\nfunction arrange() end", "arr"))
	want := []string{"Array", "arrange"}
	if !equal(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}
