package suggest

import (
	"testing"

	"github.com/dshills/scriptsense/internal/textmodel"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		column int
		want   LexicalContext
	}{
		{"plain code", "local arr", 10, Code},
		{"line comment", "-- test arr", 12, LineComment},
		{"comment after code", "x = 1 -- arr", 13, LineComment},
		{"dashes at cursor", "x = 1 --", 9, Code},
		{"open block comment", "--[[ arr", 9, BlockComment},
		{"closed block comment", "--[[ note ]] arr", 17, Code},
		{"block then line comment", "--[[ a ]] -- arr", 17, LineComment},
		{"double quoted", `local x = "arr`, 15, String},
		{"single quoted", `local x = 'arr`, 15, String},
		{"closed string", `local x = "a" .. arr`, 21, Code},
		{"escaped quote", `local x = "a\"arr`, 18, String},
		{"other quote inside", `local x = "it's arr`, 20, String},
		{"column past end clamps", "arr", 99, Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.line, tt.column); got != tt.want {
				t.Errorf("Classify(%q, %d) = %v, want %v", tt.line, tt.column, got, tt.want)
			}
		})
	}
}

func TestContextAt(t *testing.T) {
	text := "local a = 1\nlocal x = \"array"
	ctx := ContextAt(text, textmodel.Position{Line: 2, Column: 15})

	if ctx.Prefix.Text != "arr" {
		t.Errorf("Prefix = %q, want arr", ctx.Prefix.Text)
	}
	if ctx.Lexical != String {
		t.Errorf("Lexical = %v, want string", ctx.Lexical)
	}
	if ctx.Eligible() {
		t.Error("Eligible() = true inside a string")
	}
}

func TestLexicalContext_String(t *testing.T) {
	if Code.String() != "code" || BlockComment.String() != "block-comment" {
		t.Error("unexpected context names")
	}
}
