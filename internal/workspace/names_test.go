package workspace

import (
	"strings"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"main", "main.lua"},
		{"main.lua", "main.lua"},
		{"  my   script  ", "my script.lua"},
		{"../etc/passwd", "___etc_passwd.lua"},
		{"a:b*c", "a_b_c.lua"},
		{"", DefaultTitle},
		{"   ", DefaultTitle},
		{".lua", DefaultTitle},
		{"héllo-wörld_1", "héllo-wörld_1.lua"},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeTitle(strings.Repeat("x", 150))
	if got := len(long) - len(Extension); got != maxTitleLen {
		t.Errorf("long title base length = %d, want %d", got, maxTitleLen)
	}
}

func TestTabID(t *testing.T) {
	a := TabID("ws", "main.lua")
	if len(a) != 64 {
		t.Errorf("TabID length = %d, want 64", len(a))
	}
	if a != TabID("ws", "main.lua") {
		t.Error("TabID is not deterministic")
	}
	if a == TabID("other", "main.lua") {
		t.Error("TabID ignores the workspace")
	}
}
