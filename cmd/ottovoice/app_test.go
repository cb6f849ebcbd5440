package main

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "Boil water.", 20, "Boil water."},
		{"exact", "abcde", 5, "abcde"},
		{"ascii", "Drain and serve hot", 10, "Drain a..."},
		{"multibyte", "Sauté the crème fraîche gently", 8, "Sauté..."},
		{"tiny limit", "héllo", 2, "hé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateStr(tt.in, tt.max)
			if got != tt.want {
				t.Fatalf("truncateStr(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("result %q is not valid UTF-8", got)
			}
		})
	}
}
