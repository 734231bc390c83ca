package review

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"sample.py", LanguagePython},
		{"src/app.js", LanguageJavaScript},
		{"app.ts", LanguageTypeScript},
		{"Main.java", LanguageJava},
		{"vec.cpp", LanguageCPP},
		{"vec.c", LanguageC},
		{"main.go", LanguageGo},
		{"app.rb", LanguageRuby},
		{"index.php", LanguagePHP},
		{"lib.rs", LanguageUnknown},
		{"README", LanguageUnknown},
		{"main.PY", LanguageUnknown},
		{"archive.tar.py", LanguagePython},
		{"", LanguageUnknown},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	if len(exts) != 9 {
		t.Errorf("SupportedExtensions() has %d entries, want 9", len(exts))
	}
	if !slices.Contains(exts, ".go") {
		t.Error("SupportedExtensions() should include .go")
	}
}

func TestAnnotateLines(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"single", "x=1", "   1 | x=1"},
		{"two", "a\nb", "   1 | a\n   2 | b"},
		{"trailing newline", "a\n", "   1 | a\n   2 | "},
		{"empty", "", "   1 | "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnnotateLines(tt.code); got != tt.want {
				t.Errorf("AnnotateLines(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestAnnotateLines_WideNumbers(t *testing.T) {
	got := AnnotateLines(strings.Repeat("x\n", 10000))
	if !strings.HasSuffix(got, "\n10001 | ") {
		t.Errorf("annotation should widen past four digits, ends with %q", got[len(got)-20:])
	}
	if !strings.HasPrefix(got, "   1 | x\n") {
		t.Errorf("first line = %q", got[:10])
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"", 1},
		{"x=1", 1},
		{"x=1\n", 2},
		{"a\nb\nc", 3},
	}
	for _, tt := range tests {
		if got := CountLines(tt.code); got != tt.want {
			t.Errorf("CountLines(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
