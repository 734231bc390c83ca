package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Language is the language tag of a reviewed file.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageC          Language = "c"
	LanguageGo         Language = "go"
	LanguageRuby       Language = "ruby"
	LanguagePHP        Language = "php"
	LanguageUnknown    Language = "unknown"
)

// extToLang is closed: anything not listed is unknown. Matching is
// case-sensitive, so "main.PY" is not python.
var extToLang = map[string]Language{
	".py":   LanguagePython,
	".js":   LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".java": LanguageJava,
	".cpp":  LanguageCPP,
	".c":    LanguageC,
	".go":   LanguageGo,
	".rb":   LanguageRuby,
	".php":  LanguagePHP,
}

// DetectLanguage classifies a file by its extension.
func DetectLanguage(path string) Language {
	if lang, ok := extToLang[filepath.Ext(path)]; ok {
		return lang
	}
	return LanguageUnknown
}

// SupportedExtensions returns the extensions DetectLanguage recognizes.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extToLang))
	for ext := range extToLang {
		exts = append(exts, ext)
	}
	return exts
}

// AnnotateLines prefixes every line with its 1-based number, right-aligned
// to four columns, so the model can cite lines exactly.
func AnnotateLines(code string) string {
	lines := strings.Split(code, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%4d | %s", i+1, line)
	}
	return b.String()
}

// CountLines counts newline-delimited segments. A trailing newline yields a
// trailing empty segment, so "a\n" is two lines and "" is one.
func CountLines(code string) int {
	return strings.Count(code, "\n") + 1
}
