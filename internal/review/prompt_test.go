package review

import (
	"strings"
	"testing"
)

func TestBuildCodePrompt_Bugs(t *testing.T) {
	annotated := AnnotateLines("x = 1\ny = x / 0")
	prompt := BuildCodePrompt(BugDetectionPrompt, LanguagePython, annotated)

	if !strings.Contains(prompt, "Analyze the following python code") {
		t.Error("prompt should name the language")
	}
	if !strings.Contains(prompt, "```python\n   1 | x = 1\n   2 | y = x / 0\n```") {
		t.Errorf("prompt should embed the annotated code in a fence:\n%s", prompt)
	}
	if !strings.Contains(prompt, `If no bugs found, return: {"bugs": []}`) {
		t.Error("prompt should keep literal JSON braces")
	}
	if strings.Contains(prompt, "{language}") || strings.Contains(prompt, "{code}") {
		t.Error("prompt should have no unresolved placeholders")
	}
}

func TestBuildCodePrompt_Optimizations(t *testing.T) {
	prompt := BuildCodePrompt(OptimizationPrompt, LanguageGo, "   1 | package main")
	if !strings.Contains(prompt, `"optimizations": [`) {
		t.Error("prompt should describe the optimizations schema")
	}
	if !strings.Contains(prompt, "```go\n   1 | package main\n```") {
		t.Error("prompt should fence the code with the language tag")
	}
}

func TestTemplateRender_SinglePass(t *testing.T) {
	// A placeholder inside the code must not be expanded again.
	prompt := BuildCodePrompt(BugDetectionPrompt, LanguagePython, `print("{language}")`)
	if !strings.Contains(prompt, `print("{language}")`) {
		t.Error("placeholder text inside code was substituted")
	}
}

func TestTemplateRender_MissingVar(t *testing.T) {
	got := Template("a {x} b {y}").Render(map[string]string{"x": "1"})
	if got != "a 1 b {y}" {
		t.Errorf("Render() = %q, want %q", got, "a 1 b {y}")
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt(3, 5)
	if !strings.Contains(prompt, "BUGS FOUND: 3") || !strings.Contains(prompt, "OPTIMIZATIONS: 5") {
		t.Errorf("summary prompt missing counts:\n%s", prompt)
	}
}
