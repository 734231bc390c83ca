package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", ` {"bugs": []} `, `{"bugs": []}`},
		{"json fence", "Here you go:\n```json\n{\"bugs\": []}\n```\nDone.", `{"bugs": []}`},
		{"plain fence", "```\n{\"bugs\": []}\n```", `{"bugs": []}`},
		{"json fence wins over earlier plain fence", "```\nnoise\n```\n```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"bugs\": []}", `{"bugs": []}`},
		{"think block", "<think>\nlet me look at ```this```\n</think>\n```json\n{\"bugs\": []}\n```", `{"bugs": []}`},
		{"unclosed think kept", "<think> still going", "<think> still going"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestParseBugs(t *testing.T) {
	content := "```json\n" + `{"bugs": [
		{"line": 3, "severity": "HIGH", "type": "division_by_zero", "description": "b may be 0", "suggestion": "check b", "confidence": 0.9},
		{"line": "three", "severity": "low"},
		{"severity": "critical", "confidence": 0.8},
		{"line": 7, "severity": "", "type": "style"}
	]}` + "\n```"

	res, err := ParseBugs(content)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Malformed)
	require.Len(t, res.Findings, 3)

	assert.Equal(t, BugFinding{
		Line: 3, Severity: SeverityHigh, Type: "division_by_zero",
		Description: "b may be 0", Suggestion: "check b", Confidence: 0.9,
	}, res.Findings[0])
	assert.Equal(t, 0, res.Findings[1].Line)
	assert.Equal(t, SeverityCritical, res.Findings[1].Severity)
	assert.Equal(t, SeverityLow, res.Findings[2].Severity)
	assert.Zero(t, res.Findings[2].Confidence)
}

func TestParseBugs_Unusable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "not json"},
		{"empty", ""},
		{"wrong key", `{"issues": []}`},
		{"error object", `{"error": "json_parse_error", "raw_response": "..."}`},
		{"bugs not array", `{"bugs": "none"}`},
		{"top-level array", `[{"line": 1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseBugs(tt.content)
			assert.Error(t, err)
			assert.NotNil(t, res.Findings)
			assert.Empty(t, res.Findings)
		})
	}
}

func TestParseBugs_ErrorObject(t *testing.T) {
	_, err := ParseBugs(`{"error": "json_parse_error"}`)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Contains(t, err.Error(), "json_parse_error")
}

func TestParseBugs_NullArray(t *testing.T) {
	res, err := ParseBugs(`{"bugs": null}`)
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
}

func TestParseItems_NonObjectElements(t *testing.T) {
	opts, err := ParseOptimizations(`{"optimizations": [null, 5, "x", {"type": "performance", "description": "d"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Malformed)
	require.Len(t, opts.Findings, 1)
	assert.Equal(t, OptimizationPerformance, opts.Findings[0].Type)

	bugs, err := ParseBugs(`{"bugs": [null, [1], {"line": 2, "severity": "high", "confidence": 0.9}]}`)
	require.NoError(t, err)
	assert.Equal(t, 2, bugs.Malformed)
	require.Len(t, bugs.Findings, 1)
	assert.Equal(t, 2, bugs.Findings[0].Line)
}

func TestIsFindingsResponse(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{`{"bugs": []}`, true},
		{"```json\n{\"optimizations\": [{}]}\n```", true},
		{"not json", false},
		{"null", false},
		{`[1, 2]`, false},
		{`{"error": "overloaded"}`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFindingsResponse(tt.content), tt.content)
	}
}

func TestParseOptimizations(t *testing.T) {
	content := `{"optimizations": [
		{"type": "Performance", "line": 4, "category": "loop", "description": "quadratic", "suggestion": "use a set", "impact": "HIGH"},
		{"type": "best_practice", "line": null, "category": "naming", "description": "d", "suggestion": "s", "impact": "low"},
		{"type": "code_smell", "line": 0},
		{"type": 42}
	]}`

	res, err := ParseOptimizations(content)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Malformed)
	require.Len(t, res.Findings, 3)

	first := res.Findings[0]
	assert.Equal(t, OptimizationPerformance, first.Type)
	assert.Equal(t, ImpactHigh, first.Impact)
	require.NotNil(t, first.Line)
	assert.Equal(t, 4, *first.Line)

	assert.Nil(t, res.Findings[1].Line)
	assert.Nil(t, res.Findings[2].Line)
}

func TestFilterByConfidence(t *testing.T) {
	bugs := []BugFinding{
		{Severity: SeverityCritical, Confidence: 0.9},
		{Severity: SeverityLow, Confidence: 0.5},
		{Severity: SeverityHigh, Confidence: 0.7},
		{Severity: SeverityMedium},
	}
	got := FilterByConfidence(bugs, DefaultConfidenceThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, SeverityCritical, got[0].Severity)
	assert.Equal(t, SeverityHigh, got[1].Severity)
}

func TestFilterByConfidence_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(rt, "n")
		threshold := rapid.Float64Range(0, 1).Draw(rt, "threshold")
		bugs := make([]BugFinding, n)
		for i := range bugs {
			bugs[i] = BugFinding{
				Line:       i + 1,
				Confidence: rapid.Float64Range(0, 1).Draw(rt, "confidence"),
			}
		}

		kept := FilterByConfidence(bugs, threshold)

		want := 0
		for _, b := range bugs {
			if b.Confidence >= threshold {
				want++
			}
		}
		if len(kept) != want {
			rt.Fatalf("kept %d bugs, want %d", len(kept), want)
		}
		prev := 0
		for _, b := range kept {
			if b.Confidence < threshold {
				rt.Fatalf("kept bug with confidence %v below %v", b.Confidence, threshold)
			}
			if b.Line <= prev {
				rt.Fatalf("order not preserved: line %d after %d", b.Line, prev)
			}
			prev = b.Line
		}
	})
}
