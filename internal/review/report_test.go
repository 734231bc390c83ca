package review

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func sampleMetadata() Metadata {
	return Metadata{
		FileName:    "calc.py",
		FileSize:    42,
		LinesOfCode: 3,
		Timestamp:   "2026-01-02T03:04:05Z",
		Language:    LanguagePython,
		RunID:       "run-1",
	}
}

func TestBuildReport_CriticalScenario(t *testing.T) {
	pre := []BugFinding{
		{Severity: SeverityCritical, Confidence: 0.9},
		{Severity: SeverityLow, Confidence: 0.5},
	}
	r := BuildReport(FilterByConfidence(pre, DefaultConfidenceThreshold), nil, sampleMetadata())

	require.Len(t, r.Bugs, 1)
	assert.Equal(t, "CRITICAL", r.Summary.OverallSeverity)
	assert.Equal(t, map[Severity]int{
		SeverityCritical: 1, SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0,
	}, r.SeverityDistribution)
}

func TestBuildReport_Summary(t *testing.T) {
	r := BuildReport(
		[]BugFinding{{Severity: SeverityMedium, Confidence: 0.8}},
		[]OptimizationFinding{{Type: OptimizationPerformance}, {Type: OptimizationCodeSmell}},
		sampleMetadata(),
	)
	assert.Equal(t, Summary{
		File:               "calc.py",
		Language:           LanguagePython,
		LinesOfCode:        3,
		Timestamp:          "2026-01-02T03:04:05Z",
		BugsFound:          1,
		OptimizationsFound: 2,
		OverallSeverity:    "MEDIUM",
	}, r.Summary)
	assert.Equal(t, "run-1", r.Metadata.RunID)
}

func TestBuildReport_MissingMetadata(t *testing.T) {
	r := BuildReport(nil, nil, Metadata{Error: "open x: no such file"})

	assert.Equal(t, "unknown", r.Summary.File)
	assert.Equal(t, LanguageUnknown, r.Summary.Language)
	assert.Zero(t, r.Summary.LinesOfCode)
	assert.Empty(t, r.Summary.Timestamp)
	assert.Equal(t, "LOW", r.Summary.OverallSeverity)
	assert.NotNil(t, r.Bugs)
	assert.NotNil(t, r.Optimizations)
	assert.Len(t, r.SeverityDistribution, 4)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	summary := decoded["summary"].(map[string]any)
	for _, key := range []string{"file", "language", "lines_of_code", "timestamp", "bugs_found", "optimizations_found", "overall_severity"} {
		assert.Contains(t, summary, key)
	}
	assert.Equal(t, []any{}, decoded["bugs"])
}

func TestMetadata_EmptyFileKeepsFields(t *testing.T) {
	data, err := json.Marshal(Metadata{FileName: "empty.py", Language: LanguagePython})
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, float64(0), decoded["file_size"])
	assert.Equal(t, float64(0), decoded["lines_of_code"])
	for _, key := range []string{"file_name", "timestamp", "language"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "run_id")
	assert.NotContains(t, decoded, "error")
}

func TestBuildReport_UnknownSeverityBucket(t *testing.T) {
	r := BuildReport([]BugFinding{
		{Severity: "Blocker", Confidence: 0.9},
		{Severity: "blocker", Confidence: 0.9},
		{Severity: "", Confidence: 0.9},
	}, nil, sampleMetadata())

	assert.Equal(t, 2, r.SeverityDistribution["blocker"])
	assert.Equal(t, 1, r.SeverityDistribution[SeverityLow])
	assert.Equal(t, SeverityLow, r.Bugs[2].Severity)
	assert.Equal(t, "LOW", r.Summary.OverallSeverity)
}

func TestOverallSeverity(t *testing.T) {
	tests := []struct {
		name string
		dist map[Severity]int
		want string
	}{
		{"critical wins", map[Severity]int{SeverityCritical: 1, SeverityHigh: 9}, "CRITICAL"},
		{"high", map[Severity]int{SeverityHigh: 1, SeverityMedium: 9, SeverityLow: 9}, "HIGH"},
		{"medium", map[Severity]int{SeverityMedium: 1}, "MEDIUM"},
		{"low only", map[Severity]int{SeverityLow: 3}, "LOW"},
		{"unknown only", map[Severity]int{"blocker": 3}, "LOW"},
		{"empty", map[Severity]int{}, "LOW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallSeverity(tt.dist))
		})
	}
}

func TestBuildReport_DoesNotAliasInput(t *testing.T) {
	bugs := []BugFinding{{Severity: "", Confidence: 0.9}}
	r := BuildReport(bugs, nil, sampleMetadata())
	r.Bugs[0].Description = "changed"
	assert.Empty(t, bugs[0].Description)
	assert.Equal(t, Severity(""), bugs[0].Severity)
}

func TestBuildReport_Idempotent(t *testing.T) {
	line := 4
	bugs := []BugFinding{
		{Line: 2, Severity: SeverityHigh, Type: "logic", Confidence: 0.8},
		{Line: 3, Severity: "blocker", Type: "crash", Confidence: 0.95},
	}
	opts := []OptimizationFinding{{Type: OptimizationSecurity, Line: &line, Impact: ImpactHigh}}

	first := BuildReport(bugs, opts, sampleMetadata())
	second := BuildReport(bugs, opts, sampleMetadata())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("BuildReport not idempotent (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

var severityGen = rapid.SampledFrom([]Severity{
	SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, "", "blocker", "Info",
})

func TestBuildReport_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		bugs := make([]BugFinding, n)
		present := make(map[Severity]bool)
		for i := range bugs {
			sev := severityGen.Draw(rt, "severity")
			bugs[i] = BugFinding{Line: i + 1, Severity: sev, Confidence: 0.9}
			present[NormalizeSeverity(string(sev))] = true
		}

		r := BuildReport(bugs, nil, sampleMetadata())

		total := 0
		for _, c := range r.SeverityDistribution {
			total += c
		}
		if total != len(bugs) {
			rt.Fatalf("distribution sums to %d, want %d", total, len(bugs))
		}
		for _, s := range CanonicalSeverities {
			if _, ok := r.SeverityDistribution[s]; !ok {
				rt.Fatalf("distribution missing %q bucket", s)
			}
		}

		want := "LOW"
		switch {
		case present[SeverityCritical]:
			want = "CRITICAL"
		case present[SeverityHigh]:
			want = "HIGH"
		case present[SeverityMedium]:
			want = "MEDIUM"
		}
		if r.Summary.OverallSeverity != want {
			rt.Fatalf("overall severity %q, want %q", r.Summary.OverallSeverity, want)
		}
		if r.Summary.BugsFound != len(bugs) {
			rt.Fatalf("bugs_found %d, want %d", r.Summary.BugsFound, len(bugs))
		}
	})
}
