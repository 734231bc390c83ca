package review

import (
	"slices"
	"strings"
)

// Severity represents the severity level of a bug finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// CanonicalSeverities lists the four built-in buckets, most severe first.
var CanonicalSeverities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// NormalizeSeverity lower-cases and trims a severity. An empty value becomes low.
func NormalizeSeverity(s string) Severity {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SeverityLow
	}
	return Severity(s)
}

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// OptimizationType classifies an optimization suggestion.
type OptimizationType string

const (
	OptimizationPerformance  OptimizationType = "performance"
	OptimizationSecurity     OptimizationType = "security"
	OptimizationBestPractice OptimizationType = "best_practice"
	OptimizationCodeSmell    OptimizationType = "code_smell"
)

// Impact is the expected payoff of an optimization.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// BugFinding is a single bug reported by the model.
type BugFinding struct {
	Line        int      `json:"line"`
	Severity    Severity `json:"severity"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion"`
	Confidence  float64  `json:"confidence"`
}

// OptimizationFinding is a single improvement suggested by the model.
// Line is nil when the suggestion applies to the file as a whole.
type OptimizationFinding struct {
	Type        OptimizationType `json:"type"`
	Line        *int             `json:"line"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Suggestion  string           `json:"suggestion"`
	Impact      Impact           `json:"impact"`
}

// Metadata describes the reviewed file. It is written once by the parse
// stage and read by every later stage.
type Metadata struct {
	FileName    string   `json:"file_name"`
	FileSize    int      `json:"file_size"`
	LinesOfCode int      `json:"lines_of_code"`
	Timestamp   string   `json:"timestamp"`
	Language    Language `json:"language"`
	RunID       string   `json:"run_id,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Summary is the headline block of a report.
type Summary struct {
	File               string   `json:"file"`
	Language           Language `json:"language"`
	LinesOfCode        int      `json:"lines_of_code"`
	Timestamp          string   `json:"timestamp"`
	BugsFound          int      `json:"bugs_found"`
	OptimizationsFound int      `json:"optimizations_found"`
	OverallSeverity    string   `json:"overall_severity"`
}

// Report is the final, read-only result of a review.
type Report struct {
	Summary              Summary               `json:"summary"`
	SeverityDistribution map[Severity]int      `json:"severity_distribution"`
	Bugs                 []BugFinding          `json:"bugs"`
	Optimizations        []OptimizationFinding `json:"optimizations"`
	Metadata             Metadata              `json:"metadata"`
	ExecutiveSummary     string                `json:"executive_summary,omitempty"`
}

// OrderedSeverities returns the distribution's keys with the canonical
// buckets first and any other severities after them in lexical order.
func (r *Report) OrderedSeverities() []Severity {
	out := make([]Severity, 0, len(r.SeverityDistribution))
	out = append(out, CanonicalSeverities...)
	var extra []Severity
	for s := range r.SeverityDistribution {
		if SeverityRank(s) == 0 {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// BugsBySeverity groups the report's bugs by severity, preserving order.
func (r *Report) BugsBySeverity() map[Severity][]BugFinding {
	m := make(map[Severity][]BugFinding)
	for _, b := range r.Bugs {
		m[b.Severity] = append(m[b.Severity], b)
	}
	return m
}
