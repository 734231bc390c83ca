package review

import (
	"slices"
	"strings"
)

// BuildReport assembles the final report from the filtered findings and the
// file metadata. It reads nothing but its arguments, so the same inputs
// always produce an equal report.
func BuildReport(bugs []BugFinding, opts []OptimizationFinding, md Metadata) *Report {
	bugs = normalizeBugs(bugs)
	if opts == nil {
		opts = []OptimizationFinding{}
	} else {
		opts = slices.Clone(opts)
	}

	dist := SeverityDistribution(bugs)
	file := md.FileName
	if file == "" {
		file = "unknown"
	}
	lang := md.Language
	if lang == "" {
		lang = LanguageUnknown
	}

	return &Report{
		Summary: Summary{
			File:               file,
			Language:           lang,
			LinesOfCode:        md.LinesOfCode,
			Timestamp:          md.Timestamp,
			BugsFound:          len(bugs),
			OptimizationsFound: len(opts),
			OverallSeverity:    OverallSeverity(dist),
		},
		SeverityDistribution: dist,
		Bugs:                 bugs,
		Optimizations:        opts,
		Metadata:             md,
	}
}

// normalizeBugs copies bugs with their severity normalized, so a finding
// built by hand with an empty severity still lands in the low bucket.
func normalizeBugs(bugs []BugFinding) []BugFinding {
	out := make([]BugFinding, len(bugs))
	for i, b := range bugs {
		b.Severity = NormalizeSeverity(string(b.Severity))
		out[i] = b
	}
	return out
}

// SeverityDistribution counts bugs per severity. The four canonical buckets
// are always present; any other severity gets its own bucket.
func SeverityDistribution(bugs []BugFinding) map[Severity]int {
	dist := make(map[Severity]int, len(CanonicalSeverities))
	for _, s := range CanonicalSeverities {
		dist[s] = 0
	}
	for _, b := range bugs {
		dist[NormalizeSeverity(string(b.Severity))]++
	}
	return dist
}

// OverallSeverity returns the upper-cased name of the most severe of
// critical, high and medium with a non-zero count, and LOW otherwise. Only
// presence matters, and a report with no bugs is LOW.
func OverallSeverity(dist map[Severity]int) string {
	for _, s := range CanonicalSeverities[:3] {
		if dist[s] > 0 {
			return strings.ToUpper(string(s))
		}
	}
	return strings.ToUpper(string(SeverityLow))
}
