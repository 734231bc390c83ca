package output

import "github.com/dshills/inspect/internal/review"

func sampleReport() *review.Report {
	line := 12
	r := review.BuildReport(
		[]review.BugFinding{
			{
				Line:        4,
				Severity:    review.SeverityCritical,
				Type:        "sql_injection",
				Description: "Query is built from user input with string formatting",
				Suggestion:  "if not uid.isdigit(): return None",
				Confidence:  0.95,
			},
			{
				Line:        9,
				Severity:    review.SeverityLow,
				Type:        "naming",
				Description: "Variable name l is easy to confuse with 1",
				Suggestion:  "Use a descriptive name",
				Confidence:  0.8,
			},
			{
				Line:        11,
				Severity:    "blocker",
				Type:        "crash",
				Description: "Unhandled exception",
				Confidence:  0.9,
			},
		},
		[]review.OptimizationFinding{
			{
				Type:        review.OptimizationPerformance,
				Line:        &line,
				Category:    "loop",
				Description: "List membership test inside a loop is quadratic",
				Suggestion:  "Convert the list to a set first",
				Impact:      review.ImpactHigh,
			},
			{
				Type:        review.OptimizationBestPractice,
				Category:    "docs",
				Description: "Module has no docstring",
				Impact:      review.ImpactLow,
			},
		},
		review.Metadata{
			FileName:    "users.py",
			FileSize:    420,
			LinesOfCode: 20,
			Timestamp:   "2026-01-02T03:04:05Z",
			Language:    review.LanguagePython,
			RunID:       "run-42",
		},
	)
	r.ExecutiveSummary = "One critical injection bug needs attention."
	return r
}

func emptyReport() *review.Report {
	return review.BuildReport(nil, nil, review.Metadata{
		FileName:    "clean.go",
		LinesOfCode: 3,
		Language:    review.LanguageGo,
	})
}
