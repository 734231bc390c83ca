package output

import (
	"html"
	"io"
	"strings"

	"github.com/dshills/inspect/internal/review"
)

// MarkdownWriter outputs the report as a Markdown document with one
// collapsible section per severity.
type MarkdownWriter struct {
	// escapeHTML escapes model-supplied text so the document can be
	// rendered with raw HTML enabled.
	escapeHTML bool
}

func (m *MarkdownWriter) text(s string) string {
	if m.escapeHTML {
		return html.EscapeString(s)
	}
	return s
}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	sum := report.Summary

	ew.printf("# Code Review Report: %s\n\n", m.text(sum.File))

	ew.printf("| Field | Value |\n")
	ew.printf("|-------|-------|\n")
	ew.printf("| File | `%s` |\n", sum.File)
	ew.printf("| Language | %s |\n", sum.Language)
	ew.printf("| Lines of code | %d |\n", sum.LinesOfCode)
	ew.printf("| Reviewed | %s |\n", orDash(sum.Timestamp))
	ew.printf("| Bugs found | %d |\n", sum.BugsFound)
	ew.printf("| Optimizations found | %d |\n", sum.OptimizationsFound)
	ew.printf("| Overall severity | **%s** |\n\n", sum.OverallSeverity)

	if report.Metadata.Error != "" {
		ew.printf("> **Error:** %s\n\n", m.text(report.Metadata.Error))
	}

	if report.ExecutiveSummary != "" {
		ew.printf("## Executive Summary\n\n%s\n\n", m.text(report.ExecutiveSummary))
	}

	ew.printf("## Severity Distribution\n\n")
	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	for _, sev := range report.OrderedSeverities() {
		ew.printf("| %s %s | %d |\n", mdSeverityIcon(sev), m.text(string(sev)), report.SeverityDistribution[sev])
	}
	ew.printf("\n")

	ew.printf("## Bugs\n\n")
	if len(report.Bugs) == 0 {
		ew.printf("No bugs found. :white_check_mark:\n\n")
	}
	grouped := report.BugsBySeverity()
	for _, sev := range report.OrderedSeverities() {
		bugs := grouped[sev]
		if len(bugs) == 0 {
			continue
		}

		ew.printf("<details>\n<summary>%s %s (%d)</summary>\n\n",
			mdSeverityIcon(sev), m.text(strings.ToUpper(string(sev))), len(bugs))

		for _, b := range bugs {
			ew.printf("### %s: %s\n\n", lineLabel(b.Line), m.text(orDash(b.Type)))
			ew.printf("Confidence: %.0f%%\n\n", b.Confidence*100)
			ew.printf("%s\n\n", m.text(b.Description))
			m.writeSuggestion(ew, b.Suggestion, sum.Language)
			ew.printf("---\n\n")
		}

		ew.printf("</details>\n\n")
	}

	ew.printf("## Optimizations\n\n")
	if len(report.Optimizations) == 0 {
		ew.printf("No optimizations suggested.\n\n")
	}
	for _, o := range report.Optimizations {
		where := "whole file"
		if o.Line != nil {
			where = lineLabel(*o.Line)
		}
		ew.printf("### %s (%s)\n\n", m.text(orDash(o.Category)), where)
		ew.printf("Type: `%s` | Impact: **%s**\n\n",
			strings.ReplaceAll(orDash(string(o.Type)), "`", ""), m.text(orDash(string(o.Impact))))
		ew.printf("%s\n\n", m.text(o.Description))
		m.writeSuggestion(ew, o.Suggestion, sum.Language)
	}

	if report.Metadata.RunID != "" {
		ew.printf("*Run %s*\n", report.Metadata.RunID)
	}

	return ew.err
}

func (m *MarkdownWriter) writeSuggestion(ew *errWriter, suggestion string, lang review.Language) {
	if suggestion == "" {
		return
	}
	ew.printf("**Suggestion:**\n\n")
	if looksLikeCode(suggestion) {
		// Fenced content is literal, so it is never escaped; the fence only
		// has to outlast any backtick run inside it.
		fence := codeFence(suggestion)
		ew.printf("%s%s\n%s\n%s\n\n", fence, fenceLang(lang), suggestion, fence)
		return
	}
	ew.printf("> %s\n\n", strings.ReplaceAll(m.text(suggestion), "\n", "\n> "))
}

func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return ":red_circle:"
	case review.SeverityHigh:
		return ":orange_circle:"
	case review.SeverityMedium:
		return ":yellow_circle:"
	case review.SeverityLow:
		return ":white_circle:"
	default:
		return ":grey_question:"
	}
}

func looksLikeCode(s string) bool {
	codeIndicators := []string{
		"func ", "if ", "for ", "return ", "var ", "const ",
		"def ", "class ", "import ", "from ",
		"{", "}", "=>", "->", ":=", "==",
		"()", "[];",
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

func fenceLang(lang review.Language) string {
	if lang == review.LanguageUnknown {
		return ""
	}
	return string(lang)
}
