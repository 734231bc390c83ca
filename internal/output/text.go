package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dshills/inspect/internal/review"
)

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorOrange = lipgloss.Color("#ffb86c")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorPurple = lipgloss.Color("#bd93f9")
	colorDim    = lipgloss.Color("#6272a4")
)

// textStyles are bound to the destination writer's renderer so color is
// only emitted when the destination is a terminal.
type textStyles struct {
	title    lipgloss.Style
	rule     lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	ok       lipgloss.Style
	errorMsg lipgloss.Style
	severity map[review.Severity]lipgloss.Style
	other    lipgloss.Style
	opt      lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:    r.NewStyle().Foreground(colorBlue).Bold(true),
		rule:     r.NewStyle().Foreground(colorDim),
		label:    r.NewStyle().Bold(true),
		dim:      r.NewStyle().Foreground(colorDim),
		ok:       r.NewStyle().Foreground(colorGreen),
		errorMsg: r.NewStyle().Foreground(colorRed).Bold(true),
		severity: map[review.Severity]lipgloss.Style{
			review.SeverityCritical: r.NewStyle().Foreground(colorRed).Bold(true),
			review.SeverityHigh:     r.NewStyle().Foreground(colorOrange).Bold(true),
			review.SeverityMedium:   r.NewStyle().Foreground(colorYellow),
			review.SeverityLow:      r.NewStyle().Foreground(colorDim),
		},
		other: r.NewStyle().Foreground(colorPurple),
		opt:   r.NewStyle().Foreground(colorPurple).Bold(true),
	}
}

func (s textStyles) forSeverity(sev review.Severity) lipgloss.Style {
	if st, ok := s.severity[sev]; ok {
		return st
	}
	return s.other
}

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	st := newTextStyles(w)
	sum := report.Summary

	ew.println(st.title.Render(fmt.Sprintf("Code Review: %s", sum.File)))
	ew.printf("%s %s   %s %d   %s %s\n",
		st.label.Render("Language:"), sum.Language,
		st.label.Render("Lines:"), sum.LinesOfCode,
		st.label.Render("Reviewed:"), orDash(sum.Timestamp),
	)
	if report.Metadata.Error != "" {
		ew.println(st.errorMsg.Render("Error: " + report.Metadata.Error))
	}
	ew.println(st.rule.Render(strings.Repeat("─", 60)))

	ew.printf("Bugs: %d   Optimizations: %d   Overall: %s\n",
		sum.BugsFound, sum.OptimizationsFound,
		st.forSeverity(review.Severity(strings.ToLower(sum.OverallSeverity))).Render(sum.OverallSeverity),
	)
	parts := make([]string, 0, len(report.SeverityDistribution))
	for _, sev := range report.OrderedSeverities() {
		parts = append(parts, fmt.Sprintf("%s %d", sev, report.SeverityDistribution[sev]))
	}
	ew.printf("Severity: %s\n", strings.Join(parts, " | "))
	ew.println(st.rule.Render(strings.Repeat("─", 60)))

	if sum.BugsFound == 0 && sum.OptimizationsFound == 0 {
		ew.println(st.ok.Render("\nNo issues found. Looks good!"))
	}

	grouped := report.BugsBySeverity()
	for _, sev := range report.OrderedSeverities() {
		bugs := grouped[sev]
		if len(bugs) == 0 {
			continue
		}

		label := strings.ToUpper(string(sev))
		ew.printf("\n%s\n", st.forSeverity(sev).Render(fmt.Sprintf("%s %s (%d)", severityIcon(sev), label, len(bugs))))
		ew.println(st.rule.Render(strings.Repeat("─", 40)))

		for _, b := range bugs {
			ew.printf("\n  %s  %s  %s\n",
				lineLabel(b.Line), orDash(b.Type),
				st.dim.Render(fmt.Sprintf("confidence %.0f%%", b.Confidence*100)))
			for _, line := range wrapText(b.Description, 70) {
				ew.printf("    %s\n", line)
			}
			if b.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(b.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	if len(report.Optimizations) > 0 {
		ew.printf("\n%s\n", st.opt.Render(fmt.Sprintf("OPTIMIZATIONS (%d)", len(report.Optimizations))))
		ew.println(st.rule.Render(strings.Repeat("─", 40)))
		for _, o := range report.Optimizations {
			line := "file"
			if o.Line != nil {
				line = lineLabel(*o.Line)
			}
			ew.printf("\n  [%s] %s  %s  %s\n",
				orDash(string(o.Type)), line, orDash(o.Category),
				st.dim.Render("impact "+orDash(string(o.Impact))))
			for _, l := range wrapText(o.Description, 70) {
				ew.printf("    %s\n", l)
			}
			if o.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, l := range wrapText(o.Suggestion, 70) {
					ew.printf("    %s\n", l)
				}
			}
		}
	}

	if report.ExecutiveSummary != "" {
		ew.printf("\n%s\n", st.label.Render("Executive summary"))
		for _, line := range wrapText(report.ExecutiveSummary, 76) {
			ew.printf("  %s\n", line)
		}
	}

	ew.printf("\n%s\n", st.rule.Render(strings.Repeat("─", 60)))
	if report.Metadata.RunID != "" {
		ew.println(st.dim.Render("Run " + report.Metadata.RunID))
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func lineLabel(line int) string {
	if line < 1 {
		return "Line ?"
	}
	return fmt.Sprintf("Line %d", line)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func severityIcon(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return "[!!!]"
	case review.SeverityHigh:
		return "[!!]"
	case review.SeverityMedium:
		return "[!]"
	case review.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
