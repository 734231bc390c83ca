// Package output formats review reports for display or storage.
//
// Four formats are supported:
//   - text: terminal summary styled with lipgloss (default)
//   - json: the full report structure
//   - markdown: one collapsible section per severity
//   - html: the markdown report rendered by goldmark
//
// Use [GetWriter] to obtain a [Writer] for a format name, or [WriteReport] to
// write straight to a file or stdout. [SaveReports] stores the JSON and
// Markdown renditions side by side in a report directory.
package output
