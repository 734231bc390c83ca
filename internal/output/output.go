package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/inspect/internal/review"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Formats lists the names GetWriter accepts.
var Formats = []string{"text", "json", "markdown", "html"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "html":
		return &HTMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *review.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// Saved holds the paths written by SaveReports.
type Saved struct {
	JSON     string
	Markdown string
}

// SaveReports writes the JSON and Markdown renditions of report into dir,
// creating it if needed. Files are named <stem>_review_<YYYYMMDD_HHMMSS>.
func SaveReports(report *review.Report, dir string, now time.Time) (Saved, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("creating report directory: %w", err)
	}
	base := reportBaseName(report, now)
	saved := Saved{
		JSON:     filepath.Join(dir, base+".json"),
		Markdown: filepath.Join(dir, base+".md"),
	}
	if err := WriteReport(report, "json", saved.JSON); err != nil {
		return Saved{}, err
	}
	if err := WriteReport(report, "markdown", saved.Markdown); err != nil {
		return Saved{}, err
	}
	return saved, nil
}

func reportBaseName(report *review.Report, now time.Time) string {
	stem := strings.TrimSuffix(report.Summary.File, filepath.Ext(report.Summary.File))
	if stem == "" {
		stem = "unknown"
	}
	return fmt.Sprintf("%s_review_%s", stem, now.Format("20060102_150405"))
}
