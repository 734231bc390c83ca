package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/inspect/internal/review"
)

// JSONWriter outputs the full report as indented JSON. HTML characters are
// left unescaped since findings routinely quote code such as "a < b && c".
type JSONWriter struct {
	Compact bool
}

func (j *JSONWriter) Write(w io.Writer, report *review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !j.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}
