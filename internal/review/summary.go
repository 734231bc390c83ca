package review

import (
	"context"
	"strings"
	"time"

	"github.com/dshills/inspect/internal/providers"
	"go.uber.org/zap"
)

// NoSummary is returned by Summarize when the model produced nothing usable.
const NoSummary = "No summary generated"

// Summarize asks the model for a short executive summary of the report. It
// never fails: any error, timeout or empty answer yields NoSummary.
func Summarize(ctx context.Context, model providers.Model, r *Report, timeout time.Duration, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == nil || r == nil {
		return NoSummary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := model.Generate(ctx, providers.Request{
		UserPrompt: BuildSummaryPrompt(r.Summary.BugsFound, r.Summary.OptimizationsFound),
		MaxTokens:  512,
	})
	if err != nil {
		logger.Warn("summary generation failed", zap.Error(err))
		return NoSummary
	}
	text := strings.TrimSpace(stripThinking(resp.Content))
	if text == "" {
		return NoSummary
	}
	return text
}
