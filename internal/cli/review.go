package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dshills/inspect/internal/cache"
	"github.com/dshills/inspect/internal/config"
	"github.com/dshills/inspect/internal/output"
	"github.com/dshills/inspect/internal/providers"
	"github.com/dshills/inspect/internal/redact"
	"github.com/dshills/inspect/internal/review"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Review flags
var (
	flagProvider   string
	flagModel      string
	flagCompare    string
	flagFormat     string
	flagOut        string
	flagOutDir     string
	flagNoSave     bool
	flagFailOn     string
	flagConfidence float64
	flagTimeout    int
	flagRules      string
	flagSummary    bool
	flagNoRedact   bool
	flagNoCache    bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider ("+strings.Join(providers.Names(), ", ")+")")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagCompare, "compare", "", "Compare mode: comma-separated provider:model pairs")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format ("+strings.Join(output.Formats, ", ")+")")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Directory for saved JSON and Markdown reports")
	cmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not save JSON and Markdown reports")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, low, medium, high, critical)")
	cmd.Flags().Float64Var(&flagConfidence, "confidence", 0, "Minimum bug confidence, 0-1 (default 0.7)")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per model call timeout in seconds")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path")
	cmd.Flags().BoolVar(&flagSummary, "summary", false, "Ask the model for an executive summary")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagOutDir != "" {
		m["outDir"] = flagOutDir
	}
	if flagConfidence > 0 {
		m["confidenceThreshold"] = strconv.FormatFloat(flagConfidence, 'g', -1, 64)
	}
	if flagTimeout > 0 {
		m["timeoutSeconds"] = strconv.Itoa(flagTimeout)
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagCompare != "" {
		m["compare"] = flagCompare
	}
	if flagSummary {
		m["summary"] = "true"
	}
	return m
}

// authWatch remembers the first authentication failure seen by the model so
// the CLI can report it after the pipeline has degraded past it.
type authWatch struct {
	next providers.Model

	mu  sync.Mutex
	err error
}

func (a *authWatch) Name() string { return a.next.Name() }

func (a *authWatch) Generate(ctx context.Context, req providers.Request) (providers.Response, error) {
	resp, err := a.next.Generate(ctx, req)
	if err != nil && providers.IsAuthError(err) {
		a.mu.Lock()
		if a.err == nil {
			a.err = err
		}
		a.mu.Unlock()
	}
	return resp, err
}

func (a *authWatch) authErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// newModel builds the model client for provider/model, wrapped with the
// response cache when enabled.
var newModel = func(providerName, modelName string, cfg config.Config) (providers.Model, error) {
	m, err := providers.New(providerName, modelName)
	if err != nil {
		return nil, err
	}
	if flagNoCache || !cfg.CacheEnabled() {
		return m, nil
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds, cfg.Cache.MemoryEntries)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", zap.Error(err))
		return m, nil
	}
	return providers.NewCached(m, modelName, c), nil
}

func pipelineOptions(cfg config.Config, model providers.Model, rules *review.Rules) review.Options {
	return review.Options{
		Model:  model,
		Logger: logger,
		Redact: redact.Policy{
			Secrets: cfg.RedactSecrets(),
			Paths:   cfg.Privacy.RedactPaths,
		},
		Rules:               rules,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Timeout:             cfg.Timeout(),
		MaxTokens:           cfg.MaxTokens,
		Temperature:         cfg.Temperature,
	}
}

func runReview(ctx context.Context, path string, cfg config.Config) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", path)
		exitCode = ExitUsageError
		return
	}
	if _, err := output.GetWriter(cfg.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	if flagNoRedact {
		off := false
		cfg.Privacy.RedactSecrets = &off
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	rules, err := review.LoadRules(cfg.RulesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	var (
		report  *review.Report
		watches []*authWatch
	)
	if len(cfg.Compare) >= 2 {
		report, watches, err = runCompareMode(ctx, path, cfg, rules)
	} else {
		var m providers.Model
		m, err = newModel(cfg.Provider, cfg.Model, cfg)
		if err == nil {
			w := &authWatch{next: m}
			watches = append(watches, w)
			report = review.New(pipelineOptions(cfg, w, rules)).Run(ctx, path)
		}
	}
	if err == nil {
		for _, w := range watches {
			if err = w.authErr(); err != nil {
				break
			}
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
			return
		}
		exitCode = ExitRuntimeError
		return
	}

	if cfg.Summary && len(watches) > 0 {
		report.ExecutiveSummary = review.Summarize(ctx, watches[0], report, cfg.Timeout(), logger)
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if !flagNoSave && cfg.OutDir != "" {
		saved, err := output.SaveReports(report, cfg.OutDir, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving reports: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		fmt.Fprintf(os.Stderr, "Reports saved:\n  JSON: %s\n  Markdown: %s\n", saved.JSON, saved.Markdown)
	}

	if failsThreshold(report, cfg.FailOn) {
		exitCode = ExitFindings
	}
}

func failsThreshold(report *review.Report, failOn string) bool {
	if failOn == "none" || failOn == "" {
		return false
	}
	for _, b := range report.Bugs {
		if review.MeetsThreshold(b.Severity, failOn) {
			return true
		}
	}
	return false
}

func runCompareMode(ctx context.Context, path string, cfg config.Config, rules *review.Rules) (*review.Report, []*authWatch, error) {
	runs := make([]review.ModelRun, 0, len(cfg.Compare))
	watches := make([]*authWatch, 0, len(cfg.Compare))
	for _, spec := range cfg.Compare {
		providerName, modelName, err := review.ParseModelSpec(spec)
		if err != nil {
			return nil, nil, err
		}
		m, err := newModel(providerName, modelName, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", spec, err)
		}
		w := &authWatch{next: m}
		watches = append(watches, w)
		runs = append(runs, review.ModelRun{
			Label:    spec,
			Pipeline: review.New(pipelineOptions(cfg, w, rules)),
		})
	}

	cr, err := review.Compare(ctx, path, runs)
	if err != nil {
		return nil, nil, err
	}

	fmt.Fprintf(os.Stderr, "Compare mode: %d models, %d consensus bugs, %d total\n",
		len(runs), len(cr.Consensus), cr.Merged.Summary.BugsFound)
	for _, run := range runs {
		if unique := cr.Unique[run.Label]; len(unique) > 0 {
			fmt.Fprintf(os.Stderr, "  %s: %d unique bugs\n", run.Label, len(unique))
		}
	}
	return cr.Merged, watches, nil
}

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review a source file for bugs and optimizations",
	Long: `Review a single source file. The file's extension selects the language:
.py .js .ts .java .cpp .c .go .rb .php. Other files produce an empty report
without contacting the model.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if len(cfg.Compare) == 1 {
			return errors.New("--compare needs at least two provider:model pairs")
		}
		runReview(cmd.Context(), args[0], cfg)
		return nil
	},
}

func init() {
	addReviewFlags(reviewCmd)
}
