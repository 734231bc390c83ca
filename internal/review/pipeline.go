package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/dshills/inspect/internal/providers"
	"github.com/dshills/inspect/internal/redact"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase records how far a review state has progressed.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseParsed
	PhaseBugsDetected
	PhaseOptimizationsDetected
	PhaseReported
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseParsed:
		return "parsed"
	case PhaseBugsDetected:
		return "bugs_detected"
	case PhaseOptimizationsDetected:
		return "optimizations_detected"
	case PhaseReported:
		return "reported"
	default:
		return "unknown"
	}
}

// State is the value threaded through the pipeline. Each stage receives a
// copy and returns the next state; fields written by an earlier stage are
// never cleared by a later one.
type State struct {
	FilePath      string
	CodeContent   string
	Language      Language
	Bugs          []BugFinding
	Optimizations []OptimizationFinding
	Report        *Report
	Metadata      Metadata
	Phase         Phase
}

// Stage is one step of the pipeline.
type Stage struct {
	Name    string
	Reaches Phase
	Run     func(context.Context, State) State
}

// Options configures a Pipeline. Zero values fall back to defaults.
type Options struct {
	Model               providers.Model
	Logger              *zap.Logger
	Redact              redact.Policy
	Rules               *Rules
	ConfidenceThreshold float64
	Timeout             time.Duration
	MaxTokens           int
	Temperature         float64

	// Now and NewRunID are overridable for deterministic tests.
	Now      func() time.Time
	NewRunID func() string
}

// Pipeline runs the fixed review sequence against one file.
type Pipeline struct {
	model       providers.Model
	logger      *zap.Logger
	policy      redact.Policy
	rules       *Rules
	threshold   float64
	timeout     time.Duration
	maxTokens   int
	temperature float64
	now         func() time.Time
	newRunID    func() string
}

// Default model call settings.
const (
	DefaultTimeout   = 300 * time.Second
	DefaultMaxTokens = 4096
)

// New creates a Pipeline. A nil model is allowed; detection stages then
// return no findings.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		model:       opts.Model,
		logger:      opts.Logger,
		policy:      opts.Redact,
		rules:       opts.Rules,
		threshold:   opts.ConfidenceThreshold,
		timeout:     opts.Timeout,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		now:         opts.Now,
		newRunID:    opts.NewRunID,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.threshold <= 0 {
		p.threshold = DefaultConfidenceThreshold
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.maxTokens <= 0 {
		p.maxTokens = DefaultMaxTokens
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p
}

// Stages returns the pipeline steps in execution order.
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		{Name: "parse", Reaches: PhaseParsed, Run: p.parse},
		{Name: "detect_bugs", Reaches: PhaseBugsDetected, Run: p.detectBugs},
		{Name: "detect_optimizations", Reaches: PhaseOptimizationsDetected, Run: p.detectOptimizations},
		{Name: "build_report", Reaches: PhaseReported, Run: p.buildReport},
	}
}

// Run reviews the file at path and always returns a report. Failures along
// the way degrade to empty findings and are logged.
func (p *Pipeline) Run(ctx context.Context, path string) *Report {
	return p.RunState(ctx, path).Report
}

// RunState is Run but returns the final state instead of only the report.
func (p *Pipeline) RunState(ctx context.Context, path string) State {
	st := State{
		FilePath:      path,
		Language:      LanguageUnknown,
		Bugs:          []BugFinding{},
		Optimizations: []OptimizationFinding{},
		Phase:         PhaseInit,
	}
	for _, stage := range p.Stages() {
		start := time.Now()
		st = stage.Run(ctx, st)
		st.Phase = stage.Reaches
		p.logger.Debug("stage complete",
			zap.String("stage", stage.Name),
			zap.Stringer("phase", st.Phase),
			zap.String("file", path),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return st
}

func (p *Pipeline) parse(_ context.Context, st State) State {
	runID := p.newRunID()
	data, err := os.ReadFile(st.FilePath)
	if err == nil && !utf8.Valid(data) {
		err = errors.New("file is not valid UTF-8 text")
	}
	if err != nil {
		p.logger.Warn("could not read file", zap.String("file", st.FilePath), zap.Error(err))
		st.CodeContent = ""
		st.Language = LanguageUnknown
		st.Metadata = Metadata{Error: err.Error(), RunID: runID}
		return st
	}

	code := string(data)
	st.CodeContent = code
	st.Language = DetectLanguage(st.FilePath)
	st.Metadata = Metadata{
		FileName:    filepath.Base(st.FilePath),
		FileSize:    len(data),
		LinesOfCode: CountLines(code),
		Timestamp:   p.now().Format(time.RFC3339),
		Language:    st.Language,
		RunID:       runID,
	}
	p.logger.Info("parsed file",
		zap.String("file", st.Metadata.FileName),
		zap.String("language", string(st.Language)),
		zap.Int("lines", st.Metadata.LinesOfCode),
	)
	return st
}

func (p *Pipeline) detectBugs(ctx context.Context, st State) State {
	content, ok := p.query(ctx, BugDetectionPrompt, st)
	if !ok {
		st.Bugs = []BugFinding{}
		return st
	}
	res, err := ParseBugs(content)
	if err != nil {
		p.logger.Warn("unusable bug detection response", zap.Error(err))
	}
	if res.Malformed > 0 {
		p.logger.Debug("dropped malformed bug entries", zap.Int("count", res.Malformed))
	}
	st.Bugs = p.rules.ApplySeverityOverrides(FilterByConfidence(res.Findings, p.threshold))
	p.logger.Info("bug detection complete",
		zap.Int("found", len(res.Findings)),
		zap.Int("kept", len(st.Bugs)),
		zap.Float64("threshold", p.threshold),
	)
	return st
}

func (p *Pipeline) detectOptimizations(ctx context.Context, st State) State {
	content, ok := p.query(ctx, OptimizationPrompt, st)
	if !ok {
		st.Optimizations = []OptimizationFinding{}
		return st
	}
	res, err := ParseOptimizations(content)
	if err != nil {
		p.logger.Warn("unusable optimization response", zap.Error(err))
	}
	if res.Malformed > 0 {
		p.logger.Debug("dropped malformed optimization entries", zap.Int("count", res.Malformed))
	}
	st.Optimizations = res.Findings
	p.logger.Info("optimization detection complete", zap.Int("found", len(st.Optimizations)))
	return st
}

func (p *Pipeline) buildReport(_ context.Context, st State) State {
	st.Report = BuildReport(st.Bugs, st.Optimizations, st.Metadata)
	return st
}

// query renders tmpl for the state's code and submits it to the model. It
// reports false when the guard rejects the state or the call fails.
func (p *Pipeline) query(ctx context.Context, tmpl Template, st State) (string, bool) {
	if st.CodeContent == "" || st.Language == LanguageUnknown {
		p.logger.Warn("skipping model call",
			zap.String("file", st.FilePath),
			zap.Bool("empty", st.CodeContent == ""),
			zap.String("language", string(st.Language)),
		)
		return "", false
	}
	if p.model == nil {
		p.logger.Warn("no model configured")
		return "", false
	}

	scrubbed := p.policy.Apply(st.FilePath, st.CodeContent)
	if scrubbed.Blocked {
		p.logger.Warn("file matches a redacted path, not sending to model", zap.String("file", st.FilePath))
		return "", false
	}
	if n := scrubbed.Count(); n > 0 {
		p.logger.Info("redacted secrets before model call",
			zap.Int("count", n),
			zap.Any("kinds", scrubbed.Kinds),
		)
	}

	prompt := BuildCodePrompt(tmpl, st.Language, AnnotateLines(scrubbed.Code)) + p.rules.PromptSection()

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.model.Generate(callCtx, providers.Request{
		UserPrompt:  prompt,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Cacheable:   IsFindingsResponse,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			p.logger.Warn("model call timed out", zap.Duration("timeout", p.timeout))
		} else {
			p.logger.Warn("model call failed", zap.String("model", p.model.Name()), zap.Error(err))
		}
		return "", false
	}
	p.logger.Debug("model response",
		zap.String("model", p.model.Name()),
		zap.Int("tokens", resp.TokensUsed),
		zap.Bool("cached", resp.Cached),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.Content, true
}
