package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dshills/inspect/internal/config"
	"github.com/dshills/inspect/internal/providers"
	"github.com/dshills/inspect/internal/review"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Models   []string
}

// knownModels is advisory; any model name the provider accepts works.
var knownModels = []modelInfo{
	{Provider: "anthropic", Models: []string{"claude-sonnet-4-6", "claude-opus-4-6", "claude-haiku-4-5"}},
	{Provider: "openai", Models: []string{"gpt-5.2", "gpt-5.2-codex", "gpt-4.1-mini", "o3-mini"}},
	{Provider: "gemini", Models: []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-3-flash-preview"}},
	{Provider: "ollama", Models: []string{"deepseek-r1", "qwen2.5-coder", "llama3.3", "codellama", "deepseek-coder-v2"}},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		def := config.Default()
		for _, info := range knownModels {
			fmt.Fprintf(os.Stdout, "%s:\n", info.Provider)
			for _, m := range info.Models {
				marker := ""
				if info.Provider == def.Provider && m == def.Model {
					marker = " (default)"
				}
				fmt.Fprintf(os.Stdout, "  - %s%s\n", m, marker)
			}
		}
	},
}

// doctorTimeout bounds each credential probe.
const doctorTimeout = 30 * time.Second

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor [provider:model ...]",
	Short: "Send a one-line prompt to each model to check credentials",
	Long: `Without arguments, checks the configured provider and model (or
--provider). With provider:model arguments, checks each of them, which is
handy before a --compare run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		targets := args
		if len(targets) == 0 {
			targets = []string{cfg.Provider + ":" + cfg.Model}
		}

		for _, spec := range targets {
			providerName, modelName, err := review.ParseModelSpec(spec)
			if err != nil {
				fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", spec, err)
				exitCode = max(exitCode, ExitUsageError)
				continue
			}
			if code := probe(cmd.Context(), providerName, modelName); code != ExitSuccess {
				exitCode = max(exitCode, code)
			}
		}
		return nil
	},
}

func probe(ctx context.Context, providerName, modelName string) int {
	label := providerName + ":" + modelName
	fmt.Fprintf(os.Stdout, "Checking %s...\n", label)

	m, err := providers.New(providerName, modelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", label, err)
		if providers.IsAuthError(err) {
			return ExitAuthError
		}
		return ExitUsageError
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	start := time.Now()
	_, err = m.Generate(ctx, providers.Request{
		SystemPrompt: "Respond with exactly: ok",
		UserPrompt:   "ping",
		MaxTokens:    10,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", label, err)
		if providers.IsAuthError(err) {
			return ExitAuthError
		}
		return ExitRuntimeError
	}

	fmt.Fprintf(os.Stdout, "OK   %s responded in %s\n", label, time.Since(start).Round(time.Millisecond))
	return ExitSuccess
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
