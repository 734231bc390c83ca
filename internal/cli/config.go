package cli

import (
	"fmt"
	"os"

	"github.com/dshills/inspect/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configKeysHelp = `Keys:
  provider               ollama, anthropic, openai, gemini
  model                  model name passed to the provider
  temperature            sampling temperature, 0-2
  maxTokens              response token limit per model call
  timeoutSeconds         per model call timeout
  confidenceThreshold    bugs below this confidence are dropped, 0-1
  format                 text, json, markdown, html
  failOn                 none, low, medium, high, critical
  outDir                 directory for saved JSON and Markdown reports
  summary                ask the model for an executive summary (true/false)
  rulesFile              YAML rules pack path
  compare                comma-separated provider:model pairs
  cache.enabled          true/false
  cache.dir              response cache directory
  cache.ttlSeconds       cache entry lifetime
  cache.memoryEntries    in-memory LRU size
  privacy.redactSecrets  scrub secrets before sending code (true/false)`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage inspect configuration",
	Long: `Manage the inspect configuration file.

Settings are layered: built-in defaults, then the config file, then
INSPECT_* environment variables, then command flags.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the built-in defaults (ollama with deepseek-r1, confidence 0.7,
reports saved under ./reports) to the config file. An existing file is left
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
			return nil
		}

		cfg := config.Default()
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Config file created at %s (provider %s, model %s)\n", path, cfg.Provider, cfg.Model)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long:  "Set a value in the config file, creating it from defaults if needed.\n\n" + configKeysHelp,
	Example: `  inspect config set provider anthropic
  inspect config set confidenceThreshold 0.8
  inspect config set compare ollama:deepseek-r1,openai:gpt-4o`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		if cfg.Provider == "" {
			cfg = config.Default()
		}
		if err := config.SetField(&cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Set %s = %s\n", key, value)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long:  "Print the configuration after defaults, the config file and INSPECT_* variables are applied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd, configPathCmd)
}
