package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the inspect configuration.
type Config struct {
	Provider            string        `yaml:"provider" json:"provider"`
	Model               string        `yaml:"model" json:"model"`
	Temperature         float64       `yaml:"temperature" json:"temperature"`
	MaxTokens           int           `yaml:"maxTokens" json:"maxTokens"`
	TimeoutSeconds      int           `yaml:"timeoutSeconds" json:"timeoutSeconds"`
	ConfidenceThreshold float64       `yaml:"confidenceThreshold" json:"confidenceThreshold"`
	Format              string        `yaml:"format" json:"format"`
	FailOn              string        `yaml:"failOn" json:"failOn"`
	OutDir              string        `yaml:"outDir,omitempty" json:"outDir,omitempty"`
	Summary             bool          `yaml:"summary" json:"summary"`
	RulesFile           string        `yaml:"rulesFile,omitempty" json:"rulesFile,omitempty"`
	Compare             []string      `yaml:"compare,omitempty" json:"compare,omitempty"`
	Cache               CacheConfig   `yaml:"cache" json:"cache"`
	Privacy             PrivacyConfig `yaml:"privacy" json:"privacy"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled       *bool  `yaml:"enabled,omitempty" json:"enabled"`
	Dir           string `yaml:"dir,omitempty" json:"dir,omitempty"`
	TTLSeconds    int    `yaml:"ttlSeconds" json:"ttlSeconds"`
	MemoryEntries int    `yaml:"memoryEntries" json:"memoryEntries"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets *bool    `yaml:"redactSecrets,omitempty" json:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty" json:"redactPaths,omitempty"`
}

// Timeout returns the per-call model timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheEnabled reports whether the response cache is on.
func (c Config) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// RedactSecrets reports whether secret redaction is on.
func (c Config) RedactSecrets() bool {
	return c.Privacy.RedactSecrets != nil && *c.Privacy.RedactSecrets
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:            "ollama",
		Model:               "deepseek-r1",
		Temperature:         0.1,
		MaxTokens:           4096,
		TimeoutSeconds:      300,
		ConfidenceThreshold: 0.7,
		Format:              "text",
		FailOn:              "none",
		OutDir:              "reports",
		Cache: CacheConfig{
			Enabled:       boolPtr(true),
			TTLSeconds:    86400,
			MemoryEntries: 128,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: boolPtr(true),
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// ConfigDir returns the platform-appropriate config directory for inspect.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "inspect"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "inspect"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "inspect"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "inspect"), nil
	default:
		return filepath.Join(home, ".config", "inspect"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadPath(path)
}

func loadPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(&cfg, k, v); err != nil {
			return Config{}, fmt.Errorf("flag %s: %w", k, err)
		}
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.ConfidenceThreshold > 0 {
		dst.ConfidenceThreshold = src.ConfidenceThreshold
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.OutDir != "" {
		dst.OutDir = src.OutDir
	}
	if src.Summary {
		dst.Summary = true
	}
	if src.RulesFile != "" {
		dst.RulesFile = src.RulesFile
	}
	if len(src.Compare) > 0 {
		dst.Compare = src.Compare
	}
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	if src.Cache.MemoryEntries > 0 {
		dst.Cache.MemoryEntries = src.Cache.MemoryEntries
	}
	if src.Privacy.RedactSecrets != nil {
		dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets
	}
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

var envKeys = map[string]string{
	"INSPECT_PROVIDER":   "provider",
	"INSPECT_MODEL":      "model",
	"INSPECT_FORMAT":     "format",
	"INSPECT_FAIL_ON":    "failOn",
	"INSPECT_TIMEOUT":    "timeoutSeconds",
	"INSPECT_CONFIDENCE": "confidenceThreshold",
	"INSPECT_OUT_DIR":    "outDir",
	"INSPECT_RULES":      "rulesFile",
}

func mergeEnv(cfg *Config) error {
	for env, key := range envKeys {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "outDir":
		cfg.OutDir = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "confidenceThreshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("confidenceThreshold must be a number: %w", err)
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("confidenceThreshold must be between 0 and 1, got %g", f)
		}
		cfg.ConfidenceThreshold = f
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "summary":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("summary must be a boolean: %w", err)
		}
		cfg.Summary = b
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = &b
	case "rulesFile":
		cfg.RulesFile = value
	case "compare":
		cfg.Compare = splitList(value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "cache.memoryEntries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.memoryEntries must be an integer: %w", err)
		}
		cfg.Cache.MemoryEntries = n
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = &b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
