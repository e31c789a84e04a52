package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/source"
)

// EnvPrefix prefixes every environment override, e.g. PDFOUTLINE_BATCH_WORKERS.
const EnvPrefix = "PDFOUTLINE"

// Config is the full application configuration.
type Config struct {
	Source  SourceConfig   `mapstructure:"source" yaml:"source"`
	Outline outline.Config `mapstructure:"outline" yaml:"outline"`
	Batch   BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Output  OutputConfig   `mapstructure:"output" yaml:"output"`
	AI      AIConfig       `mapstructure:"ai" yaml:"ai"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
}

type SourceConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"` // rsc | ledongthuc
	MaxPages int    `mapstructure:"max_pages" yaml:"max_pages"`
}

type BatchConfig struct {
	InputDir               string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir              string `mapstructure:"output_dir" yaml:"output_dir"`
	Workers                int    `mapstructure:"workers" yaml:"workers"`
	DocumentTimeoutSeconds int    `mapstructure:"document_timeout_seconds" yaml:"document_timeout_seconds"`
	Recursive              bool   `mapstructure:"recursive" yaml:"recursive"`
}

type OutputConfig struct {
	Validate bool `mapstructure:"validate" yaml:"validate"`
	Nested   bool `mapstructure:"nested" yaml:"nested"`
}

type AIConfig struct {
	Provider       string `mapstructure:"provider" yaml:"provider"` // none | gemini
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	MaxAttempts    uint   `mapstructure:"max_attempts" yaml:"max_attempts"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text | json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Backend:  source.BackendRSC,
			MaxPages: 50,
		},
		Outline: outline.DefaultConfig(),
		Batch: BatchConfig{
			InputDir:               "/app/input",
			OutputDir:              "/app/output",
			Workers:                4,
			DocumentTimeoutSeconds: 10,
			Recursive:              true,
		},
		Output: OutputConfig{
			Validate: true,
		},
		AI: AIConfig{
			Provider:       "none",
			Model:          "gemini-2.5-flash",
			APIKey:         "${GOOGLE_API_KEY}",
			MaxAttempts:    3,
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Outline.Validate(); err != nil {
		return err
	}
	switch c.Source.Backend {
	case source.BackendRSC, source.BackendLedongthuc:
	default:
		return fmt.Errorf("source.backend: unknown backend %q", c.Source.Backend)
	}
	if c.Source.MaxPages < 0 {
		return errors.New("source.max_pages must be >= 0")
	}
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be >= 1")
	}
	if c.Batch.DocumentTimeoutSeconds < 0 {
		return errors.New("batch.document_timeout_seconds must be >= 0")
	}
	switch c.AI.Provider {
	case "", "none", "gemini":
	default:
		return fmt.Errorf("ai.provider: unknown provider %q", c.AI.Provider)
	}
	if c.AI.TimeoutSeconds < 0 {
		return errors.New("ai.timeout_seconds must be >= 0")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// ResolvedAPIKey returns the AI key with ${ENV_VAR} references expanded.
func (a AIConfig) ResolvedAPIKey() string {
	return ResolveEnvVars(a.APIKey)
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the application logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config. An
// empty cfgFile searches ./pdfoutline.yaml and $HOME/.pdfoutline/.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

// initViper registers defaults, env overrides and the config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults, err := defaultMap()
	if err != nil {
		return err
	}
	setDefaults(cm.v, "", defaults)

	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("pdfoutline")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.pdfoutline")
	}

	// config file is optional
	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// defaultMap renders Default through its YAML form so that viper sees the
// same key names a config file uses.
func defaultMap() (map[string]any, error) {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}
	return m, nil
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// load parses the current viper state into a validated Config.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// File returns the config file in use, or "" when running on defaults.
func (cm *Manager) File() string {
	return cm.v.ConfigFileUsed()
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of the config file. Invalid edits are
// logged and the previous config stays active.
func (cm *Manager) WatchConfig(logger *slog.Logger) {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			logger.Warn("config reload rejected", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# pdfoutline configuration
# Every key can be overridden with PDFOUTLINE_<SECTION>_<KEY>, e.g. PDFOUTLINE_BATCH_WORKERS=8
# API keys use ${ENV_VAR} syntax: export GOOGLE_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
