package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/logging"
	"github.com/exploopio/nessus-convert/pkg/scanners"
	"github.com/exploopio/nessus-convert/pkg/scanners/nessus"
	"github.com/exploopio/nessus-convert/pkg/scanners/nessusxml"
	"github.com/exploopio/nessus-convert/pkg/shared/severity"
	"github.com/exploopio/nessus-convert/pkg/sink"
)

const envPrefix = "NESSUS_CONVERT"

// Config is the resolved run configuration. Values come from, in increasing
// priority: defaults, the YAML config file, NESSUS_CONVERT_* environment
// variables, then command-line flags.
type Config struct {
	Input       string `mapstructure:"input" yaml:"input"`
	Output      string `mapstructure:"output" yaml:"output"`
	Format      string `mapstructure:"format" yaml:"format"`
	Parser      string `mapstructure:"parser" yaml:"parser"`
	KeepUnbound bool   `mapstructure:"keep_unbound" yaml:"keep_unbound"`
	Dedupe      bool   `mapstructure:"dedupe" yaml:"dedupe"`
	MinRisk     string `mapstructure:"min_risk" yaml:"min_risk"`
	Strict      bool   `mapstructure:"strict" yaml:"strict"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	Log logging.Config `mapstructure:"log" yaml:"log"`
}

// Validate checks the configuration before any input is read.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return invalidConfig("input is required (use --input or set %s_INPUT)", envPrefix)
	}
	if _, err := sink.ParseFormat(c.Format); err != nil {
		return err
	}
	switch c.Parser {
	case "", scanners.Auto, nessus.ParserName, nessusxml.ParserName:
	default:
		return invalidConfig("unknown parser %q (want %s, %s or %s)", c.Parser, scanners.Auto, nessus.ParserName, nessusxml.ParserName)
	}
	if c.MinRisk != "" && severity.FromString(c.MinRisk) == severity.Unknown {
		return invalidConfig("unknown risk level %q", c.MinRisk)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return invalidConfig("unsupported log format %q", c.Log.Format)
	}
	return nil
}

func invalidConfig(format string, args ...interface{}) error {
	return errors.E(errors.KindInvalidInput, "config", fmt.Sprintf(format, args...), errors.ErrInvalidConfig)
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"input":        "input",
	"output":       "output",
	"format":       "format",
	"parser":       "parser",
	"keep-unbound": "keep_unbound",
	"dedupe":       "dedupe",
	"min-risk":     "min_risk",
	"strict":       "strict",
	"metrics-file": "metrics_file",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"log-file":     "log.file_path",
}

func setDefaults(v *viper.Viper) {
	logDefaults := logging.DefaultConfig()
	v.SetDefault("output", "-")
	v.SetDefault("format", string(sink.FormatCSV))
	v.SetDefault("parser", scanners.Auto)
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size", logDefaults.MaxSize)
	v.SetDefault("log.max_backups", logDefaults.MaxBackups)
	v.SetDefault("log.max_age", logDefaults.MaxAge)
	v.SetDefault("log.compress", logDefaults.Compress)

	v.SetDefault("input", "")
	v.SetDefault("keep_unbound", false)
	v.SetDefault("dedupe", false)
	v.SetDefault("min_risk", "")
	v.SetDefault("strict", false)
	v.SetDefault("metrics_file", "")
}

// loadConfig resolves the configuration from the config file (if any), the
// environment and the parsed flags.
func loadConfig(configFile string, cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Log.FilePath != "" && (cfg.Log.Output == "" || cfg.Log.Output == logging.DefaultConfig().Output) {
		cfg.Log.Output = "file"
	}
	return &cfg, nil
}
