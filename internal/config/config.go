package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DataDir holds the source files named by the catalog.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
	// CatalogFile replaces the built-in catalog when set.
	CatalogFile      string  `mapstructure:"catalog_file" yaml:"catalog_file"`
	DefaultView      string  `mapstructure:"default_view" yaml:"default_view"`
	DefaultEntity    string  `mapstructure:"default_entity" yaml:"default_entity"`
	ConstantFallback float64 `mapstructure:"constant_fallback" yaml:"constant_fallback"`
	StrictSchema     bool    `mapstructure:"strict_schema" yaml:"strict_schema"`
	OutputFormat     string  `mapstructure:"output_format" yaml:"output_format"`

	// Chart rendering
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".trendloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.trendloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("catalog_file", "")
	v.SetDefault("default_view", "country")
	v.SetDefault("default_entity", "USA")
	v.SetDefault("constant_fallback", 0.5)
	v.SetDefault("strict_schema", false)
	v.SetDefault("output_format", "md")
	v.SetDefault("chart_width", 960)
	v.SetDefault("chart_height", 540)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
}

// Defaults returns the configuration used when no file or environment overrides exist.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TRENDLOOM")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ConstantFallback < 0 || c.ConstantFallback > 1 {
		return nil, fmt.Errorf("constant_fallback %v outside [0,1]", c.ConstantFallback)
	}
	return &c, nil
}
