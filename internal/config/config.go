// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Draft store kinds accepted by the draft_store key.
const (
	DraftStoreMemory = "memory"
	DraftStoreFile   = "file"
	DraftStoreNATS   = "nats"
)

// Config holds all configuration values for rentalwizard.
type Config struct {
	BackendURL     string        `mapstructure:"backend_url" yaml:"backend_url" validate:"omitempty,url"`
	APIToken       string        `mapstructure:"api_token" yaml:"api_token,omitempty"`
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	DraftStore     string        `mapstructure:"draft_store" yaml:"draft_store" validate:"oneof=memory file nats"`
	DraftKey       string        `mapstructure:"draft_key" yaml:"draft_key" validate:"required"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gte=0"`
	HooksFile      string        `mapstructure:"hooks_file" yaml:"hooks_file"`
	MetricsAddr    string        `mapstructure:"metrics_addr" yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataDir:        ".rentalwizard",
		DraftStore:     DraftStoreFile,
		DraftKey:       "rentalObjectDraft",
		LogLevel:       "info",
		RequestTimeout: 20 * time.Second,
	}
}

var envKeys = []string{
	"backend_url",
	"api_token",
	"data_dir",
	"draft_store",
	"draft_key",
	"log_level",
	"log_file",
	"request_timeout",
	"hooks_file",
	"metrics_addr",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("rentalwizard")

	def := Default()
	v.SetDefault("backend_url", "")
	v.SetDefault("api_token", "")
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("draft_store", def.DraftStore)
	v.SetDefault("draft_key", def.DraftKey)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("hooks_file", "")
	v.SetDefault("metrics_addr", "")

	v.SetEnvPrefix("RENTALWIZARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		env := "RENTALWIZARD_" + strings.ToUpper(key)
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded values and names the first offending key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("invalid %s: %q fails %s", yamlName(fe.StructField()), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

func yamlName(field string) string {
	switch field {
	case "BackendURL":
		return "backend_url"
	case "APIToken":
		return "api_token"
	case "DataDir":
		return "data_dir"
	case "DraftStore":
		return "draft_store"
	case "DraftKey":
		return "draft_key"
	case "LogLevel":
		return "log_level"
	case "LogFile":
		return "log_file"
	case "RequestTimeout":
		return "request_timeout"
	case "HooksFile":
		return "hooks_file"
	case "MetricsAddr":
		return "metrics_addr"
	}
	return field
}

// NATSDir is where the embedded NATS server keeps its JetStream data.
func (c *Config) NATSDir() string {
	return filepath.Join(c.DataDir, "nats")
}

// DraftsDir is where the file draft store writes its blobs.
func (c *Config) DraftsDir() string {
	return filepath.Join(c.DataDir, "drafts")
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/rentalwizard/rentalwizard.yml or $XDG_CONFIG_HOME/rentalwizard/rentalwizard.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rentalwizard", "rentalwizard.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rentalwizard", "rentalwizard.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "rentalwizard.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
