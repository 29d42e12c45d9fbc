package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"clipwatch/pkg/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntervalMS          = 1000
	DefaultSelectionIntervalMS = 50
	DefaultSettleMS            = 30
	DefaultLLMTimeoutSec       = 60
	DefaultLLMBaseURL          = "https://api.deepseek.com/"
	DefaultHistoryKeep         = 1000
	MinIntervalMS              = 10
)

// Profile is a named chat completion endpoint.
type Profile struct {
	Name    string    `yaml:"name"`
	LLM     LLMConfig `yaml:"llm"`
	Default bool      `yaml:"default,omitempty"`
}

// Config holds the complete configuration including profiles
type Config struct {
	Watch         WatchConfig   `yaml:"watch"`
	LLM           LLMConfig     `yaml:"llm"`
	History       HistoryConfig `yaml:"history"`
	Profiles      []Profile     `yaml:"profiles,omitempty"`
	ActiveProfile string        `yaml:"active_profile,omitempty"`
}

type WatchConfig struct {
	IntervalMS          int      `yaml:"interval_ms"`
	Selection           bool     `yaml:"selection"`
	SelectionIntervalMS int      `yaml:"selection_interval_ms"`
	SettleMS            int      `yaml:"settle_ms"`
	SkipEmpty           bool     `yaml:"skip_empty"`
	Ignore              []string `yaml:"ignore,omitempty"`
	IgnoreMode          string   `yaml:"ignore_mode,omitempty"`
	MinLength           int      `yaml:"min_length,omitempty"`
	MaxLength           int      `yaml:"max_length,omitempty"`
}

type LLMConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key,omitempty"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec,omitempty"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
	Keep    int    `yaml:"keep,omitempty"`
}

func (w WatchConfig) Interval() time.Duration {
	return time.Duration(w.IntervalMS) * time.Millisecond
}

func (w WatchConfig) SelectionInterval() time.Duration {
	return time.Duration(w.SelectionIntervalMS) * time.Millisecond
}

func (w WatchConfig) Settle() time.Duration {
	return time.Duration(w.SettleMS) * time.Millisecond
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSec) * time.Second
}

// Load loads the configuration, optionally with a specific profile
func Load(profileName ...string) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath, profileName...)
}

// LoadFile reads the config file as written, without environment
// overrides or profile values, so it can be edited and saved back.
func LoadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFileFromPath(configPath)
}

func loadFileFromPath(configPath string) (*Config, error) {
	cfg := &Config{}
	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the config file. CLIPWATCH_CONFIG
// overrides the default location.
func GetConfigPath() (string, error) {
	if p := os.Getenv("CLIPWATCH_CONFIG"); p != "" {
		return p, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "clipwatch", "config.yaml"), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return saveToPath(configPath, cfg)
}

func saveToPath(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	// may hold an API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

// GetProfile returns a profile by name
func (c *Config) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile '%s' not found", name)
}

// SetProfile sets the active profile
func (c *Config) SetProfile(name string) error {
	if name == "" {
		c.ActiveProfile = ""
		return nil
	}

	if _, err := c.GetProfile(name); err != nil {
		return err
	}

	c.ActiveProfile = name
	return nil
}

func (c *Config) AddProfile(profile Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if _, err := c.GetProfile(profile.Name); err == nil {
		return fmt.Errorf("profile '%s' already exists", profile.Name)
	}

	c.Profiles = append(c.Profiles, profile)
	return nil
}

func (c *Config) RemoveProfile(name string) error {
	if c.ActiveProfile == name {
		return fmt.Errorf("cannot remove active profile '%s'", name)
	}

	for i, p := range c.Profiles {
		if p.Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile '%s' not found", name)
}

func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

func (c *Config) IsProfileActive(name string) bool {
	return c.ActiveProfile == name
}

// ValidateLLM checks the settings needed for chat completion calls. It is
// separate from Validate so that watching works without an API key.
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return errors.ConfigError("llm api key not configured. Set llm.api_key, use --profile, or set CLIPWATCH_LLM_API_KEY (or DEEPSEEK_API_KEY)")
	}
	if c.LLM.Model == "" {
		return errors.ConfigError("llm model not configured. Set llm.model, use --profile, or set CLIPWATCH_LLM_MODEL (or DEEPSEEK_MODEL)")
	}
	return nil
}

func getEnv(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string) (bool, bool) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed, true
		}
	}
	return false, false
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file in the working
// directory. Variables already set in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

func loadFromPath(configPath string, profileName ...string) (*Config, error) {
	cfg := &Config{}

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	targetProfile := ""
	if len(profileName) > 0 && profileName[0] != "" {
		targetProfile = profileName[0]
	} else if cfg.ActiveProfile != "" {
		targetProfile = cfg.ActiveProfile
	}

	if targetProfile != "" {
		profile, err := cfg.GetProfile(targetProfile)
		if err != nil {
			return nil, errors.ConfigError(err.Error())
		}
		applyProfileConfig(cfg, profile)
		cfg.ActiveProfile = targetProfile
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyProfileConfig(cfg *Config, profile *Profile) {
	if profile.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = profile.LLM.BaseURL
	}
	if profile.LLM.APIKey != "" {
		cfg.LLM.APIKey = profile.LLM.APIKey
	}
	if profile.LLM.Model != "" {
		cfg.LLM.Model = profile.LLM.Model
	}
	if profile.LLM.TimeoutSec != 0 {
		cfg.LLM.TimeoutSec = profile.LLM.TimeoutSec
	}
}

// loadConfigFile reads and parses the config file from the given path
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		// File doesn't exist, that's okay - we'll use env vars
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyEnvironmentOverrides fills values the config file left empty.
func applyEnvironmentOverrides(cfg *Config) {
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = getEnv([]string{"CLIPWATCH_LLM_BASE_URL", "DEEPSEEK_BASE_URL"}, "")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = getEnv([]string{"CLIPWATCH_LLM_API_KEY", "DEEPSEEK_API_KEY"}, "")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = getEnv([]string{"CLIPWATCH_LLM_MODEL", "DEEPSEEK_MODEL"}, "")
	}
	if cfg.Watch.IntervalMS == 0 {
		cfg.Watch.IntervalMS = getEnvInt("CLIPWATCH_INTERVAL_MS", 0)
	}
	if !cfg.Watch.Selection {
		if v, ok := getEnvBool("CLIPWATCH_SELECTION"); ok {
			cfg.Watch.Selection = v
		}
	}
	if !cfg.History.Enabled {
		if v, ok := getEnvBool("CLIPWATCH_HISTORY"); ok {
			cfg.History.Enabled = v
		}
	}
	if cfg.History.Path == "" {
		cfg.History.Path = getEnv([]string{"CLIPWATCH_HISTORY_PATH"}, "")
	}

	if profileEnv := os.Getenv("CLIPWATCH_PROFILE"); profileEnv != "" {
		cfg.ActiveProfile = profileEnv
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Watch.IntervalMS == 0 {
		cfg.Watch.IntervalMS = DefaultIntervalMS
	}
	if cfg.Watch.SelectionIntervalMS == 0 {
		cfg.Watch.SelectionIntervalMS = DefaultSelectionIntervalMS
	}
	if cfg.Watch.SettleMS == 0 {
		cfg.Watch.SettleMS = DefaultSettleMS
	}
	if cfg.Watch.IgnoreMode == "" {
		cfg.Watch.IgnoreMode = "contains"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.TimeoutSec == 0 {
		cfg.LLM.TimeoutSec = DefaultLLMTimeoutSec
	}
	if cfg.History.Keep == 0 {
		cfg.History.Keep = DefaultHistoryKeep
	}
}

// validateConfig checks the settings every command depends on.
func validateConfig(cfg *Config) error {
	if cfg.Watch.IntervalMS < MinIntervalMS {
		return errors.ConfigError(fmt.Sprintf("watch.interval_ms must be at least %d, got %d", MinIntervalMS, cfg.Watch.IntervalMS))
	}
	if cfg.Watch.SelectionIntervalMS < MinIntervalMS {
		return errors.ConfigError(fmt.Sprintf("watch.selection_interval_ms must be at least %d, got %d", MinIntervalMS, cfg.Watch.SelectionIntervalMS))
	}
	if cfg.Watch.SettleMS < 0 {
		return errors.ConfigError("watch.settle_ms must not be negative")
	}
	if cfg.Watch.MaxLength > 0 && cfg.Watch.MinLength > cfg.Watch.MaxLength {
		return errors.ConfigError("watch.min_length must not exceed watch.max_length")
	}
	if cfg.History.Keep < 0 {
		return errors.ConfigError("history.keep must not be negative")
	}
	return nil
}
