package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipwatch/pkg/errors"

	"gopkg.in/yaml.v3"
)

var envKeys = []string{
	"CLIPWATCH_CONFIG",
	"CLIPWATCH_LLM_BASE_URL", "DEEPSEEK_BASE_URL",
	"CLIPWATCH_LLM_API_KEY", "DEEPSEEK_API_KEY",
	"CLIPWATCH_LLM_MODEL", "DEEPSEEK_MODEL",
	"CLIPWATCH_INTERVAL_MS", "CLIPWATCH_SELECTION",
	"CLIPWATCH_HISTORY", "CLIPWATCH_HISTORY_PATH",
	"CLIPWATCH_PROFILE",
}

// clearEnv unsets every variable the loader reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clipwatch", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `watch:
  interval_ms: 250
  selection: true
  selection_interval_ms: 100
  skip_empty: true
  ignore: ["password", "token"]
  ignore_mode: regex
llm:
  base_url: https://llm.example.com/v1
  api_key: file-key
  model: file-model
history:
  enabled: true
  keep: 50
`)

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.Watch.IntervalMS != 250 || cfg.Watch.SelectionIntervalMS != 100 {
		t.Errorf("intervals = %d/%d, want 250/100", cfg.Watch.IntervalMS, cfg.Watch.SelectionIntervalMS)
	}
	if !cfg.Watch.Selection || !cfg.Watch.SkipEmpty {
		t.Errorf("Watch = %+v, want selection and skip_empty enabled", cfg.Watch)
	}
	if len(cfg.Watch.Ignore) != 2 || cfg.Watch.IgnoreMode != "regex" {
		t.Errorf("ignore = %v (%s)", cfg.Watch.Ignore, cfg.Watch.IgnoreMode)
	}
	if cfg.LLM.APIKey != "file-key" || cfg.LLM.Model != "file-model" || cfg.LLM.BaseURL != "https://llm.example.com/v1" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if !cfg.History.Enabled || cfg.History.Keep != 50 {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.Watch.SettleMS != DefaultSettleMS {
		t.Errorf("SettleMS = %d, want default %d", cfg.Watch.SettleMS, DefaultSettleMS)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.Watch.IntervalMS != DefaultIntervalMS {
		t.Errorf("IntervalMS = %d, want %d", cfg.Watch.IntervalMS, DefaultIntervalMS)
	}
	if cfg.Watch.SelectionIntervalMS != DefaultSelectionIntervalMS {
		t.Errorf("SelectionIntervalMS = %d, want %d", cfg.Watch.SelectionIntervalMS, DefaultSelectionIntervalMS)
	}
	if cfg.LLM.BaseURL != DefaultLLMBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.LLM.BaseURL, DefaultLLMBaseURL)
	}
	if err := cfg.ValidateLLM(); !errors.IsExitCode(err, errors.ExitCodeConfig) {
		t.Errorf("ValidateLLM() = %v, want config error", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		file      string
		wantKey   string
		wantModel string
	}{
		{
			name:      "deepseek variables",
			env:       map[string]string{"DEEPSEEK_API_KEY": "ds-key", "DEEPSEEK_MODEL": "deepseek-chat"},
			wantKey:   "ds-key",
			wantModel: "deepseek-chat",
		},
		{
			name: "clipwatch variables win over deepseek",
			env: map[string]string{
				"DEEPSEEK_API_KEY": "ds-key", "CLIPWATCH_LLM_API_KEY": "cw-key",
				"DEEPSEEK_MODEL": "ds-model", "CLIPWATCH_LLM_MODEL": "cw-model",
			},
			wantKey:   "cw-key",
			wantModel: "cw-model",
		},
		{
			name:      "file wins over environment",
			env:       map[string]string{"CLIPWATCH_LLM_API_KEY": "env-key"},
			file:      "llm:\n  api_key: file-key\n  model: m\n",
			wantKey:   "file-key",
			wantModel: "m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "none.yaml")
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			cfg, err := loadFromPath(path)
			if err != nil {
				t.Fatalf("loadFromPath() error = %v", err)
			}
			if cfg.LLM.APIKey != tt.wantKey || cfg.LLM.Model != tt.wantModel {
				t.Errorf("LLM = %+v, want key %q model %q", cfg.LLM, tt.wantKey, tt.wantModel)
			}
			if err := cfg.ValidateLLM(); err != nil {
				t.Errorf("ValidateLLM() error = %v", err)
			}
		})
	}
}

func TestLoad_Profiles(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `llm:
  api_key: base-key
  model: base-model
profiles:
  - name: local
    llm:
      base_url: http://localhost:11434/v1
      model: qwen
active_profile: local
`)

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}
	if cfg.LLM.BaseURL != "http://localhost:11434/v1" || cfg.LLM.Model != "qwen" {
		t.Errorf("LLM = %+v, want local profile applied", cfg.LLM)
	}
	if cfg.LLM.APIKey != "base-key" {
		t.Errorf("APIKey = %q, want base key kept", cfg.LLM.APIKey)
	}

	if _, err := loadFromPath(path, "missing"); !errors.IsExitCode(err, errors.ExitCodeConfig) {
		t.Errorf("loadFromPath(missing profile) error = %v, want config error", err)
	}

	t.Setenv("CLIPWATCH_PROFILE", "missing")
	if _, err := loadFromPath(path); err == nil {
		t.Error("CLIPWATCH_PROFILE pointing to an unknown profile should fail")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "interval too small", content: "watch:\n  interval_ms: 5\n", wantMsg: "watch.interval_ms"},
		{name: "selection interval negative", content: "watch:\n  selection_interval_ms: -1\n", wantMsg: "watch.selection_interval_ms"},
		{name: "length bounds", content: "watch:\n  min_length: 10\n  max_length: 5\n", wantMsg: "min_length"},
		{name: "invalid yaml", content: "watch: [", wantMsg: "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadFromPath(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("loadFromPath() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestProfileManagement(t *testing.T) {
	cfg := Default()

	if err := cfg.AddProfile(Profile{Name: "work", LLM: LLMConfig{Model: "m1"}}); err != nil {
		t.Fatalf("AddProfile() error = %v", err)
	}
	if err := cfg.AddProfile(Profile{Name: "work"}); err == nil {
		t.Error("AddProfile() duplicate should fail")
	}
	if err := cfg.AddProfile(Profile{}); err == nil {
		t.Error("AddProfile() without name should fail")
	}
	if err := cfg.SetProfile("work"); err != nil {
		t.Fatalf("SetProfile() error = %v", err)
	}
	if !cfg.IsProfileActive("work") {
		t.Error("work should be active")
	}
	if err := cfg.RemoveProfile("work"); err == nil {
		t.Error("RemoveProfile() of active profile should fail")
	}
	if err := cfg.SetProfile(""); err != nil {
		t.Fatalf("SetProfile(\"\") error = %v", err)
	}
	if err := cfg.RemoveProfile("work"); err != nil {
		t.Errorf("RemoveProfile() error = %v", err)
	}
	if len(cfg.ListProfiles()) != 0 {
		t.Errorf("ListProfiles() = %v, want empty", cfg.ListProfiles())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.LLM.APIKey = "secret"
	cfg.Watch.Ignore = []string{"otp"}

	if err := saveToPath(path, cfg); err != nil {
		t.Fatalf("saveToPath() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not YAML: %v", err)
	}

	loaded, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}
	if loaded.LLM.APIKey != "secret" || len(loaded.Watch.Ignore) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadFile_IgnoresEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "env-key")
	path := writeConfig(t, "llm:\n  model: m\n")

	cfg, err := loadFileFromPath(path)
	if err != nil {
		t.Fatalf("loadFileFromPath() error = %v", err)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("APIKey = %q, want empty so saving never persists env secrets", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "m" {
		t.Errorf("Model = %q, want m", cfg.LLM.Model)
	}
}

func TestGetConfigPath_Override(t *testing.T) {
	t.Setenv("CLIPWATCH_CONFIG", "/tmp/custom.yaml")
	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if got != "/tmp/custom.yaml" {
		t.Errorf("GetConfigPath() = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEEPSEEK_MODEL=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DEEPSEEK_MODEL"); got != "from-dotenv" {
		t.Errorf("DEEPSEEK_MODEL = %q, want from-dotenv", got)
	}
}
