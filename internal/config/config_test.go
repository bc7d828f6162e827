package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != "openai" {
		t.Errorf("default provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Providers == nil {
		t.Error("default providers map is nil")
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("default request timeout = %d, want 0", cfg.RequestTimeout)
	}
	if cfg.LogFile != "" {
		t.Errorf("default log file = %q, want empty", cfg.LogFile)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q, want %q", cfg.Provider, "openai")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `provider: deepseek
model: deepseek-reasoner
system_prompt: "Answer briefly."
db_path: /tmp/claii-test.db
request_timeout: 120
log_file: /tmp/claii.log
providers:
  deepseek:
    api_key: sk-test
    base_url: https://api.deepseek.com/v1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "deepseek" {
		t.Errorf("provider = %q, want %q", cfg.Provider, "deepseek")
	}
	if cfg.Model != "deepseek-reasoner" {
		t.Errorf("model = %q, want %q", cfg.Model, "deepseek-reasoner")
	}
	if cfg.SystemPrompt != "Answer briefly." {
		t.Errorf("system prompt = %q, want %q", cfg.SystemPrompt, "Answer briefly.")
	}
	if cfg.DBPath != "/tmp/claii-test.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.RequestTimeout != 120 {
		t.Errorf("request timeout = %d, want 120", cfg.RequestTimeout)
	}

	pc := cfg.GetProviderConfig("deepseek")
	if pc.APIKey != "sk-test" {
		t.Errorf("api key = %q, want %q", pc.APIKey, "sk-test")
	}
	if pc.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("base url = %q", pc.BaseURL)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("LLM_BASE_URL", "https://example.com/v1")
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("CLAII_DB", "/tmp/env.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pc := cfg.GetProviderConfig("openai")
	if pc.APIKey != "env-key" {
		t.Errorf("api key = %q, want %q", pc.APIKey, "env-key")
	}
	if pc.BaseURL != "https://example.com/v1" {
		t.Errorf("base url = %q, want %q", pc.BaseURL, "https://example.com/v1")
	}
	if cfg.Model != "env-model" {
		t.Errorf("model = %q, want %q", cfg.Model, "env-model")
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("db path = %q, want %q", cfg.DBPath, "/tmp/env.db")
	}
}

func TestEnvProviderSelection(t *testing.T) {
	t.Setenv("CLAII_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if got := cfg.GetProviderConfig("anthropic").APIKey; got != "sk-ant-test" {
		t.Errorf("api key = %q, want %q", got, "sk-ant-test")
	}
}

func TestVendorKeyOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `providers:
  openai:
    api_key: from-file
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.GetProviderConfig("openai").APIKey; got != "from-env" {
		t.Errorf("api key = %q, want %q", got, "from-env")
	}
}

func TestGetProviderConfigUnknown(t *testing.T) {
	cfg := DefaultConfig()
	pc := cfg.GetProviderConfig("nope")
	if pc == nil {
		t.Fatal("expected empty config, got nil")
	}
	if pc.APIKey != "" || pc.BaseURL != "" || pc.Model != "" {
		t.Errorf("expected zero-value provider config, got %+v", pc)
	}
}

func TestKnownProviderTables(t *testing.T) {
	// Every OpenAI-compatible provider needs both a base URL and a model.
	for name := range KnownProviderBaseURLs {
		if KnownProviderModels[name] == "" {
			t.Errorf("provider %q has a base URL but no default model", name)
		}
	}
	// Anthropic is native and must not appear in the base URL table.
	if _, ok := KnownProviderBaseURLs["anthropic"]; ok {
		t.Error("anthropic must not have an OpenAI-compatible base URL")
	}
	if KnownProviderModels["anthropic"] == "" {
		t.Error("anthropic has no default model")
	}
}
