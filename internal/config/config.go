// Package config loads and manages claii configuration.
// Configuration source priority (highest to lowest):
// 1. Environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY, LLM_API_KEY, CLAII_*, etc.)
// 2. Config file path specified via --config flag
// 3. ~/.config/claii/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds configuration for a single provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Config is the complete configuration structure for claii.
type Config struct {
	// Provider is the active provider name (e.g. "openai", "anthropic", "deepseek").
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// Providers holds per-provider configuration.
	Providers map[string]*ProviderConfig `yaml:"providers"`

	// SystemPrompt replaces the default system prompt for new sessions.
	SystemPrompt string `yaml:"system_prompt"`

	// DBPath overrides the session database location
	// (default ~/.local/share/claii/claii.db).
	DBPath string `yaml:"db_path"`

	// RequestTimeout bounds a single streaming turn, in seconds.
	// 0 = no timeout (default).
	RequestTimeout int `yaml:"request_timeout"`

	// LogFile receives debug logs. Empty disables logging entirely;
	// stdout is reserved for the response stream.
	LogFile string `yaml:"log_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:  "openai",
		Providers: make(map[string]*ProviderConfig),
	}
}

// Load reads the config file and merges environment variable overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Determine config file path
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(home, ".config", "claii", "config.yaml")
		}
	}

	// Read config file (use defaults if not found)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Initialize providers map
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}

	return cfg, nil
}

// GetProviderConfig returns the config for the named provider, or an empty
// config if not found.
func (c *Config) GetProviderConfig(name string) *ProviderConfig {
	if pc, ok := c.Providers[name]; ok {
		return pc
	}
	return &ProviderConfig{}
}

// KnownProviderBaseURLs maps well-known OpenAI-compatible provider names to
// their base URLs. Anthropic is absent: it uses its native API, not a base URL.
var KnownProviderBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"gemini":   "https://generativelanguage.googleapis.com/v1beta/openai/",
	"kimi":     "https://api.moonshot.cn/v1",
	"qwen":     "https://dashscope.aliyuncs.com/compatible-mode/v1",
	"glm":      "https://open.bigmodel.cn/api/paas/v4",
	"doubao":   "https://ark.cn-beijing.volces.com/api/v3",
	"groq":     "https://api.groq.com/openai/v1",
	"minimax":  "https://api.minimax.chat/v1",
}

// KnownProviderModels maps well-known provider names to their default models.
var KnownProviderModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-sonnet-4-20250514",
	"deepseek":  "deepseek-chat",
	"gemini":    "gemini-2.0-flash",
	"kimi":      "moonshot-v1-8k",
	"qwen":      "qwen-plus",
	"glm":       "glm-4-air",
	"doubao":    "doubao-pro-32k",
	"groq":      "llama-3.3-70b-versatile",
	"minimax":   "abab6.5s-chat",
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Generic overrides apply to the provider active at parse time.
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		provider := cfg.Provider
		if cfg.Providers[provider] == nil {
			cfg.Providers[provider] = &ProviderConfig{}
		}
		cfg.Providers[provider].APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		provider := cfg.Provider
		if cfg.Providers[provider] == nil {
			cfg.Providers[provider] = &ProviderConfig{}
		}
		cfg.Providers[provider].BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}

	// Vendor-specific keys
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.Providers["openai"] == nil {
			cfg.Providers["openai"] = &ProviderConfig{}
		}
		cfg.Providers["openai"].APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		if cfg.Providers["anthropic"] == nil {
			cfg.Providers["anthropic"] = &ProviderConfig{}
		}
		cfg.Providers["anthropic"].APIKey = v
	}

	// Provider selection
	if v := os.Getenv("CLAII_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CLAII_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CLAII_DB"); v != "" {
		cfg.DBPath = v
	}
}
