package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/claii/claii/internal/config"
	"github.com/claii/claii/internal/provider"
)

var (
	cfgFile      string
	modelFlag    string
	providerFlag string
	dbFlag       string

	// Package-level version info, set by Execute().
	appVersion string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	appVersion = version

	rootCmd := &cobra.Command{
		Use:   "claii",
		Short: "Chat with LLMs from your terminal",
		Long:  "claii is an interactive chat client that streams model responses and keeps every conversation in a local session store.",
		// Running claii with no subcommand starts the interactive loop.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A .env in the working directory supplies API keys; absence is fine.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/claii/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "override model")
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "override provider")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "session database path (default ~/.local/share/claii/claii.db)")

	// Subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))
	rootCmd.AddCommand(newInitCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config values
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}

	return cfg
}

// providerBaseURLs references the canonical map in the config package.
var providerBaseURLs = config.KnownProviderBaseURLs

// buildProvider creates a Provider instance based on configuration.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	name := cfg.Provider
	pc := cfg.GetProviderConfig(name)

	apiKey := pc.APIKey
	if apiKey == "" {
		return nil, fmt.Errorf(
			"API key not configured for provider %q.\n"+
				"Set it via:\n"+
				"  - config file: providers.%s.api_key\n"+
				"  - environment: LLM_API_KEY\n"+
				"  - run: claii init",
			name, name,
		)
	}

	// Determine model: CLI flag > config file > provider defaults
	model := cfg.Model
	if pc.Model != "" && model == "" {
		model = pc.Model
	}
	if model == "" {
		if m, ok := config.KnownProviderModels[name]; ok {
			model = m
		}
	}

	switch name {
	case "anthropic":
		p := provider.NewAnthropicProvider(apiKey, model)
		return p, nil
	default:
		// All other providers use OpenAI-compatible API
		baseURL := pc.BaseURL
		if baseURL == "" {
			if u, ok := providerBaseURLs[name]; ok {
				baseURL = u
			} else {
				return nil, fmt.Errorf("unknown provider %q; set providers.%s.base_url in config", name, name)
			}
		}
		p := provider.NewOpenAIProvider(apiKey, baseURL, model)
		return p, nil
	}
}
