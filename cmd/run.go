package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/claii/claii/internal/chat"
	"github.com/claii/claii/internal/session"
	"github.com/claii/claii/internal/store"
	"github.com/claii/claii/internal/ui"
)

func newRunCmd() *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send a single prompt non-interactively",
		Example: `  claii run -P "explain what a goroutine is"
  claii run --prompt "write a haiku about compilers"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return fmt.Errorf("--prompt / -P is required")
			}
			return runOnce(prompt)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "P", "", "the prompt to send")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

// runOnce sends a single prompt on a fresh session and exits. The turn is
// persisted like any interactive one, so :ss picks it up later.
func runOnce(prompt string) error {
	cfg := initConfig()

	log, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	p, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	if cfg.Model == "" {
		cfg.Model = p.DefaultModel()
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("session db path: %w", err)
		}
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer st.Close()

	sessions := session.NewManager(st, cfg.Model, p.Name())
	history := session.NewHistory(st)
	term := ui.NewTermIO()

	engine := chat.NewEngine(p, sessions, history, term, log, chat.Options{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Timeout:      time.Duration(cfg.RequestTimeout) * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	_, err = engine.Send(ctx, 0, prompt)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
