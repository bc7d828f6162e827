package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/claii/claii/internal/chat"
	"github.com/claii/claii/internal/repl"
	"github.com/claii/claii/internal/session"
	"github.com/claii/claii/internal/store"
	"github.com/claii/claii/internal/ui"
)

// runREPL starts the interactive chat loop.
func runREPL() error {
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

	r := repl.New(engine, sessions, history, term)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGTERM ends the loop; SIGINT is left to the REPL, which cancels
	// only the in-flight turn.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	log.Debug("starting interactive session",
		zap.String("version", appVersion),
		zap.String("provider", p.Name()),
		zap.String("model", cfg.Model),
		zap.String("db", dbPath),
	)

	return r.Run(ctx)
}

// newLogger builds a file-backed debug logger. An empty path disables
// logging entirely; stdout must stay clean for the response stream.
func newLogger(path string) (*zap.Logger, func(), error) {
	if path == "" {
		return zap.NewNop(), func() {}, nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	log, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}
