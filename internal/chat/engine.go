// Package chat runs one conversation turn end to end: resolve the session,
// build the model context, stream the response to the terminal, and commit
// the transcript.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claii/claii/internal/provider"
	"github.com/claii/claii/internal/session"
	"github.com/claii/claii/internal/ui"
)

// DefaultSystemPrompt seeds brand-new sessions. It travels with the request
// only; stored system content comes exclusively from :sm sessions.
const DefaultSystemPrompt = "You are a helpful assistant."

// Engine executes chat turns against a single provider.
type Engine struct {
	provider provider.Provider
	sessions *session.Manager
	history  *session.History
	io       ui.IO
	log      *zap.Logger

	model        string
	systemPrompt string
	timeout      time.Duration
}

// Options configures an Engine.
type Options struct {
	// Model sent with every request. Empty uses the provider default.
	Model string

	// SystemPrompt for new sessions. Empty uses DefaultSystemPrompt.
	SystemPrompt string

	// Timeout bounds a single turn's streaming call. 0 = no timeout.
	Timeout time.Duration
}

func NewEngine(p provider.Provider, sessions *session.Manager, history *session.History, out ui.IO, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	model := opts.Model
	if model == "" {
		model = p.DefaultModel()
	}
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Engine{
		provider:     p,
		sessions:     sessions,
		history:      history,
		io:           out,
		log:          log,
		model:        model,
		systemPrompt: systemPrompt,
		timeout:      opts.Timeout,
	}
}

// Send runs one chat turn for prompt against the session identified by
// currentID (0 starts a new session). It returns the id of the session the
// turn ran against; callers adopt it as their current session even when the
// turn fails mid-stream, since the session and the user message already
// exist by then. On a resolution failure the returned id is currentID
// unchanged.
//
// The user message is persisted before the remote call, so it survives any
// stream failure. The assistant message is persisted only after the stream
// completes; text already printed from a failed stream is not stored.
// Cancellation surfaces as an error wrapping ctx.Err().
func (e *Engine) Send(ctx context.Context, currentID int64, prompt string) (int64, error) {
	sid, created, err := e.sessions.StartOrResume(currentID, prompt)
	if err != nil {
		return currentID, err
	}

	log := e.log.With(
		zap.String("turn", uuid.NewString()),
		zap.Int64("session", sid),
	)
	log.Debug("turn started",
		zap.Bool("created", created),
		zap.Int("prompt_len", len(prompt)),
	)

	msgs, err := e.buildContext(sid, created)
	if err != nil {
		return sid, err
	}
	msgs = append(msgs, provider.Message{Role: provider.RoleUser, Content: prompt})

	if err := e.history.Append(sid, provider.RoleUser, prompt); err != nil {
		return sid, fmt.Errorf("persist prompt: %w", err)
	}

	streamCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		streamCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	events, err := e.provider.Chat(streamCtx, &provider.ChatRequest{
		Model:    e.model,
		Messages: msgs,
	})
	if err != nil {
		return sid, fmt.Errorf("chat request: %w", err)
	}

	var reply strings.Builder
	var streamErr error
	for event := range events {
		switch event.Type {
		case provider.EventTextDelta:
			e.io.TextDelta(event.TextDelta)
			reply.WriteString(event.TextDelta)

		case provider.EventDone:
			if event.Usage != nil {
				log.Debug("turn usage",
					zap.Int("input_tokens", event.Usage.InputTokens),
					zap.Int("output_tokens", event.Usage.OutputTokens),
				)
			}

		case provider.EventError:
			streamErr = event.Error
		}
	}

	if streamErr != nil {
		// Partial text may already be on screen; the transcript keeps
		// only complete responses.
		if reply.Len() > 0 {
			e.io.TextDone()
		}
		log.Warn("stream failed",
			zap.Int("partial_len", reply.Len()),
			zap.Error(streamErr),
		)
		return sid, fmt.Errorf("stream: %w", streamErr)
	}

	e.io.TextDone()

	full := reply.String()
	if full == "" {
		log.Debug("empty response, nothing persisted")
		return sid, nil
	}
	if err := e.history.Append(sid, provider.RoleAssistant, full); err != nil {
		return sid, fmt.Errorf("persist response: %w", err)
	}

	log.Debug("turn committed", zap.Int("response_len", len(full)))
	return sid, nil
}

// buildContext assembles the messages sent to the model. A freshly created
// session gets the ephemeral system prompt; a resumed session replays its
// full stored transcript, which already holds any :sm system message.
func (e *Engine) buildContext(sid int64, created bool) ([]provider.Message, error) {
	if created {
		return []provider.Message{{Role: provider.RoleSystem, Content: e.systemPrompt}}, nil
	}
	stored, err := e.history.Load(sid)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return session.AsProviderMessages(stored), nil
}
