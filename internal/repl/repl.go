// Package repl implements the interactive command loop. Colon commands are
// dispatched through a static table; a leading "!" runs a shell command;
// any other non-empty line is a chat turn for the current session.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/claii/claii/internal/chat"
	"github.com/claii/claii/internal/provider"
	"github.com/claii/claii/internal/session"
	"github.com/claii/claii/internal/store"
	"github.com/claii/claii/internal/ui"
)

// timeFormat renders stored timestamps in listings and transcripts.
const timeFormat = "2006-01-02 15:04:05"

// command is one REPL command: the token that invokes it, a usage line,
// one-line help, and the handler. Handlers report whether to quit.
type command struct {
	name  string
	usage string
	help  string
	run   func(arg string) bool
}

// REPL owns the current session selection and dispatches input lines.
type REPL struct {
	engine   *chat.Engine
	sessions *session.Manager
	history  *session.History
	io       ui.IO

	current  int64 // 0 = no session selected
	commands []*command
	byName   map[string]*command
}

func New(engine *chat.Engine, sessions *session.Manager, history *session.History, out ui.IO) *REPL {
	r := &REPL{
		engine:   engine,
		sessions: sessions,
		history:  history,
		io:       out,
	}
	r.commands = []*command{
		{name: ":ss", usage: ":ss", help: "list all chat sessions", run: r.listSessions},
		{name: ":cs", usage: ":cs <id>", help: "continue a saved session", run: r.continueSession},
		{name: ":sh", usage: ":sh", help: "show the history of the current session", run: r.showHistory},
		{name: ":sm", usage: ":sm <content>", help: "start a new session with a system message", run: r.newSystemSession},
		{name: ":help", usage: ":help [command]", help: "show available commands", run: r.help},
		{name: ":quit", usage: ":quit", help: "exit the REPL", run: r.quit},
	}
	r.byName = make(map[string]*command, len(r.commands)+1)
	for _, c := range r.commands {
		r.byName[c.name] = c
	}
	r.byName[":q"] = r.byName[":quit"]
	return r
}

// Run reads input lines until EOF or :quit. Every turn error is reported
// and the prompt returns; only input failures end the loop with an error.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := r.io.ReadInput()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "!"); ok {
			r.runShell(strings.TrimSpace(rest))
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		if cmd, ok := r.byName[name]; ok {
			if quit := cmd.run(strings.TrimSpace(arg)); quit {
				return nil
			}
			continue
		}

		// Anything else, unrecognized colon tokens included, is a prompt.
		r.chatTurn(ctx, line)
	}
}

// chatTurn runs one prompt through the engine. Ctrl-C cancels only this
// turn: the stream stops, the error is reported, and the prompt returns.
func (r *REPL) chatTurn(ctx context.Context, prompt string) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-turnCtx.Done():
		}
	}()

	sid, err := r.engine.Send(turnCtx, r.current, prompt)
	r.current = sid
	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.io.SystemMessage("Interrupted.")
			return
		}
		r.io.Error(err.Error())
	}
}

// ── command handlers ─────────────────────────────────────────────────────────

func (r *REPL) listSessions(string) bool {
	sessions, err := r.sessions.List()
	if err != nil {
		r.io.Error(err.Error())
		return false
	}
	if len(sessions) == 0 {
		r.io.SystemMessage("no sessions yet")
		return false
	}
	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		r.io.SystemMessage(fmt.Sprintf("%d: %s (%s)", s.ID, title, s.Updated.Local().Format(timeFormat)))
	}
	return false
}

func (r *REPL) continueSession(arg string) bool {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		r.io.Error("please specify a session id")
		return false
	}
	sess, err := r.sessions.Select(id)
	if err != nil {
		// The previous selection stays in place.
		if errors.Is(err, store.ErrSessionNotFound) {
			r.io.Error(fmt.Sprintf("unknown session id: %d", id))
		} else {
			r.io.Error(err.Error())
		}
		return false
	}
	r.current = sess.ID
	title := sess.Title
	if title == "" {
		title = "(untitled)"
	}
	r.io.SystemMessage(fmt.Sprintf("continuing session %d: %s", sess.ID, title))
	return false
}

func (r *REPL) showHistory(string) bool {
	if r.current == 0 {
		r.io.SystemMessage("no session selected")
		return false
	}
	msgs, err := r.history.Load(r.current)
	if err != nil {
		r.io.Error(err.Error())
		return false
	}
	for _, m := range msgs {
		ts := m.Timestamp.Local().Format(timeFormat)
		if m.Role == provider.RoleAssistant {
			r.io.SystemMessage(fmt.Sprintf("%s %s:", ts, m.Role))
			r.io.Markdown(m.Content)
		} else {
			r.io.SystemMessage(fmt.Sprintf("%s %s: %s", ts, m.Role, m.Content))
		}
	}
	return false
}

func (r *REPL) newSystemSession(arg string) bool {
	if arg == "" {
		r.io.Error("please provide the system message content")
		return false
	}
	id, err := r.sessions.NewBlank(arg)
	if err != nil {
		r.io.Error(err.Error())
		return false
	}
	r.current = id
	r.io.SystemMessage(fmt.Sprintf("new session %d with system message", id))
	return false
}

func (r *REPL) help(arg string) bool {
	if arg != "" {
		if cmd, ok := r.byName[arg]; ok {
			r.io.SystemMessage(fmt.Sprintf("%s  %s", cmd.usage, cmd.help))
		} else {
			r.io.SystemMessage(fmt.Sprintf("unknown command: %s", arg))
		}
		return false
	}
	r.io.SystemMessage("available commands:")
	for _, cmd := range r.commands {
		r.io.SystemMessage(fmt.Sprintf("  %-16s %s", cmd.usage, cmd.help))
	}
	r.io.SystemMessage("  !<command>       run a shell command")
	r.io.SystemMessage("anything else is sent to the model")
	return false
}

func (r *REPL) quit(string) bool {
	return true
}

// runShell executes a line after "!" through the shell, inheriting the
// terminal.
func (r *REPL) runShell(cmdline string) {
	if cmdline == "" {
		return
	}
	r.io.SystemMessage("running shell command: " + cmdline)
	cmd := exec.Command("sh", "-c", cmdline)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		r.io.Error(err.Error())
	}
}
