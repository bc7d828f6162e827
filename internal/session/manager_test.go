package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claii/claii/internal/provider"
	"github.com/claii/claii/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewManager(st, "gpt-4o-mini", "openai"), st
}

func TestTitleFromPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"short", "Explain recursion briefly", "Explain recursion briefly"},
		{"exactly 50", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"truncated", strings.Repeat("a", 51), strings.Repeat("a", 50)},
		{"multibyte runes", strings.Repeat("é", 60), strings.Repeat("é", 50)},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromPrompt(tt.prompt); got != tt.want {
				t.Errorf("TitleFromPrompt(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestStartOrResumeCreates(t *testing.T) {
	m, st := newTestManager(t)

	id, created, err := m.StartOrResume(0, "Explain recursion briefly")
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if !created {
		t.Error("created = false, want true for a fresh session")
	}

	sess, err := st.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.Title != "Explain recursion briefly" {
		t.Errorf("Title = %q, want the prompt", sess.Title)
	}
	if sess.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want %q", sess.Model, "gpt-4o-mini")
	}
	if sess.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", sess.Provider, "openai")
	}
}

func TestStartOrResumeTruncatesTitle(t *testing.T) {
	m, st := newTestManager(t)

	long := strings.Repeat("x", 80)
	id, _, err := m.StartOrResume(0, long)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	sess, _ := st.GetSession(id)
	if len([]rune(sess.Title)) != 50 {
		t.Errorf("title rune length = %d, want 50", len([]rune(sess.Title)))
	}
}

func TestStartOrResumeKeepsExistingTitle(t *testing.T) {
	m, st := newTestManager(t)

	id, _, err := m.StartOrResume(0, "first prompt")
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}

	resumed, created, err := m.StartOrResume(id, "second prompt should not rename")
	if err != nil {
		t.Fatalf("StartOrResume resume: %v", err)
	}
	if created {
		t.Error("created = true, want false when resuming")
	}
	if resumed != id {
		t.Errorf("resumed id = %d, want %d", resumed, id)
	}

	sess, _ := st.GetSession(id)
	if sess.Title != "first prompt" {
		t.Errorf("Title = %q, want %q (titles are set once)", sess.Title, "first prompt")
	}
}

func TestStartOrResumeNamesBlankSession(t *testing.T) {
	m, st := newTestManager(t)

	id, err := m.NewBlank("You are a pirate.")
	if err != nil {
		t.Fatalf("NewBlank: %v", err)
	}

	_, created, err := m.StartOrResume(id, "ahoy")
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if created {
		t.Error("created = true, want false for an existing blank session")
	}

	sess, _ := st.GetSession(id)
	if sess.Title != "ahoy" {
		t.Errorf("Title = %q, want %q (first prompt names a blank session)", sess.Title, "ahoy")
	}
}

func TestStartOrResumeNotFound(t *testing.T) {
	m, _ := newTestManager(t)

	_, _, err := m.StartOrResume(9999, "hello")
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSelect(t *testing.T) {
	m, _ := newTestManager(t)

	id, _, _ := m.StartOrResume(0, "hello")

	sess, err := m.Select(id)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sess.ID != id {
		t.Errorf("Select returned id %d, want %d", sess.ID, id)
	}

	if _, err := m.Select(id + 100); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("Select unknown err = %v, want ErrSessionNotFound", err)
	}
}

func TestNewBlank(t *testing.T) {
	m, st := newTestManager(t)

	id, err := m.NewBlank("You are a terse reviewer.")
	if err != nil {
		t.Fatalf("NewBlank: %v", err)
	}

	sess, _ := st.GetSession(id)
	if sess.Title != "" {
		t.Errorf("Title = %q, want empty for a blank session", sess.Title)
	}

	msgs, err := st.ListMessages(id)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages len = %d, want 1", len(msgs))
	}
	if msgs[0].Role != provider.RoleSystem {
		t.Errorf("seed role = %q, want system", msgs[0].Role)
	}
	if msgs[0].Content != "You are a terse reviewer." {
		t.Errorf("seed content = %q", msgs[0].Content)
	}
}

func TestList(t *testing.T) {
	m, _ := newTestManager(t)

	a, _, _ := m.StartOrResume(0, "a")
	b, _, _ := m.StartOrResume(0, "b")

	sessions, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions len = %d, want 2", len(sessions))
	}
	if sessions[0].ID != a || sessions[1].ID != b {
		t.Errorf("order = [%d %d], want [%d %d]", sessions[0].ID, sessions[1].ID, a, b)
	}
}
