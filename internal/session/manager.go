// Package session decides which conversation a prompt belongs to and
// mediates all transcript access between the chat engine and the store.
package session

import (
	"github.com/claii/claii/internal/provider"
	"github.com/claii/claii/internal/store"
)

// maxTitleLen is the number of leading runes of the first prompt used as
// the session title.
const maxTitleLen = 50

// Manager creates and resolves sessions. New sessions are stamped with the
// model and provider the engine was started with.
type Manager struct {
	store    *store.Store
	model    string
	provider string
}

func NewManager(st *store.Store, model, providerName string) *Manager {
	return &Manager{store: st, model: model, provider: providerName}
}

// TitleFromPrompt derives a session title from the first user prompt.
func TitleFromPrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= maxTitleLen {
		return prompt
	}
	return string(runes[:maxTitleLen])
}

// StartOrResume resolves the session a prompt belongs to. A zero currentID
// creates a new session titled from the prompt and reports created=true.
// A non-zero id resumes that session; if its title is still empty (sessions
// seeded with only a system message), the prompt names it now. A non-empty
// title is never replaced.
func (m *Manager) StartOrResume(currentID int64, prompt string) (int64, bool, error) {
	if currentID == 0 {
		id, err := m.store.InsertSession(TitleFromPrompt(prompt), m.model, m.provider)
		if err != nil {
			return 0, false, err
		}
		return id, true, nil
	}

	sess, err := m.store.GetSession(currentID)
	if err != nil {
		return 0, false, err
	}
	if sess.Title == "" {
		if err := m.store.UpdateSessionTitle(currentID, TitleFromPrompt(prompt)); err != nil {
			return 0, false, err
		}
	}
	return currentID, false, nil
}

// Select validates that a session exists before the caller switches to it.
// On store.ErrSessionNotFound the caller keeps its previous selection.
func (m *Manager) Select(id int64) (store.Session, error) {
	return m.store.GetSession(id)
}

// List returns all sessions, least recently updated first.
func (m *Manager) List() ([]store.Session, error) {
	return m.store.ListSessions()
}

// NewBlank creates an untitled session seeded with a single system message.
// The next prompt sent to it becomes its title.
func (m *Manager) NewBlank(systemContent string) (int64, error) {
	id, err := m.store.InsertSession("", m.model, m.provider)
	if err != nil {
		return 0, err
	}
	if err := m.store.InsertMessage(id, provider.RoleSystem, systemContent); err != nil {
		return 0, err
	}
	return id, nil
}
