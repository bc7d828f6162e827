package session

import (
	"github.com/claii/claii/internal/provider"
	"github.com/claii/claii/internal/store"
)

// History reads and appends session transcripts. Messages come back in
// conversation order; there is no windowing or truncation, the full
// transcript is what a resumed turn sends to the model.
type History struct {
	store *store.Store
}

func NewHistory(st *store.Store) *History {
	return &History{store: st}
}

// Load returns the full transcript of a session.
func (h *History) Load(sessionID int64) ([]store.Message, error) {
	return h.store.ListMessages(sessionID)
}

// Append persists one message at the end of a session.
func (h *History) Append(sessionID int64, role provider.Role, content string) error {
	return h.store.InsertMessage(sessionID, role, content)
}

// AsProviderMessages strips stored messages down to the role and content
// pairs a ChatRequest carries.
func AsProviderMessages(msgs []store.Message) []provider.Message {
	out := make([]provider.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, provider.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
