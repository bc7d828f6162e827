package ui

import "github.com/charmbracelet/glamour"

// mdRenderer wraps a glamour renderer; construction can fail (bad terminfo,
// no style), in which case rendering falls back to raw text.
type mdRenderer struct {
	r *glamour.TermRenderer
}

func newMDRenderer() *mdRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &mdRenderer{}
	}
	return &mdRenderer{r: r}
}

func (m *mdRenderer) Render(text string) (string, error) {
	if m.r == nil {
		return text + "\n", nil
	}
	return m.r.Render(text)
}
