package ui

import (
	"io"
	"strings"
	"sync"
)

// BufferIO is a silent IO implementation that captures output without
// rendering to any terminal. ReadInput replays scripted lines, then EOF.
type BufferIO struct {
	mu      sync.Mutex
	inputs  []string
	buf     strings.Builder
	notices []string
	errs    []string
}

var _ IO = (*BufferIO)(nil)

// NewBufferIO creates a BufferIO whose ReadInput returns the given lines
// in order, then io.EOF.
func NewBufferIO(inputs ...string) *BufferIO {
	return &BufferIO{inputs: inputs}
}

func (b *BufferIO) ReadInput() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.inputs) == 0 {
		return "", io.EOF
	}
	line := b.inputs[0]
	b.inputs = b.inputs[1:]
	return line, nil
}

func (b *BufferIO) TextDelta(delta string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(delta)
}

func (b *BufferIO) TextDone() {}

func (b *BufferIO) Markdown(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(text)
	b.buf.WriteString("\n")
}

func (b *BufferIO) SystemMessage(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, text)
}

func (b *BufferIO) Error(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, msg)
}

// Output returns all captured streamed and rendered text.
func (b *BufferIO) Output() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Notices returns all captured system messages.
func (b *BufferIO) Notices() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.notices...)
}

// Errors returns all captured error messages.
func (b *BufferIO) Errors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.errs...)
}
