package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompt shown before every input line.
const prompt = ">>> "

// TermIO implements IO on a plain terminal (fmt.Print / bufio.Scanner).
// Streamed deltas go straight to stdout; errors go to stderr.
type TermIO struct {
	scanner *bufio.Scanner
	md      *mdRenderer
	isTTY   bool
}

// NewTermIO creates a TermIO that reads from stdin and writes to stdout.
func NewTermIO() *TermIO {
	s := bufio.NewScanner(os.Stdin)
	s.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &TermIO{
		scanner: s,
		isTTY:   term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (t *TermIO) ReadInput() (string, error) {
	fmt.Print(prompt)
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.scanner.Text()), nil
}

func (t *TermIO) TextDelta(delta string) {
	fmt.Print(delta)
}

func (t *TermIO) TextDone() {
	fmt.Println()
}

// Markdown renders stored assistant text. On a real terminal it goes
// through glamour; when stdout is redirected the raw text is printed.
func (t *TermIO) Markdown(text string) {
	if t.isTTY {
		if t.md == nil {
			t.md = newMDRenderer()
		}
		if out, err := t.md.Render(text); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(text)
}

func (t *TermIO) SystemMessage(text string) {
	fmt.Println(text)
}

func (t *TermIO) Error(msg string) {
	fmt.Fprintf(os.Stderr, "error: %s\n", msg)
}
