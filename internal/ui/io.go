// Package ui defines the IO interface between the chat engine / REPL and
// the terminal, plus TermIO (interactive terminal) and BufferIO (silent
// capture for tests).
package ui

// IO is the contract between the chat loop and the terminal layer.
// Every method maps to a distinct visual event, so the engine never
// depends on any specific rendering implementation.
type IO interface {
	// ReadInput blocks until the user submits a line of input.
	// Returns ("", io.EOF) when the input stream ends.
	ReadInput() (string, error)

	// TextDelta appends an incremental text chunk from the LLM stream.
	// Chunks must appear immediately, unbuffered.
	TextDelta(delta string)

	// TextDone signals that the current streamed response is complete.
	TextDone()

	// Markdown renders a block of assistant text from a stored transcript.
	Markdown(text string)

	// SystemMessage displays a notice line (listings, command feedback).
	SystemMessage(text string)

	// Error displays an error message.
	Error(msg string)
}
