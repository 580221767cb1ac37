// Package workspace is the accessor for the active editable view and its
// selection.
package workspace

import (
	"sync"
	"unicode/utf8"
)

// Editor is an editable view.
type Editor interface {
	// Selection returns the selected text, or "" when nothing is selected.
	Selection() string
}

// Workspace returns the active editor, if any.
type Workspace interface {
	ActiveEditor() (Editor, bool)
}

// None is a workspace without an active editor.
var None Workspace = Static{}

// Static is a workspace whose active editor never changes.
type Static struct {
	Editor Editor
}

// ActiveEditor implements Workspace.
func (s Static) ActiveEditor() (Editor, bool) {
	return s.Editor, s.Editor != nil
}

// Text is an editor whose whole content is selected.
type Text string

// Selection implements Editor.
func (t Text) Selection() string { return string(t) }

// Buffer is a text editor with a selection given in rune offsets.
type Buffer struct {
	mu         sync.Mutex
	text       []rune
	start, end int
}

// NewBuffer returns a buffer holding text with an empty selection.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: []rune(text)}
}

// Select sets the selection to runes [from, to). Offsets are clamped to the
// buffer and swapped when reversed.
func (b *Buffer) Select(from, to int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	from, to = b.clamp(from), b.clamp(to)
	if from > to {
		from, to = to, from
	}
	b.start, b.end = from, to
}

// SelectAll selects the whole buffer.
func (b *Buffer) SelectAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start, b.end = 0, len(b.text)
}

// Selection implements Editor.
func (b *Buffer) Selection() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.text[b.start:b.end])
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.text)
}

func (b *Buffer) clamp(i int) int {
	return min(max(i, 0), len(b.text))
}

// RuneCount is utf8.RuneCountInString, for callers converting byte
// positions to selection offsets.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}
