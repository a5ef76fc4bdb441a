// Package textbuf holds the text shown by the pager.
//
// Text is hard-wrapped into fixed-width lines as it is appended and grouped
// into pages of a fixed number of lines. When the buffer is full the oldest
// lines scroll out. All methods are safe for concurrent use: the serial
// console appends while the UI loop reads.
package textbuf

import "sync"

// Buffer is a wrapped, paginated text buffer.
type Buffer struct {
	mu         sync.Mutex
	lineLength int
	pageLines  int
	maxLines   int
	lines      [][]byte
	open       bool // last line still accepts characters
}

// New returns a buffer of lineLength-wide lines, pageLines per page, holding
// at most maxPages pages.
func New(lineLength, pageLines, maxPages int) *Buffer {
	if lineLength < 1 {
		lineLength = 1
	}
	if pageLines < 1 {
		pageLines = 1
	}
	if maxPages < 1 {
		maxPages = 1
	}
	return &Buffer{
		lineLength: lineLength,
		pageLines:  pageLines,
		maxLines:   pageLines * maxPages,
	}
}

// Append adds text. A newline ends the current line; lines longer than the
// line length wrap. Carriage returns are dropped, tabs become a space and
// other control characters become '?'.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < len(text); i++ {
		b.appendByte(text[i])
	}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range p {
		b.appendByte(c)
	}
	return len(p), nil
}

func (b *Buffer) appendByte(c byte) {
	switch {
	case c == '\n':
		if !b.open {
			b.newLine()
		}
		b.open = false
		return
	case c == '\r':
		return
	case c == '\t':
		c = ' '
	case c < 0x20 || c == 0x7F:
		c = '?'
	}

	if !b.open || len(b.lines[len(b.lines)-1]) >= b.lineLength {
		b.newLine()
		b.open = true
	}
	last := len(b.lines) - 1
	b.lines[last] = append(b.lines[last], c)
}

// newLine starts an empty line, dropping the oldest one when full.
func (b *Buffer) newLine() {
	if len(b.lines) >= b.maxLines {
		copy(b.lines, b.lines[1:])
		b.lines = b.lines[:len(b.lines)-1]
	}
	b.lines = append(b.lines, make([]byte, 0, b.lineLength))
}

// Clear drops all text.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.lines = b.lines[:0]
	b.open = false
	b.mu.Unlock()
}

// PageCount returns the number of pages. It is at least 1, even when empty.
func (b *Buffer) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageCount()
}

func (b *Buffer) pageCount() int {
	n := (len(b.lines) + b.pageLines - 1) / b.pageLines
	if n < 1 {
		return 1
	}
	return n
}

// Page returns a copy of the lines on page index. Out of range pages are
// empty.
func (b *Buffer) Page(index int) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := index * b.pageLines
	if index < 0 || start >= len(b.lines) {
		return nil
	}
	end := start + b.pageLines
	if end > len(b.lines) {
		end = len(b.lines)
	}
	page := make([][]byte, 0, end-start)
	for _, l := range b.lines[start:end] {
		page = append(page, append([]byte(nil), l...))
	}
	return page
}

// UsedPercent returns how much of the line capacity is in use, 0..100.
func (b *Buffer) UsedPercent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines) * 100 / b.maxLines
}

// Lines returns the number of lines held.
func (b *Buffer) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
