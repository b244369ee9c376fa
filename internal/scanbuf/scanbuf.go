// Package scanbuf implements the bounded read buffer behind the multipart
// scan loop. It owns all accounting against the declared content length and
// the body size ceiling, so the parser on top of it can never read past
// either limit.
package scanbuf

import (
	"errors"
	"io"
)

var (
	// ErrExhausted is returned by Fill once the declared content length has
	// been fully requested from the source.
	ErrExhausted = errors.New("declared content length exhausted")
	// ErrLimitExceeded is returned by Fill when the total bytes read would
	// exceed the configured body size limit.
	ErrLimitExceeded = errors.New("body size limit exceeded")
)

// Buffer is a forward-only sliding window over a byte stream. Bytes enter
// via Fill in reads of at most one chunk, and leave either via Advance
// (consumed by the parser) or FlushTo (handed off to a part sink while a
// retained tail stays behind for boundary matching).
type Buffer struct {
	r         io.Reader
	chunkSize int
	remaining int64
	limit     int64
	total     int64
	buf       []byte
	scratch   []byte
	peak      int
}

// New returns a Buffer reading from r in chunks of chunkSize, serving at
// most length bytes and failing once total reads pass limit.
func New(r io.Reader, chunkSize int, length, limit int64) *Buffer {
	return &Buffer{
		r:         r,
		chunkSize: chunkSize,
		remaining: length,
		limit:     limit,
	}
}

// Bytes returns the live window. The slice is invalidated by the next call
// to Fill, Advance or FlushTo.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// Exhausted reports whether the declared content length has been fully
// requested from the source.
func (b *Buffer) Exhausted() bool { return b.remaining <= 0 }

// TotalRead returns the number of bytes read from the source so far.
func (b *Buffer) TotalRead() int64 { return b.total }

// Peak returns the largest window size seen since creation.
func (b *Buffer) Peak() int { return b.peak }

// Fill performs a single read of up to min(chunkSize, remaining) bytes and
// appends the result to the window. It returns the number of bytes
// appended. io.EOF means the source dried up before the declared length was
// served; a read that returns no data at all is treated the same way.
func (b *Buffer) Fill() (int, error) {
	if b.remaining <= 0 {
		return 0, ErrExhausted
	}
	if b.scratch == nil {
		b.scratch = make([]byte, b.chunkSize)
	}

	n := int64(b.chunkSize)
	if n > b.remaining {
		n = b.remaining
	}

	m, err := b.r.Read(b.scratch[:n])
	if m > 0 {
		b.total += int64(m)
		if b.total > b.limit {
			return 0, ErrLimitExceeded
		}
		b.remaining -= int64(m)
		b.buf = append(b.buf, b.scratch[:m]...)
		if len(b.buf) > b.peak {
			b.peak = len(b.buf)
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return m, err
	}
	if m == 0 {
		return 0, io.EOF
	}
	return m, nil
}

// Advance drops n bytes from the front of the window.
func (b *Buffer) Advance(n int) {
	if n > len(b.buf) {
		n = len(b.buf)
	}
	b.buf = b.buf[n:]
}

// FlushTo writes every buffered byte except the trailing keep bytes to w
// and retains only that tail. The tail keeps a boundary that straddles two
// reads matchable on the next search. Returns the number of bytes written.
func (b *Buffer) FlushTo(w io.Writer, keep int) (int, error) {
	if len(b.buf) <= keep {
		return 0, nil
	}
	cut := len(b.buf) - keep
	if _, err := w.Write(b.buf[:cut]); err != nil {
		return 0, err
	}
	b.buf = append(b.buf[:0], b.buf[cut:]...)
	return cut, nil
}
