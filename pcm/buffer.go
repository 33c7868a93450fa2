// Package pcm provides the raw byte-level PCM types the rest of the mixer
// is built on: Buffer (a length-tagged byte region), Sample (an immutable
// PCM asset), and Stream (a pull-based decoder interface). Decoders for
// compressed formats are out of scope; callers hand the core raw PCM bytes
// already in one of the two supported input layouts.
package pcm

// Buffer is a length-tagged byte region with copy/append/splice semantics,
// generalizing the teacher's float64-oriented dsp/buffer.Buffer to the raw
// byte layout PCM samples and streams are decoded into.
type Buffer struct {
	data []byte
}

// NewBuffer returns a zero-filled Buffer of the given length in bytes.
func NewBuffer(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{data: make([]byte, length)}
}

// FromBytes wraps an existing slice without copying. Mutations to the
// slice are visible through the Buffer and vice versa.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the underlying slice.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the current length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Copy returns a deep copy of the buffer.
func (b *Buffer) Copy() *Buffer {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return &Buffer{data: out}
}

// Append adds bytes to the end of the buffer, growing it as needed, and
// returns the buffer for chaining.
func (b *Buffer) Append(more []byte) *Buffer {
	b.data = append(b.data, more...)
	return b
}

// Splice replaces the bytes in [start,end) with replacement, shifting any
// trailing bytes as needed. Indices are clamped to valid bounds.
func (b *Buffer) Splice(start, end int, replacement []byte) {
	if start < 0 {
		start = 0
	}
	if end > len(b.data) {
		end = len(b.data)
	}
	if end < start {
		end = start
	}

	out := make([]byte, 0, start+len(replacement)+len(b.data)-end)
	out = append(out, b.data[:start]...)
	out = append(out, replacement...)
	out = append(out, b.data[end:]...)
	b.data = out
}
