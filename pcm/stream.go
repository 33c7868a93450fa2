package pcm

// Stream is a pull-based decoder: unlike Sample, a Stream is mutable and
// exclusively owned by the Source that pulls from it. Decoders for
// compressed formats are out of scope; a Stream hands the core raw PCM
// bytes already in the layout its Format declares.
type Stream interface {
	// Format returns the PCM layout this stream decodes into. It must not
	// change over the stream's lifetime.
	Format() Format

	// Rewind seeks back to the first frame, for loop playback.
	Rewind() error

	// Read decodes up to framesHint frames into dst, which must be at
	// least framesHint*Format().BytesPerFrame() bytes. It returns the
	// number of frames actually decoded and whether the stream has more
	// data after this call; ok is false once the stream is exhausted,
	// even if framesRead is nonzero on that final call.
	Read(dst []byte, framesHint int) (framesRead int, ok bool)

	// Close releases any resources the stream holds.
	Close() error
}
