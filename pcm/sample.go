package pcm

import "fmt"

// Sample is an immutable PCM asset: a raw byte Buffer plus the format it was
// declared in. It is owned by the host through the Context's sample
// registry and shared read-only across every Source that plays it.
type Sample struct {
	buffer     *Buffer
	format     Format
	frameCount int
}

// NewSample validates format and wraps data as an immutable Sample.
// data is not copied; callers must not mutate it afterward.
func NewSample(data []byte, format Format) (*Sample, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	bpf := format.BytesPerFrame()
	if bpf == 0 || len(data)%bpf != 0 {
		return nil, fmt.Errorf("%w: data length %d is not a multiple of frame size %d", ErrInvalidFormat, len(data), bpf)
	}
	return &Sample{
		buffer:     FromBytes(data),
		format:     format,
		frameCount: len(data) / bpf,
	}, nil
}

// Format returns the sample's declared PCM layout.
func (s *Sample) Format() Format { return s.format }

// FrameCount returns the total number of frames in the sample.
func (s *Sample) FrameCount() int { return s.frameCount }

// FrameMono returns frame i decoded and mixed down to mono, normalized to
// [-1, 1]. i must be in [0, FrameCount()).
func (s *Sample) FrameMono(i int) float64 {
	off := i * s.format.BytesPerFrame()
	data := s.buffer.Bytes()
	bytesPerCh := s.format.BitsPerSample / 8

	if s.format.Channels == 1 {
		return s.format.decodeSample(data, off)
	}

	left := s.format.decodeSample(data, off)
	right := s.format.decodeSample(data, off+bytesPerCh)
	return (left + right) / 2
}
