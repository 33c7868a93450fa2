package pcm

import (
	"errors"

	"github.com/netivemedia/clunk-go/dsp/core"
)

// ErrInvalidFormat is returned when a Format declares an unsupported PCM
// layout: a bit width other than 8 or 16, or a channel count other than
// 1 or 2.
var ErrInvalidFormat = errors.New("pcm: invalid format")

// Format describes the byte layout of interleaved PCM data. Decoders hand
// the core 8-bit unsigned or 16-bit signed little-endian samples; output is
// always 16-bit signed interleaved stereo at the Context's configured rate.
type Format struct {
	SampleRate    int
	Channels      int // 1 (mono) or 2 (stereo)
	BitsPerSample int // 8 (unsigned) or 16 (signed, little-endian)
}

// Validate reports whether f describes a layout this module supports.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return ErrInvalidFormat
	}
	if f.Channels != 1 && f.Channels != 2 {
		return ErrInvalidFormat
	}
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return ErrInvalidFormat
	}
	return nil
}

// BytesPerFrame returns the number of bytes one interleaved frame occupies.
func (f Format) BytesPerFrame() int {
	return f.Channels * (f.BitsPerSample / 8)
}

// decodeSample reads one sample at byte offset off and returns it
// normalized to [-1, 1].
func (f Format) decodeSample(data []byte, off int) float64 {
	if f.BitsPerSample == 8 {
		return (float64(data[off]) - 128) / 128
	}
	v := int16(uint16(data[off]) | uint16(data[off+1])<<8)
	return float64(v) / 32768
}

// DecodeMonoFrame decodes one frame of raw data (at least BytesPerFrame()
// bytes) in f's layout and mixes it down to mono, normalized to [-1, 1].
// Unlike NewSample, it allocates nothing, so Stream-backed sources can call
// it from the audio callback's hot path per spec §5.
func (f Format) DecodeMonoFrame(data []byte) float64 {
	bytesPerCh := f.BitsPerSample / 8
	if f.Channels == 1 {
		return f.decodeSample(data, 0)
	}
	left := f.decodeSample(data, 0)
	right := f.decodeSample(data, bytesPerCh)
	return (left + right) / 2
}

// encodeSample16 writes a [-1, 1]-normalized sample as signed 16-bit
// little-endian into dst at off.
func encodeSample16(dst []byte, off int, v float64) {
	v = core.Clamp(v, -1, 1)
	s := int16(v * 32767)
	dst[off] = byte(uint16(s))
	dst[off+1] = byte(uint16(s) >> 8)
}
