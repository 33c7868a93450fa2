package pcm

import (
	"math"
	"testing"
)

func TestBufferAppendAndSplice(t *testing.T) {
	b := FromBytes([]byte{1, 2, 3})
	b.Append([]byte{4, 5})
	if got := b.Bytes(); string(got) != string([]byte{1, 2, 3, 4, 5}) {
		t.Fatalf("Append result = %v", got)
	}

	b.Splice(1, 3, []byte{9})
	if got := b.Bytes(); string(got) != string([]byte{1, 9, 4, 5}) {
		t.Fatalf("Splice result = %v", got)
	}
}

func TestBufferCopyIsIndependent(t *testing.T) {
	b := FromBytes([]byte{1, 2, 3})
	c := b.Copy()
	c.Bytes()[0] = 99
	if b.Bytes()[0] != 1 {
		t.Fatalf("Copy shares storage with the original")
	}
}

func TestFormatValidate(t *testing.T) {
	cases := []struct {
		f    Format
		want bool
	}{
		{Format{SampleRate: 44100, Channels: 1, BitsPerSample: 16}, true},
		{Format{SampleRate: 44100, Channels: 2, BitsPerSample: 8}, true},
		{Format{SampleRate: 0, Channels: 1, BitsPerSample: 16}, false},
		{Format{SampleRate: 44100, Channels: 3, BitsPerSample: 16}, false},
		{Format{SampleRate: 44100, Channels: 1, BitsPerSample: 24}, false},
	}
	for _, c := range cases {
		err := c.f.Validate()
		if (err == nil) != c.want {
			t.Errorf("Validate(%+v) error = %v, want ok=%v", c.f, err, c.want)
		}
	}
}

func TestNewSampleRejectsMisalignedData(t *testing.T) {
	fmt16Stereo := Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}
	if _, err := NewSample([]byte{1, 2, 3}, fmt16Stereo); err == nil {
		t.Fatal("expected error for data not a multiple of the frame size")
	}
}

func TestSampleFrameMonoDecodesSigned16(t *testing.T) {
	// Two mono frames: max positive, max negative (little-endian).
	data := []byte{0xff, 0x7f, 0x00, 0x80}
	format := Format{SampleRate: 44100, Channels: 1, BitsPerSample: 16}
	s, err := NewSample(data, format)
	if err != nil {
		t.Fatal(err)
	}
	if s.FrameCount() != 2 {
		t.Fatalf("FrameCount() = %d, want 2", s.FrameCount())
	}

	if got := s.FrameMono(0); math.Abs(got-32767.0/32768) > 1e-9 {
		t.Errorf("frame 0 = %v, want ~1", got)
	}
	if got := s.FrameMono(1); math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("frame 1 = %v, want -1", got)
	}
}

func TestSampleFrameMonoAveragesStereo(t *testing.T) {
	// One stereo frame: left = +1 (0x7fff), right = -1 (0x8000).
	data := []byte{0xff, 0x7f, 0x00, 0x80}
	format := Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}
	s, err := NewSample(data, format)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.FrameMono(0); math.Abs(got) > 1e-4 {
		t.Errorf("averaged frame = %v, want ~0", got)
	}
}

func TestSampleFrameMonoDecodesUnsigned8(t *testing.T) {
	data := []byte{0, 128, 255}
	format := Format{SampleRate: 8000, Channels: 1, BitsPerSample: 8}
	s, err := NewSample(data, format)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.FrameMono(0); math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("frame 0 = %v, want -1", got)
	}
	if got := s.FrameMono(1); math.Abs(got) > 1e-9 {
		t.Errorf("frame 1 = %v, want 0", got)
	}
}
