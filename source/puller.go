package source

import "github.com/netivemedia/clunk-go/pcm"

// puller hands out raw mono frames one at a time, sequentially, regardless
// of whether the backing is a random-access Sample or a pull-based Stream.
// The rational play cursor in Source only ever asks for "the next frame",
// matching spec.md's data model note that resampling needs just a
// one-frame carry across blocks, not arbitrary lookback.
type puller struct {
	sample    *pcm.Sample
	stream    pcm.Stream
	streamBuf []byte

	pos       int // next Sample frame index; unused for stream backing
	loop      bool
	exhausted bool
}

// sampleRate returns the backing's declared rate, used to compute the
// resampling step pitch * sourceRate/outputRate.
func (p *puller) sampleRate() float64 {
	if p.sample != nil {
		return float64(p.sample.Format().SampleRate)
	}
	return float64(p.stream.Format().SampleRate)
}

// next returns the next mono frame, wrapping at end-of-data if loop is set.
// ok is false once a non-looping backing is exhausted; every call after
// that also returns ok=false, with a zero value standing in for silence.
func (p *puller) next() (float64, bool) {
	if p.exhausted {
		return 0, false
	}
	if p.sample != nil {
		return p.nextFromSample()
	}
	return p.nextFromStream()
}

func (p *puller) nextFromSample() (float64, bool) {
	if p.pos >= p.sample.FrameCount() {
		if !p.loop {
			p.exhausted = true
			return 0, false
		}
		p.pos = 0
	}
	v := p.sample.FrameMono(p.pos)
	p.pos++
	return v, true
}

func (p *puller) nextFromStream() (float64, bool) {
	n, ok := p.stream.Read(p.streamBuf, 1)
	if n == 0 {
		if !p.loop {
			p.exhausted = true
			return 0, false
		}
		if err := p.stream.Rewind(); err != nil {
			p.exhausted = true
			return 0, false
		}
		n, ok = p.stream.Read(p.streamBuf, 1)
		if n == 0 {
			p.exhausted = true
			return 0, false
		}
	}
	v := p.stream.Format().DecodeMonoFrame(p.streamBuf)
	if !ok && !p.loop {
		// This frame is still valid; the stream just has nothing left
		// after it, so the next call should report exhaustion.
		p.exhausted = true
	}
	return v, true
}
