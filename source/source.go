// Package source implements the per-emitter playback state machine: pulling
// resampled, pitch-shifted mono frames from a Sample or Stream, applying
// gain and fade envelopes, and spatializing the result into a stereo block
// via HRTF convolution (overlap-save, per spec §4.4).
//
// Unlike a fixed-kernel streaming overlap-save convolver, a Source's convolution kernel
// changes every block as the emitter's direction relative to the listener
// moves — so the overlap-save bookkeeping is done here directly against
// package fft, with the per-direction kernel spectrum cached by
// hrtf.DirectionKey rather than fixed at construction.
package source

import (
	"errors"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/netivemedia/clunk-go/fft"
	"github.com/netivemedia/clunk-go/hrtf"
	"github.com/netivemedia/clunk-go/pcm"
)

// ErrNoBacking is returned by constructors when neither a Sample nor a
// Stream is supplied.
var ErrNoBacking = errors.New("source: sample or stream required")

// State is a Source's position in the playback lifecycle of spec §4.4.
type State int

const (
	// Playing is the normal state: the cursor advances and the source
	// contributes audio every block.
	Playing State = iota
	// FadeOut is a scheduled decay to silence, either from an explicit
	// fade_out/cancel(τ>0) or from reaching the end of a non-looping
	// sample with a configured fade-out time.
	FadeOut
	// Dead sources contribute nothing and are reaped by their owning
	// Object on the next housekeeping pass.
	Dead
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case FadeOut:
		return "fade_out"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Option configures a Source at construction.
type Option func(*Source)

// WithLoop sets whether the source wraps to the start instead of dying at
// end-of-data.
func WithLoop(loop bool) Option {
	return func(s *Source) { s.loop = loop; s.puller.loop = loop }
}

// WithGain sets the source's static gain multiplier, applied on top of the
// per-callback distance-attenuation gain the mixer supplies.
func WithGain(gain float64) Option {
	return func(s *Source) { s.gain = gain }
}

// WithPitch sets the source's static pitch multiplier, applied on top of
// the per-callback Doppler factor the mixer supplies.
func WithPitch(pitch float64) Option {
	return func(s *Source) { s.pitch = pitch }
}

// WithFadeIn sets the duration, in seconds, of the linear fade-in applied
// from the moment the source starts playing.
func WithFadeIn(seconds float64) Option {
	return func(s *Source) { s.fadeInSec = seconds }
}

// WithFadeOut sets the duration, in seconds, used for the fade-out applied
// when a non-looping source reaches end-of-data. Fade-outs triggered
// explicitly via FadeOut use the duration passed to that call instead.
func WithFadeOut(seconds float64) Option {
	return func(s *Source) { s.fadeOutSec = seconds }
}

// Source is a single playing Sample or Stream, anchored to an Object, that
// spatializes itself against a listener direction supplied fresh every
// block by the mixer.
type Source struct {
	puller      puller
	cursorFrac  float64
	cursorLo    float64
	cursorHi    float64
	cursorValid bool

	loop      bool
	gain      float64
	pitch     float64
	fadeInSec float64

	fadeOutSec       float64
	fadeOutRemaining float64
	elapsed          float64

	state       State
	deadPending bool

	blockFrames int
	outputRate  float64

	hrtfLen  int
	fftSize  int
	plan     *fft.Plan
	overlap  [2][]float64 // per ear, length hrtfLen-1
	padded   []complex128 // scratch, length fftSize
	specHit  map[hrtf.DirectionKey]stereoSpectrum
	freqBuf  []complex128 // scratch product buffer, length fftSize
	timeBuf  []complex128 // scratch inverse-transform buffer, length fftSize
	monoBuf  []float64    // scratch pulled-and-enveloped mono block
	realBuf  []float64    // scratch real part of timeBuf's convolved tail, length blockFrames
}

type stereoSpectrum struct {
	left, right []complex128
}

// newSource builds the shared scaffolding for both constructors.
func newSource(p puller, table *hrtf.Table, blockFrames int, outputRate float64, opts []Option) (*Source, error) {
	l := table.IRLen()
	n := nextPow2(blockFrames + l - 1)
	plan, err := fft.NewPlan(n)
	if err != nil {
		return nil, err
	}

	s := &Source{
		puller:      p,
		gain:        1,
		pitch:       1,
		state:       Playing,
		blockFrames: blockFrames,
		outputRate:  outputRate,
		hrtfLen:     l,
		fftSize:     n,
		plan:        plan,
		specHit:     make(map[hrtf.DirectionKey]stereoSpectrum),
		padded:      make([]complex128, n),
		freqBuf:     make([]complex128, n),
		timeBuf:     make([]complex128, n),
		monoBuf:     make([]float64, blockFrames),
		realBuf:     make([]float64, blockFrames),
	}
	s.overlap[0] = make([]float64, l-1)
	s.overlap[1] = make([]float64, l-1)
	for _, opt := range opts {
		opt(s)
	}
	s.primeCursor()
	return s, nil
}

// NewFromSample builds a Source playing a shared, read-only Sample.
func NewFromSample(sample *pcm.Sample, table *hrtf.Table, blockFrames int, outputRate float64, opts ...Option) (*Source, error) {
	if sample == nil {
		return nil, ErrNoBacking
	}
	return newSource(puller{sample: sample}, table, blockFrames, outputRate, opts)
}

// NewFromStream builds a Source playing an exclusively-owned Stream.
func NewFromStream(stream pcm.Stream, table *hrtf.Table, blockFrames int, outputRate float64, opts ...Option) (*Source, error) {
	if stream == nil {
		return nil, ErrNoBacking
	}
	return newSource(puller{stream: stream, streamBuf: make([]byte, stream.Format().BytesPerFrame())}, table, blockFrames, outputRate, opts)
}

func (s *Source) primeCursor() {
	s.cursorLo, _ = s.puller.next()
	s.cursorHi, s.cursorValid = s.puller.next()
}

// State returns the source's current lifecycle state.
func (s *Source) State() State { return s.state }

// Dead reports whether the source is ready to be reaped.
func (s *Source) Dead() bool { return s.state == Dead }

// Loop reports whether the source wraps at end-of-data instead of dying.
func (s *Source) Loop() bool { return s.loop }

// SetLoop changes whether the source wraps at end-of-data.
func (s *Source) SetLoop(loop bool) {
	s.loop = loop
	s.puller.loop = loop
}

// Kill transitions the source directly to Dead, skipping any fade-out and
// the one-block convolution-tail flush. Used by cancel(key, 0).
func (s *Source) Kill() { s.state = Dead }

// BeginFadeOut schedules a linear fade to silence over seconds, after which
// the source becomes Dead. If the source is already fading out with less
// time remaining, the shorter fade wins.
func (s *Source) BeginFadeOut(seconds float64) {
	if s.state == Dead {
		return
	}
	if s.state == FadeOut && s.fadeOutRemaining <= seconds {
		return
	}
	s.state = FadeOut
	s.fadeOutRemaining = seconds
	if s.fadeOutSec <= 0 {
		s.fadeOutSec = seconds
	}
}

// fadeGain returns the envelope multiplier at the start of the current
// block, per spec §4.4's e(t) = fade_in(t) * fade_out(t).
func (s *Source) fadeGain() float64 {
	in := 1.0
	if s.fadeInSec > 0 {
		in = clamp01(s.elapsed / s.fadeInSec)
	}
	out := 1.0
	if s.state == FadeOut && s.fadeOutSec > 0 {
		out = clamp01(s.fadeOutRemaining / s.fadeOutSec)
	}
	return in * out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Process pulls one block of source audio, spatializes it toward
// (elevationDeg, azimuthDeg) via HRTF convolution, and adds the result into
// outLeft/outRight (each blockFrames long). extraGain and extraPitch are
// the mixer-computed distance-attenuation gain and Doppler factor for this
// callback; they multiply the source's own static gain and pitch.
func (s *Source) Process(outLeft, outRight []float64, table *hrtf.Table, elevationDeg, azimuthDeg, extraGain, extraPitch float64) error {
	if s.state == Dead {
		return nil
	}
	// A source that decided to die last block runs this one more (silent)
	// block so its overlap tail flushes into the output, then goes Dead.
	flushing := s.deadPending

	blockDuration := float64(s.blockFrames) / s.outputRate
	e0 := s.fadeGain()

	exhausted := s.fillMonoBlock(extraPitch)

	e1 := s.fadeGain()
	g := s.gain * extraGain
	n := len(s.monoBuf)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(max1(n-1))
		s.monoBuf[i] *= g * lerp(e0, e1, t)
	}

	key, resp := table.LookupKey(elevationDeg, azimuthDeg)
	spec, err := s.spectrumFor(key, resp)
	if err != nil {
		// Per spec §7, a degenerate/malformed direction inside the
		// callback substitutes silence and kills the source rather
		// than propagating a fault.
		s.state = Dead
		return nil
	}

	if err := s.convolveEar(spec.left, s.overlap[0], outLeft); err != nil {
		return err
	}
	if err := s.convolveEar(spec.right, s.overlap[1], outRight); err != nil {
		return err
	}

	s.elapsed += blockDuration
	if flushing {
		s.state = Dead
		return nil
	}
	s.advanceState(exhausted, blockDuration)
	return nil
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// advanceState applies the Playing -> FadeOut -> Dead transitions of
// spec §4.4. Reaching Dead is delayed by one block of silent input past
// the point the state machine decides to die, so the HRTF convolution's
// overlap tail gets one more block to flush through to the output.
func (s *Source) advanceState(exhausted bool, blockDuration float64) {
	switch s.state {
	case Playing:
		if exhausted {
			if s.fadeOutSec > 0 {
				s.state = FadeOut
				s.fadeOutRemaining = s.fadeOutSec
			} else {
				s.deadPending = true
			}
		}
	case FadeOut:
		s.fadeOutRemaining -= blockDuration
		if s.fadeOutRemaining <= 0 {
			s.deadPending = true
		}
	}
}

// fillMonoBlock pulls blockFrames output frames into s.monoBuf via linear
// interpolation between adjacent source frames, stepping the rational play
// cursor by pitch * sourceRate/outputRate per output frame. It reports
// whether the cursor ran out of non-looping data during this block.
func (s *Source) fillMonoBlock(extraPitch float64) bool {
	step := s.pitch * extraPitch * s.puller.sampleRate() / s.outputRate
	for i := range s.monoBuf {
		s.monoBuf[i] = lerp(s.cursorLo, s.cursorHi, s.cursorFrac)
		s.cursorFrac += step
		for s.cursorFrac >= 1 {
			s.cursorFrac -= 1
			s.cursorLo = s.cursorHi
			next, ok := s.puller.next()
			if !ok {
				s.cursorValid = false
				next = 0
			}
			s.cursorHi = next
		}
	}
	return !s.cursorValid
}

// spectrumFor returns the cached FFT of the HRTF impulse-response pair for
// key, computing and caching it on first use.
func (s *Source) spectrumFor(key hrtf.DirectionKey, resp hrtf.Response) (stereoSpectrum, error) {
	if spec, ok := s.specHit[key]; ok {
		return spec, nil
	}
	left, err := s.transformIR(resp.Left)
	if err != nil {
		return stereoSpectrum{}, err
	}
	right, err := s.transformIR(resp.Right)
	if err != nil {
		return stereoSpectrum{}, err
	}
	spec := stereoSpectrum{left: left, right: right}
	s.specHit[key] = spec
	return spec, nil
}

func (s *Source) transformIR(ir []float64) ([]complex128, error) {
	buf := make([]complex128, s.fftSize)
	for i, v := range ir {
		if i >= s.fftSize {
			break
		}
		buf[i] = complex(v, 0)
	}
	if err := s.plan.Forward(buf, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// convolveEar runs one block through overlap-save convolution against spec
// and adds the result into out. overlapTail is this ear's persistent
// (hrtfLen-1)-sample history, updated in place for the next call.
func (s *Source) convolveEar(spec []complex128, overlapTail []float64, out []float64) error {
	l := s.hrtfLen
	b := len(s.monoBuf)

	for i := range s.padded {
		s.padded[i] = 0
	}
	for i, v := range overlapTail {
		s.padded[i] = complex(v, 0)
	}
	for i, v := range s.monoBuf {
		s.padded[l-1+i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.freqBuf, s.padded); err != nil {
		return err
	}
	for i := range s.freqBuf {
		s.freqBuf[i] *= spec[i]
	}
	if err := s.plan.Inverse(s.timeBuf, s.freqBuf); err != nil {
		return err
	}

	for i := 0; i < b; i++ {
		s.realBuf[i] = real(s.timeBuf[l-1+i])
	}
	vecmath.AddBlockInPlace(out, s.realBuf[:b])

	// Refresh the overlap tail from the raw (pre-transform) input: the
	// last l-1 samples of the prepended-tail-plus-new-block signal.
	if b >= l-1 {
		for i, v := range s.padded[b : b+l-1] {
			overlapTail[i] = real(v)
		}
	} else {
		copy(overlapTail, overlapTail[b:])
		for i, v := range s.padded[l-1 : l-1+b] {
			overlapTail[len(overlapTail)-b+i] = real(v)
		}
	}
	return nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
