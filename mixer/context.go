// Package mixer implements Context, the owner of the listener, the live
// object set, the distance model, master gain, and the audio lock — and
// process(buf, frames), the real-time callback that spatializes every
// source into one interleaved stereo PCM block, per spec §4.6.
package mixer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/netivemedia/clunk-go/distance"
	"github.com/netivemedia/clunk-go/dsp/core"
	"github.com/netivemedia/clunk-go/hrtf"
	"github.com/netivemedia/clunk-go/object"
	"github.com/netivemedia/clunk-go/pcm"
	"github.com/netivemedia/clunk-go/source"
	"github.com/netivemedia/clunk-go/vec3"
)

// ErrSampleNotFound is returned when a named sample lookup misses the
// registry, per spec §7's not_found error kind.
var ErrSampleNotFound = errors.New("mixer: sample not found")

// ErrWrongBlockSize is returned by Process when the caller's buffer does
// not match the frames-per-callback the Context was constructed with.
var ErrWrongBlockSize = errors.New("mixer: frames does not match configured block size")

// Option configures a Context at construction.
type Option func(*Context)

// WithDistanceModel overrides the default (inverse, 1m ref, 100m cap,
// speed of sound 340 m/s) distance and Doppler model.
func WithDistanceModel(p distance.Params) Option {
	return func(c *Context) { c.distance = p }
}

// WithMasterGain sets the initial master volume multiplier.
func WithMasterGain(gain float64) Option {
	return func(c *Context) { c.masterGain = gain }
}

// WithMasterGainDB sets the initial master volume as a decibel offset,
// converted to a linear multiplier (0 dB = unity gain).
func WithMasterGainDB(db float64) Option {
	return func(c *Context) { c.masterGain = core.DBToLinear(db) }
}

// WithHRTFTable supplies a pre-built table, e.g. one already resampled to
// a non-native rate. By default New builds one at NativeSampleRate and
// resamples it to outputRate if they differ.
func WithHRTFTable(table *hrtf.Table) Option {
	return func(c *Context) { c.table = table }
}

// Context owns the listener pose, the live object set, the audio lock, and
// the output format. It is the sole entry point the host audio callback
// and the game's API thread both serialize through.
type Context struct {
	mu sync.Mutex

	outputRate  float64
	blockFrames int

	listenerPos, listenerVel vec3.Vec3
	listenerBasis            vec3.Basis

	masterGain float64
	distance   distance.Params
	table      *hrtf.Table

	objects []*object.Object
	samples map[string]*pcm.Sample

	// Preallocated per-callback scratch, to keep Process allocation-free
	// on its hot path per spec §5.
	left, right []float64
}

// New builds a Context for the given output rate and frames-per-callback.
// The HRTF table is built at its native rate and resampled to outputRate
// if they differ, unless WithHRTFTable supplies one already.
func New(outputRate float64, blockFrames int, opts ...Option) (*Context, error) {
	if outputRate <= 0 {
		return nil, fmt.Errorf("mixer: outputRate must be positive, got %v", outputRate)
	}
	if blockFrames <= 0 {
		return nil, fmt.Errorf("mixer: blockFrames must be positive, got %d", blockFrames)
	}

	c := &Context{
		outputRate:    outputRate,
		blockFrames:   blockFrames,
		masterGain:    1,
		distance:      distance.DefaultParams(),
		listenerBasis: vec3.NewBasis(vec3.Vec3{X: 0, Y: 0, Z: 1}, vec3.Vec3{X: 0, Y: 1, Z: 0}),
		samples:       make(map[string]*pcm.Sample),
		left:          core.EnsureLen(nil, blockFrames),
		right:         core.EnsureLen(nil, blockFrames),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.table == nil {
		native := hrtf.New()
		if outputRate == hrtf.NativeSampleRate {
			c.table = native
		} else {
			resampled, err := native.Resample(outputRate)
			if err != nil {
				return nil, fmt.Errorf("mixer: resampling HRTF table: %w", err)
			}
			c.table = resampled
		}
	}
	return c, nil
}

// SetListener updates the listener's pose. forward need not be normalized;
// world-up is assumed to be +Y.
func (c *Context) SetListener(pos, vel, forward vec3.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listenerPos = pos
	c.listenerVel = vel
	c.listenerBasis = vec3.NewBasis(forward, vec3.Vec3{X: 0, Y: 1, Z: 0})
}

// SetVolume sets the master gain multiplier applied to every source.
func (c *Context) SetVolume(gain float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.masterGain = gain
}

// SetVolumeDB sets the master gain as a decibel offset from unity.
func (c *Context) SetVolumeDB(db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.masterGain = core.DBToLinear(db)
}

// VolumeDB reports the current master gain expressed in decibels.
func (c *Context) VolumeDB() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.LinearToDB(c.masterGain)
}

// SetDistanceModel replaces the attenuation/Doppler curve used for every
// subsequent callback.
func (c *Context) SetDistanceModel(p distance.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = p
}

// RegisterSample decodes data under format and stores it in the Context's
// sample registry under name, for later lookup by Play.
func (c *Context) RegisterSample(name string, data []byte, format pcm.Format) error {
	sample, err := pcm.NewSample(data, format)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples[name] = sample
	return nil
}

// CreateObject adds a new Object to the scene and returns it.
func (c *Context) CreateObject() *object.Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj := object.New()
	c.objects = append(c.objects, obj)
	return obj
}

// DeleteObject removes obj from the scene immediately, cancelling any
// sources it still owns.
func (c *Context) DeleteObject(obj *object.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.Close()
	c.removeObject(obj)
}

func (c *Context) removeObject(obj *object.Object) {
	for i, o := range c.objects {
		if o == obj {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return
		}
	}
}

// Play looks up a registered sample by name, builds a Source playing it,
// and anchors it to obj under the named key, per spec §4.6's
// play(sample|stream, params).
func (c *Context) Play(obj *object.Object, key, sampleName string, opts ...source.Option) (*source.Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sample, ok := c.samples[sampleName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotFound, sampleName)
	}
	src, err := source.NewFromSample(sample, c.table, c.blockFrames, c.outputRate, opts...)
	if err != nil {
		return nil, err
	}
	obj.Play(key, src)
	return src, nil
}

// PlayIndexed is Play keyed by an integer slot instead of a name.
func (c *Context) PlayIndexed(obj *object.Object, index int, sampleName string, opts ...source.Option) (*source.Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sample, ok := c.samples[sampleName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotFound, sampleName)
	}
	src, err := source.NewFromSample(sample, c.table, c.blockFrames, c.outputRate, opts...)
	if err != nil {
		return nil, err
	}
	obj.PlayIndexed(index, src)
	return src, nil
}

// PlayStream anchors a Source reading from an exclusively-owned Stream,
// for decoders the host wires in directly instead of a pre-decoded Sample.
func (c *Context) PlayStream(obj *object.Object, key string, stream pcm.Stream, opts ...source.Option) (*source.Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	src, err := source.NewFromStream(stream, c.table, c.blockFrames, c.outputRate, opts...)
	if err != nil {
		return nil, err
	}
	obj.Play(key, src)
	return src, nil
}

// FadeOut triggers a fade-out on every source anchored to obj under key,
// taking the audio lock per spec §5.
func (c *Context) FadeOut(obj *object.Object, key string, fadeout float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.FadeOut(key, fadeout)
}

// FadeOutIndexed is FadeOut keyed by an integer slot.
func (c *Context) FadeOutIndexed(obj *object.Object, index int, fadeout float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.FadeOutIndexed(index, fadeout)
}

// Cancel is Object.Cancel, taking the audio lock.
func (c *Context) Cancel(obj *object.Object, key string, fadeout float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.Cancel(key, fadeout)
}

// CancelIndexed is Cancel keyed by an integer slot.
func (c *Context) CancelIndexed(obj *object.Object, index int, fadeout float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.CancelIndexed(index, fadeout)
}

// SetLoop is Object.SetLoop, taking the audio lock.
func (c *Context) SetLoop(obj *object.Object, key string, loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.SetLoop(key, loop)
}

// SetLoopIndexed is SetLoop keyed by an integer slot.
func (c *Context) SetLoopIndexed(obj *object.Object, index int, loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.SetLoopIndexed(index, loop)
}

// GetLoop is Object.GetLoop, taking the audio lock.
func (c *Context) GetLoop(obj *object.Object, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return obj.GetLoop(key)
}

// GetLoopIndexed is GetLoop keyed by an integer slot.
func (c *Context) GetLoopIndexed(obj *object.Object, index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return obj.GetLoopIndexed(index)
}

// Playing is Object.Playing, taking the audio lock.
func (c *Context) Playing(obj *object.Object, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return obj.Playing(key)
}

// PlayingIndexed is Playing keyed by an integer slot.
func (c *Context) PlayingIndexed(obj *object.Object, index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return obj.PlayingIndexed(index)
}

// CancelAll is Object.CancelAll, taking the audio lock.
func (c *Context) CancelAll(obj *object.Object, force bool, fadeout float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.CancelAll(force, fadeout)
}

// Autodelete is Object.Autodelete, taking the audio lock.
func (c *Context) Autodelete(obj *object.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.Autodelete()
}

// SetObjectPose is Object.Update, taking the audio lock. The object's own
// setters remain available for callers already holding the lock (from
// within a wrapper method or the Process callback); direct, unlocked use
// from host code races with Process and should go through here instead.
func (c *Context) SetObjectPose(obj *object.Object, pos, vel, dir vec3.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj.Update(pos, vel, dir)
}

// Process mixes exactly one block of blockFrames stereo frames into buf,
// which must be at least blockFrames*4 bytes (16-bit signed stereo,
// interleaved). This is the real-time audio callback; it takes the audio
// lock for its entire duration per spec §5.
func (c *Context) Process(buf []byte, frames int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if frames != c.blockFrames {
		return fmt.Errorf("%w: got %d, want %d", ErrWrongBlockSize, frames, c.blockFrames)
	}

	core.Zero(c.left)
	core.Zero(c.right)

	for _, obj := range c.objects {
		c.processObject(obj)
	}

	c.reapObjects()

	return pcm.EncodeInterleavedStereo16(buf, c.left, c.right)
}

func (c *Context) processObject(obj *object.Object) {
	pos := obj.Position
	vel := obj.Velocity

	rel := vec3.Sub(pos, c.listenerPos)
	local := c.listenerBasis.ToLocal(rel)
	r := vec3.Length(local)

	gainD := c.distance.Gain(r)

	elevDeg, azDeg := 0.0, 0.0
	if r > 1e-9 {
		elevDeg = math.Asin(clampUnit(local.Y/r)) * 180 / math.Pi
		azDeg = math.Atan2(local.X, local.Z) * 180 / math.Pi
	}

	// package distance.Doppler wants both velocities dotted with the same
	// fixed axis, source-to-listener. rel points listener-to-source, so
	// that axis is -rel; kept in world space since local is in the
	// listener's rotated frame and can't be dotted against a world-space
	// velocity.
	pitchD := 1.0
	if r > 1e-9 {
		axis := vec3.Normalize(vec3.Scale(rel, -1))
		listenerVel := vec3.Dot(c.listenerVel, axis)
		sourceVel := vec3.Dot(vel, axis)
		pitchD = c.distance.Doppler(listenerVel, sourceVel)
	}

	gain := gainD * c.masterGain

	obj.Range(func(src *source.Source) {
		if err := src.Process(c.left, c.right, c.table, elevDeg, azDeg, gain, pitchD); err != nil {
			src.Kill()
		}
	})
}

func clampUnit(v float64) float64 {
	return core.Clamp(v, -1, 1)
}

func (c *Context) reapObjects() {
	live := c.objects[:0]
	for _, obj := range c.objects {
		obj.Reap()
		if obj.Dead() && !obj.Active() {
			continue
		}
		live = append(live, obj)
	}
	c.objects = live
}
