// Package object implements the spatial emitter that anchors Sources, per
// spec §4.5 and grounded directly on original_source/object.cpp: named and
// indexed keyed collections of Sources with multimap-style play/fade_out/
// cancel/loop operations, and pose state the mixer reads every callback.
package object

import (
	"github.com/netivemedia/clunk-go/source"
	"github.com/netivemedia/clunk-go/vec3"
)

// Object is a spatial emitter: a pose (position, velocity, facing
// direction) plus the named and indexed Sources currently anchored to it.
// An Object exclusively owns its Sources; the mixer only borrows them for
// iteration during a callback.
//
// Object holds no lock of its own: per spec §5 every operation on it is
// meant to run under the single global audio lock, which package mixer's
// Context owns. Call these methods through Context's equivalents
// (Context.Play, Context.Cancel, Context.SetLoop, and so on) rather than
// directly, unless the caller already holds that lock (e.g. from inside
// the mixer's own callback).
type Object struct {
	Position, Velocity, Direction vec3.Vec3

	named   map[string][]*source.Source
	indexed map[int][]*source.Source

	dead bool
}

// New builds an Object at the origin, facing +Z, with no sources playing.
func New() *Object {
	return &Object{
		Direction: vec3.Vec3{X: 0, Y: 0, Z: 1},
		named:     make(map[string][]*source.Source),
		indexed:   make(map[int][]*source.Source),
	}
}

// Update sets position, velocity and facing direction together, as the API
// thread does once per game-logic tick.
func (o *Object) Update(pos, vel, dir vec3.Vec3) {
	o.Position = pos
	o.Velocity = vel
	o.Direction = dir
}

func (o *Object) SetPosition(pos vec3.Vec3)  { o.Position = pos }
func (o *Object) SetVelocity(vel vec3.Vec3)  { o.Velocity = vel }
func (o *Object) SetDirection(dir vec3.Vec3) { o.Direction = dir }

// Play anchors src under name. Multiple sources may share a name; they
// play concurrently, in the order they were inserted.
func (o *Object) Play(name string, src *source.Source) {
	o.named[name] = append(o.named[name], src)
}

// PlayIndexed is Play keyed by an integer slot instead of a name.
func (o *Object) PlayIndexed(index int, src *source.Source) {
	o.indexed[index] = append(o.indexed[index], src)
}

// Playing reports whether any (live or fading) source is anchored at name.
func (o *Object) Playing(name string) bool { return len(o.named[name]) > 0 }

// PlayingIndexed is Playing keyed by an integer slot.
func (o *Object) PlayingIndexed(index int) bool { return len(o.indexed[index]) > 0 }

// FadeOut schedules every source at name to fade to silence over fadeout
// seconds, regardless of loop state.
func (o *Object) FadeOut(name string, fadeout float64) {
	for _, s := range o.named[name] {
		s.BeginFadeOut(fadeout)
	}
}

// FadeOutIndexed is FadeOut keyed by an integer slot.
func (o *Object) FadeOutIndexed(index int, fadeout float64) {
	for _, s := range o.indexed[index] {
		s.BeginFadeOut(fadeout)
	}
}

// Cancel destroys every source at name immediately when fadeout is 0.
// With fadeout > 0, only looping sources are faded out; non-looping
// sources are left to finish on their own, per spec §9's open question
// on cancel's interaction with non-looping sources.
func (o *Object) Cancel(name string, fadeout float64) {
	if fadeout == 0 {
		for _, s := range o.named[name] {
			s.Kill()
		}
		delete(o.named, name)
		return
	}
	for _, s := range o.named[name] {
		if s.Loop() {
			s.BeginFadeOut(fadeout)
		}
	}
}

// CancelIndexed is Cancel keyed by an integer slot.
func (o *Object) CancelIndexed(index int, fadeout float64) {
	if fadeout == 0 {
		for _, s := range o.indexed[index] {
			s.Kill()
		}
		delete(o.indexed, index)
		return
	}
	for _, s := range o.indexed[index] {
		if s.Loop() {
			s.BeginFadeOut(fadeout)
		}
	}
}

// GetLoop reports whether any source at name is looping.
func (o *Object) GetLoop(name string) bool {
	for _, s := range o.named[name] {
		if s.Loop() {
			return true
		}
	}
	return false
}

// GetLoopIndexed is GetLoop keyed by an integer slot.
func (o *Object) GetLoopIndexed(index int) bool {
	for _, s := range o.indexed[index] {
		if s.Loop() {
			return true
		}
	}
	return false
}

// SetLoop sets loop only on the first source inserted at name and disables
// it on every other source sharing that name, an anti-stuck-sound measure
// carried over verbatim from the original (spec §9, open question a).
func (o *Object) SetLoop(name string, loop bool) {
	for i, s := range o.named[name] {
		s.SetLoop(i == 0 && loop)
	}
}

// SetLoopIndexed is SetLoop keyed by an integer slot.
func (o *Object) SetLoopIndexed(index int, loop bool) {
	for i, s := range o.indexed[index] {
		s.SetLoop(i == 0 && loop)
	}
}

// CancelAll stops every source on the object. With force, every source is
// destroyed immediately regardless of loop state; otherwise only looping
// sources are faded out over fadeout seconds, matching cancel's semantics.
func (o *Object) CancelAll(force bool, fadeout float64) {
	cancelGroup(o.indexed, force, fadeout)
	cancelGroup(o.named, force, fadeout)
}

func cancelGroup[K comparable](group map[K][]*source.Source, force bool, fadeout float64) {
	for key, sources := range group {
		if force {
			for _, s := range sources {
				s.Kill()
			}
			delete(group, key)
			continue
		}
		for _, s := range sources {
			if s.Loop() {
				s.BeginFadeOut(fadeout)
			}
		}
	}
}

// Active reports whether the object has any source anchored to it, playing
// or fading.
func (o *Object) Active() bool {
	return len(o.named) > 0 || len(o.indexed) > 0
}

// Autodelete force-cancels every source and marks the object dead, so
// Context can reap it on the next housekeeping pass instead of the host
// having to explicitly destroy it.
func (o *Object) Autodelete() {
	o.CancelAll(true, 0)
	o.dead = true
}

// Dead reports whether the object has been marked for deletion.
func (o *Object) Dead() bool { return o.dead }

// Close force-cancels every source and marks the object dead, mirroring
// the original destructor's cancel_all() plus detach-from-context.
func (o *Object) Close() error {
	if o.dead {
		return nil
	}
	o.CancelAll(true, 0)
	o.dead = true
	return nil
}

// Range calls fn once for every source currently anchored to the object,
// indexed sources first and then named ones, matching the original
// destructor's _cancel_all(indexed_sources) then _cancel_all(named_sources)
// order. The mixer uses this to spatialize each source into a block.
func (o *Object) Range(fn func(src *source.Source)) {
	for _, sources := range o.indexed {
		for _, s := range sources {
			fn(s)
		}
	}
	for _, sources := range o.named {
		for _, s := range sources {
			fn(s)
		}
	}
}

// Reap drops every source that has reached State Dead, and prunes any key
// whose source list has gone empty. Called by the mixer once per callback
// after processing, so Active/Playing reflect only sources still alive.
func (o *Object) Reap() {
	reapGroup(o.named)
	reapGroup(o.indexed)
}

func reapGroup[K comparable](group map[K][]*source.Source) {
	for key, sources := range group {
		live := sources[:0]
		for _, s := range sources {
			if !s.Dead() {
				live = append(live, s)
			}
		}
		if len(live) == 0 {
			delete(group, key)
		} else {
			group[key] = live
		}
	}
}
