// Package distance implements the attenuation and Doppler pure functions
// the mixer applies to each source on every callback.
package distance

import (
	approx "github.com/meko-christian/algo-approx"
)

// Model identifies one of the three supported attenuation curves.
type Model int

const (
	// Inverse is g = d_ref / (d_ref + alpha*(r-d_ref)), clamped at d_max.
	Inverse Model = iota
	// Linear is g = 1 - alpha*(r-d_ref)/(d_max-d_ref), clamped to [0,1].
	Linear
	// Exponential is g = (r/d_ref)^-alpha, clamped at d_max.
	Exponential
)

// Params configures an attenuation curve.
type Params struct {
	Model        Model
	RefDist      float64 // d_ref: distance below which gain is 1
	MaxDist      float64 // d_max: distance beyond which gain no longer decreases
	Rolloff      float64 // alpha
	SpeedOfSound float64 // c, used for the Doppler factor; 0 disables Doppler
}

// DefaultParams matches a typical room-scale scene: 1m reference, 100m cap,
// unit rolloff, speed of sound in air at sea level.
func DefaultParams() Params {
	return Params{
		Model:        Inverse,
		RefDist:      1,
		MaxDist:      100,
		Rolloff:      1,
		SpeedOfSound: 340,
	}
}

// Gain returns the attenuation factor for a source at radial distance r
// (r = |position|, always >= 0). Beyond MaxDist, Gain no longer decreases
// further: the curve is evaluated at min(r, MaxDist).
func (p Params) Gain(r float64) float64 {
	if r < 0 {
		r = 0
	}
	clamped := r
	if p.MaxDist > 0 && clamped > p.MaxDist {
		clamped = p.MaxDist
	}

	switch p.Model {
	case Linear:
		if p.MaxDist <= p.RefDist {
			return 1
		}
		g := 1 - p.Rolloff*(clamped-p.RefDist)/(p.MaxDist-p.RefDist)
		return clampUnit(g)
	case Exponential:
		if clamped <= 0 {
			return 1
		}
		ratio := clamped / p.RefDist
		// g = ratio^-alpha = exp(-alpha * ln(ratio))
		g := approx.FastExp(-p.Rolloff * approx.FastLog(ratio))
		return clampUnit(g)
	case Inverse:
		fallthrough
	default:
		denom := p.RefDist + p.Rolloff*(clamped-p.RefDist)
		if denom <= 0 {
			return 1
		}
		return clampUnit(p.RefDist / denom)
	}
}

func clampUnit(g float64) float64 {
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}

// Doppler returns the pitch-shift factor (c - v_listener) / (c - v_source),
// per spec §4.6. Both velocities are that party's own velocity dotted with
// the *same* fixed direction axis between source and listener — not each
// party's own notion of "toward the other", which would flip sign for one
// of the two. Callers conventionally use the source-to-listener axis, so
// that a source closing on a stationary listener raises pitch (the
// standard approaching-siren effect). A SpeedOfSound of 0 disables the
// effect (factor 1).
func (p Params) Doppler(listenerRadialVel, sourceRadialVel float64) float64 {
	if p.SpeedOfSound <= 0 {
		return 1
	}
	denom := p.SpeedOfSound - sourceRadialVel
	if denom == 0 {
		return 1
	}
	return (p.SpeedOfSound - listenerRadialVel) / denom
}
