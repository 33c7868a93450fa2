package distance

import "testing"

func TestGainMonotonicBeyondRefDist(t *testing.T) {
	for _, model := range []Model{Inverse, Linear, Exponential} {
		p := DefaultParams()
		p.Model = model

		prev := p.Gain(p.RefDist)
		for r := p.RefDist + 1; r <= p.MaxDist+20; r += 1 {
			g := p.Gain(r)
			if g > prev+1e-12 {
				t.Fatalf("model %d: gain increased from %v to %v going from r-1 to r=%v", model, prev, g, r)
			}
			prev = g
		}
	}
}

func TestGainAtRefDistIsOne(t *testing.T) {
	for _, model := range []Model{Inverse, Linear, Exponential} {
		p := DefaultParams()
		p.Model = model
		if g := p.Gain(p.RefDist); g < 0.999 {
			t.Errorf("model %d: Gain(RefDist) = %v, want ~1", model, g)
		}
	}
}

func TestGainClampedToUnitRange(t *testing.T) {
	for _, model := range []Model{Inverse, Linear, Exponential} {
		p := DefaultParams()
		p.Model = model
		for _, r := range []float64{0, 0.5, 1, 5, 50, 100, 500, 1e6} {
			g := p.Gain(r)
			if g < 0 || g > 1 {
				t.Errorf("model %d: Gain(%v) = %v, out of [0,1]", model, r, g)
			}
		}
	}
}

func TestDopplerApproachingRaisesPitch(t *testing.T) {
	p := DefaultParams()
	// source closing on a stationary listener at 10 m/s.
	factor := p.Doppler(0, 10)
	if factor <= 1 {
		t.Fatalf("Doppler(approaching) = %v, want > 1", factor)
	}

	want := p.SpeedOfSound / (p.SpeedOfSound - 10)
	const eps = 1e-9
	if diff := factor - want; diff > eps || diff < -eps {
		t.Fatalf("Doppler factor = %v, want %v", factor, want)
	}
}

func TestDopplerDisabledWithZeroSpeedOfSound(t *testing.T) {
	p := DefaultParams()
	p.SpeedOfSound = 0
	if f := p.Doppler(5, -5); f != 1 {
		t.Fatalf("Doppler with SpeedOfSound=0 = %v, want 1", f)
	}
}
