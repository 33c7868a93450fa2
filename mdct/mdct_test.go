package mdct

import (
	"math"
	"testing"

	"github.com/netivemedia/clunk-go/dsp/window"
)

// TestPerfectReconstruction checks the time-domain aliasing cancellation
// property: windowing each 50%-overlapped frame with the sine window before
// Forward and after Inverse, then overlap-adding the synthesis frames,
// reconstructs the original signal in the steady state.
func TestPerfectReconstruction(t *testing.T) {
	const n = 64
	const m = n / 2
	const hop = m
	const numFrames = 8

	tr, err := New(n)
	if err != nil {
		t.Fatal(err)
	}

	total := hop*(numFrames-1) + n
	signal := make([]float64, total)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*float64(i)/37) + 0.5*math.Cos(2*math.Pi*float64(i)/11)
	}

	out := make([]float64, total)
	coeffs := make([]float64, m)
	frameOut := make([]float64, n)

	for f := 0; f < numFrames; f++ {
		start := f * hop

		frame := make([]float64, n)
		copy(frame, signal[start:start+n])
		window.Apply(window.TypeSine, frame)

		if err := tr.Forward(coeffs, frame); err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if err := tr.Inverse(frameOut, coeffs); err != nil {
			t.Fatalf("Inverse: %v", err)
		}

		synth := make([]float64, n)
		copy(synth, frameOut)
		window.Apply(window.TypeSine, synth)

		for i := 0; i < n; i++ {
			out[start+i] += synth[i]
		}
	}

	const eps = 1e-6
	for i := hop; i < total-hop; i++ {
		if d := math.Abs(out[i] - signal[i]); d > eps {
			t.Fatalf("reconstruction mismatch at %d: got %v want %v (diff %g)", i, out[i], signal[i], d)
		}
	}
}

func TestNewRejectsInvalidSize(t *testing.T) {
	cases := []int{0, -4, 3, 100}
	for _, n := range cases {
		if _, err := New(n); err == nil {
			t.Fatalf("New(%d): expected error", n)
		}
	}
}

func TestForwardInverseRejectWrongLengths(t *testing.T) {
	tr, err := New(64)
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.Forward(make([]float64, tr.M()), make([]float64, tr.N()-1)); err == nil {
		t.Fatal("Forward: expected error for short src")
	}
	if err := tr.Inverse(make([]float64, tr.N()), make([]float64, tr.M()-1)); err == nil {
		t.Fatal("Inverse: expected error for short src")
	}
}
