// Package mdct implements the Modified Discrete Cosine Transform. No other
// package in this module calls it; package source's HRTF convolution works
// on package fft directly.
//
// A [Transform] of length N computes N/2 frequency coefficients from N
// real time-domain samples ([Transform.Forward]) and the reverse
// ([Transform.Inverse]), both routed through an internal [fft.Plan] of
// length N/4 with pre- and post-rotation by exp(2*pi*i*(t+1/8)/N), following
// the same rotated-FFT formulation the clunk C++ engine this module is
// ported from uses (see mdct_context.h in the design ledger).
//
// Round-tripping 50%-overlapped blocks through Forward then Inverse and
// overlap-adding the results reconstructs the original signal, provided the
// window applied before Forward and after Inverse satisfies
// W[i]^2 + W[i+N/2]^2 == 1 (package window's TypeSine and TypeVorbis both
// do).
package mdct

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/netivemedia/clunk-go/fft"
)

// Errors returned by transform construction and use.
var (
	ErrInvalidSize  = errors.New("mdct: N must be a positive multiple of 4 with N/4 a power of two")
	ErrBufferLength = errors.New("mdct: buffer has the wrong length")
)

// Transform holds the precomputed FFT plan for one block length N.
// A Transform is not safe for concurrent use: Forward and Inverse both write
// its internal scratch buffers. It holds no window; callers window frames
// themselves (for example with package window's Apply).
type Transform struct {
	n, m, n4 int
	plan     *fft.Plan
	scratch  []complex128
	rotate   []float64
}

// New builds a Transform for block length n (time-domain samples per frame).
// n must be a multiple of 4, and n/4 a power of two (the inner FFT size).
func New(n int) (*Transform, error) {
	if n <= 0 || n%4 != 0 {
		return nil, ErrInvalidSize
	}

	n4 := n / 4
	plan, err := fft.NewPlan(n4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}

	return &Transform{
		n:       n,
		m:       n / 2,
		n4:      n4,
		plan:    plan,
		scratch: make([]complex128, n4),
		rotate:  make([]float64, n),
	}, nil
}

// N returns the time-domain block length.
func (t *Transform) N() int { return t.n }

// M returns the number of frequency coefficients (N/2).
func (t *Transform) M() int { return t.m }

func rotor(n4, n, t int) complex128 {
	return cmplx.Rect(1, 2*math.Pi*(float64(t)+0.125)/float64(n))
}

// Forward computes the N/2 MDCT coefficients of an N-sample time-domain
// block src, writing them to dst.
func (t *Transform) Forward(dst, src []float64) error {
	if len(src) != t.n {
		return fmt.Errorf("%w: src has %d samples, want %d", ErrBufferLength, len(src), t.n)
	}
	if len(dst) != t.m {
		return fmt.Errorf("%w: dst has %d samples, want %d", ErrBufferLength, len(dst), t.m)
	}

	n4, n, m := t.n4, t.n, t.m
	rotate := t.rotate

	for i := 0; i < n4; i++ {
		rotate[i] = -src[i+3*n4]
	}
	for i := n4; i < n; i++ {
		rotate[i] = src[i-n4]
	}

	for i := 0; i < n4; i++ {
		re := (rotate[i*2] - rotate[n-1-i*2]) / 2
		im := -(rotate[m+i*2] - rotate[m-1-i*2]) / 2
		a := rotor(n4, n, i)
		t.scratch[i] = complex(re*real(a)+im*imag(a), -re*imag(a)+im*real(a))
	}

	if err := t.plan.Forward(t.scratch, t.scratch); err != nil {
		return err
	}

	sqrtN := math.Sqrt(float64(n))
	for i := 0; i < n4; i++ {
		a := rotor(n4, n, i)
		f := t.scratch[i]
		t.scratch[i] = complex(
			2/sqrtN*(real(f)*real(a)+imag(f)*imag(a)),
			2/sqrtN*(-real(f)*imag(a)+imag(f)*real(a)),
		)
	}

	for i := 0; i < n4; i++ {
		dst[2*i] = real(t.scratch[i])
		dst[m-2*i-1] = -imag(t.scratch[i])
	}
	return nil
}

// Inverse reconstructs an N-sample time-domain block from M=N/2 MDCT
// coefficients src, writing it to dst.
func (t *Transform) Inverse(dst, src []float64) error {
	if len(src) != t.m {
		return fmt.Errorf("%w: src has %d coefficients, want %d", ErrBufferLength, len(src), t.m)
	}
	if len(dst) != t.n {
		return fmt.Errorf("%w: dst has %d samples, want %d", ErrBufferLength, len(dst), t.n)
	}

	n4, n, m := t.n4, t.n, t.m
	rotate := t.rotate

	for i := 0; i < n4; i++ {
		re := src[i*2] / 2
		im := src[m-1-i*2] / 2
		a := rotor(n4, n, i)
		t.scratch[i] = complex(re*real(a)+im*imag(a), -re*imag(a)+im*real(a))
	}

	if err := t.plan.Forward(t.scratch, t.scratch); err != nil {
		return err
	}

	sqrtN := math.Sqrt(float64(n))
	for i := 0; i < n4; i++ {
		a := rotor(n4, n, i)
		f := t.scratch[i]
		t.scratch[i] = complex(
			8/sqrtN*(real(f)*real(a)+imag(f)*imag(a)),
			8/sqrtN*(-real(f)*imag(a)+imag(f)*real(a)),
		)
	}

	for i := 0; i < n4; i++ {
		rotate[2*i] = real(t.scratch[i])
		rotate[m+2*i] = imag(t.scratch[i])
	}
	for i := 1; i < n; i += 2 {
		rotate[i] = -rotate[n-i-1]
	}

	i := 0
	for ; i < 3*n4; i++ {
		dst[i] = rotate[i+n4]
	}
	for ; i < n; i++ {
		dst[i] = -rotate[i-3*n4]
	}
	return nil
}
