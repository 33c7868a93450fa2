// Package fft implements the radix-2 Cooley-Tukey FFT used by the mixer's
// HRTF convolution path.
//
// A [Plan] is built once for a given power-of-two transform size and reused
// across calls: [Plan.Forward] and [Plan.Inverse] operate in place on a
// caller-supplied complex128 buffer, performing the bit-reversal scramble
// followed by log2(N) Danielson-Lanczos combine passes. Plans carry no
// per-call allocations, matching the real-time constraint that the audio
// callback never touches a general allocator (see package mixer).
//
// Construction picks between a scalar butterfly and a lane-grouped variant
// that walks the blocks of each later pass four at a time, selected once via
// [github.com/netivemedia/clunk-go/internal/cpu]. Both produce numerically
// identical results up to float64 rounding; [WithScalar] forces the scalar
// path regardless of detected features, which the test suite uses to check
// the two paths agree.
package fft

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by plan construction.
var (
	ErrNotPowerOfTwo = errors.New("fft: size must be a power of two")
	ErrSizeTooSmall  = errors.New("fft: size must be at least 1")
)

// Option configures a Plan at construction time.
type Option func(*Plan)

// WithScalar forces the scalar butterfly path even when the current CPU
// supports the lane-grouped variant. Intended for tests that need to compare
// the two paths against each other.
func WithScalar() Option {
	return func(p *Plan) { p.forceScalar = true }
}

// Plan holds the precomputed bit-reversal table for one transform size.
// A Plan is safe for concurrent use by multiple goroutines calling Forward
// or Inverse on independent buffers; it holds no per-call state of its own.
type Plan struct {
	n           int
	bits        int
	reversed    []int
	forceScalar bool
	useLanes    bool
}

// NewPlan constructs a Plan for transforms of length n, n = 2^b, b >= 0.
func NewPlan(n int, opts ...Option) (*Plan, error) {
	if n < 1 {
		return nil, ErrSizeTooSmall
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, n)
	}

	bits := 0
	for 1<<bits < n {
		bits++
	}

	p := &Plan{
		n:        n,
		bits:     bits,
		reversed: bitReversalTable(n, bits),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.useLanes = !p.forceScalar && n >= 8 && laneSupportAvailable()

	return p, nil
}

// Size returns the transform length N this plan was built for.
func (p *Plan) Size() int { return p.n }

// Forward computes X[k] = sum_n x[n] * exp(-2*pi*i*k*n/N), writing into dst.
// src and dst may alias the same slice. Both must have length Size().
func (p *Plan) Forward(dst, src []complex128) error {
	return p.transform(dst, src, -1, false)
}

// Inverse computes the forward transform with the opposite twiddle sign and
// scales by 1/N, so that Inverse(Forward(x)) == x up to float rounding.
func (p *Plan) Inverse(dst, src []complex128) error {
	return p.transform(dst, src, 1, true)
}

func (p *Plan) transform(dst, src []complex128, sign float64, scale bool) error {
	if len(src) != p.n || len(dst) != p.n {
		return fmt.Errorf("fft: buffer length must be %d, got src=%d dst=%d", p.n, len(src), len(dst))
	}

	if &dst[0] != &src[0] {
		copy(dst, src)
	}
	scramble(dst, p.reversed)

	if p.useLanes {
		danielsonLanczosLanes(dst, sign)
	} else {
		danielsonLanczosScalar(dst, sign)
	}

	if scale {
		inv := 1 / float64(p.n)
		for i := range dst {
			dst[i] *= complex(inv, 0)
		}
	}
	return nil
}

// bitReversalTable precomputes the permutation index for each slot.
func bitReversalTable(n, bits int) []int {
	table := make([]int, n)
	for i := range table {
		table[i] = reverseBits(i, bits)
	}
	return table
}

func reverseBits(i, bits int) int {
	r := 0
	for b := 0; b < bits; b++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}

func scramble(data []complex128, reversed []int) {
	for i, j := range reversed {
		if j > i {
			data[i], data[j] = data[j], data[i]
		}
	}
}

// danielsonLanczosScalar runs the standard radix-2 combine passes, advancing
// each pass's twiddle factor by the recurrence w += w*wp instead of calling
// sin/cos per butterfly. At block length m the twiddle only depends on the
// position within the block, not on which block, so w is computed once per
// i and reused across every block at that pass.
func danielsonLanczosScalar(data []complex128, sign float64) {
	n := len(data)
	for m := 1; m < n; m <<= 1 {
		step := m << 1
		w, wp := twiddleSeed(sign, step)

		for i := 0; i < m; i++ {
			for j := i; j < n; j += step {
				k := j + m
				temp := data[k] * w
				data[k] = data[j] - temp
				data[j] = data[j] + temp
			}
			w += w * wp
		}
	}
}

// twiddleSeed returns the initial twiddle w=1 and the recurrence step wp for
// a combine pass of block length step, per the Danielson-Lanczos recursion
// w <- w + w*wp with wp = (cos(alpha)-1, sin(alpha)), alpha = sign*2*pi/step.
func twiddleSeed(sign float64, step int) (w, wp complex128) {
	alpha := sign * 2 * math.Pi / float64(step)
	wtemp := math.Sin(0.5 * alpha)
	return complex(1.0, 0.0), complex(-2*wtemp*wtemp, math.Sin(alpha))
}
