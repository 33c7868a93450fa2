package fft

import "github.com/netivemedia/clunk-go/internal/cpu"

// laneSupportAvailable reports whether the current CPU has wide-enough SIMD
// registers (AVX2 on amd64, NEON on arm64) to make the 4-lane butterfly
// variant worthwhile. There is no assembly behind this — see DESIGN.md for
// why the teacher's hand-written SSE2/AVX2 kernels were not ported — but the
// dispatch decision itself, and the numerical contract it must honor, mirror
// the teacher's CPU-feature-gated kernel selection.
func laneSupportAvailable() bool {
	f := cpu.DetectFeatures()
	return f.HasAVX2 || f.HasNEON
}

// danielsonLanczosLanes is the lane-grouped sibling of danielsonLanczosScalar.
// Spec's SIMD variant processes four contiguous complex lanes as a pair of
// 4-wide vectors and defers to a scalar 4-point butterfly once the
// lane-internal level is reached. Without real vector instructions the lane
// grouping buys nothing computationally, but it preserves the algorithm
// shape (and its "identical within 1 ulp" contract) that a real SIMD
// backend would implement: the first three passes (block length <= 8) run
// as ordinary scalar passes, and every later pass walks its blocks in
// groups of four, one block per lane.
func danielsonLanczosLanes(data []complex128, sign float64) {
	n := len(data)

	generalLimit := n
	for generalLimit > 8 {
		generalLimit >>= 1
	}

	danielsonLanczosScalarUpTo(data, sign, generalLimit)
	danielsonLanczosFinalLanes(data, sign, generalLimit)
}

// danielsonLanczosScalarUpTo runs the combine passes whose half-block
// length m is below stopAt (block lengths 2 through stopAt), leaving the
// remaining passes to the lane-grouped finisher.
func danielsonLanczosScalarUpTo(data []complex128, sign float64, stopAt int) {
	n := len(data)
	for m := 1; m < stopAt && m < n; m <<= 1 {
		combinePass(data, sign, m)
	}
}

// danielsonLanczosFinalLanes runs the remaining combine passes (half-block
// length >= start, i.e. block length >= 2*start), four blocks at a time.
func danielsonLanczosFinalLanes(data []complex128, sign float64, start int) {
	n := len(data)
	for m := start; m < n; m <<= 1 {
		step := m << 1
		blocks := n / step

		for b := 0; b+4 <= blocks; b += 4 {
			for lane := 0; lane < 4; lane++ {
				base := (b + lane) * step
				combineBlock(data, sign, base, m)
			}
		}
		for b := blocks - blocks%4; b < blocks; b++ {
			combineBlock(data, sign, b*step, m)
		}
	}
}

func combinePass(data []complex128, sign float64, m int) {
	n := len(data)
	step := m << 1
	for base := 0; base < n; base += step {
		combineBlock(data, sign, base, m)
	}
}

func combineBlock(data []complex128, sign float64, base, m int) {
	w, wp := twiddleSeed(sign, m<<1)
	for i := 0; i < m; i++ {
		j, k := base+i, base+i+m
		temp := data[k] * w
		data[k] = data[j] - temp
		data[j] = data[j] + temp
		w += w * wp
	}
}
