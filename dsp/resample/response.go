package resample

import (
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// FrequencyResponse returns the magnitude spectrum of the resampler's
// prototype anti-aliasing filter, zero-padded to nfft bins; nfft must be a
// power of two, and any other value returns an error. This is a
// design-time diagnostic, not part of the streaming Process path: callers
// use it once, at construction, to confirm a resampler built for a
// particular use (for example re-sampling the HRTF table to the host output
// rate) has adequate stopband attenuation before committing to it.
func (r *Resampler) FrequencyResponse(nfft int) ([]float64, error) {
	if nfft <= 0 || nfft&(nfft-1) != 0 {
		return nil, fmt.Errorf("resample: frequency response: nfft must be a power of two, got %d", nfft)
	}
	plan, err := algofft.NewPlan64(nfft)
	if err != nil {
		return nil, fmt.Errorf("resample: frequency response: %w", err)
	}

	padded := make([]complex128, nfft)
	for i, v := range r.taps {
		if i >= nfft {
			break
		}
		padded[i] = complex(v, 0)
	}

	spectrum := make([]complex128, nfft)
	if err := plan.Forward(spectrum, padded); err != nil {
		return nil, fmt.Errorf("resample: frequency response: %w", err)
	}

	mag := make([]float64, nfft)
	for i, c := range spectrum {
		mag[i] = cmplx.Abs(c)
	}
	return mag, nil
}
