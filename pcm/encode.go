package pcm

import "fmt"

// EncodeInterleavedStereo16 clips left and right (equal length, normalized
// to [-1, 1]) to the signed 16-bit range and writes them as interleaved
// little-endian stereo PCM into dst, per spec §6's fixed output format.
// dst must be at least len(left)*4 bytes.
func EncodeInterleavedStereo16(dst []byte, left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("pcm: left/right length mismatch: %d != %d", len(left), len(right))
	}
	need := len(left) * 4
	if len(dst) < need {
		return fmt.Errorf("pcm: dst too small: need %d bytes, got %d", need, len(dst))
	}
	for i := range left {
		encodeSample16(dst, i*4, left[i])
		encodeSample16(dst, i*4+2, right[i])
	}
	return nil
}
