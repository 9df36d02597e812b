// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// ApplyGain scales every sample in buf by g in place.
func ApplyGain(buf []float32, g float32) {
	if g == 1 {
		return
	}
	for i := range buf {
		buf[i] *= g
	}
}

// Accumulate adds src into dst sample by sample. No limiting is applied, so
// sums may leave [-1, 1].
func Accumulate(dst, src []float32) {
	n := min(len(dst), len(src))
	dst = dst[:n]
	for i := range dst {
		dst[i] += src[i]
	}
}

// HardClip clamps every sample to [-1, 1].
func HardClip(buf []float32) {
	for i, v := range buf {
		if v > 1 {
			buf[i] = 1
		} else if v < -1 {
			buf[i] = -1
		}
	}
}

// SoftClip applies a tanh saturation curve. Signals well inside [-1, 1] are
// bent slightly as well.
func SoftClip(buf []float32) {
	for i, v := range buf {
		buf[i] = float32(math.Tanh(float64(v)))
	}
}
