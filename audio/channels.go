// SPDX-License-Identifier: EPL-2.0

package audio

// MixChannels converts the interleaved frames in src (srcCh channels) into
// dst (dstCh channels) and returns the number of frames written. It never
// allocates.
//
// Equal layouts are copied. A mono source is duplicated into every output
// channel, a mono destination averages all source channels, and any other
// combination copies the channels both sides share and zeroes the rest.
func MixChannels(dst []float32, dstCh int, src []float32, srcCh int) int {
	frames := min(len(src)/srcCh, len(dst)/dstCh)
	if frames == 0 {
		return 0
	}

	switch {
	case srcCh == dstCh:
		copy(dst, src[:frames*srcCh])

	case srcCh == 1:
		for f := range frames {
			v := src[f]
			out := dst[f*dstCh : (f+1)*dstCh]
			for c := range out {
				out[c] = v
			}
		}

	case dstCh == 1 && srcCh == 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (src[idx] + src[idx+1]) * 0.5
		}

	case dstCh == 1:
		inv := float32(1.0) / float32(srcCh)
		for f := range frames {
			sum := float32(0)
			for _, v := range src[f*srcCh : (f+1)*srcCh] {
				sum += v
			}
			dst[f] = sum * inv
		}

	default:
		shared := min(srcCh, dstCh)
		for f := range frames {
			out := dst[f*dstCh : (f+1)*dstCh]
			copy(out, src[f*srcCh:f*srcCh+shared])
			clear(out[shared:])
		}
	}

	return frames
}
