// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"

	"github.com/ik5/otodecks/utils"
)

// Resampler converts its Feed from the native sample rate to the output
// rate and applies the deck speed: every output frame advances the input by
// speed * native / output frames. Intermediate samples are rebuilt with
// Catmull-Rom cubic interpolation over a four frame window. When the input
// advances by more than one frame per output frame, a one-pole low-pass
// tames aliasing.
//
// Prepare must run before the first ReadFrames. SetSpeed is safe from any
// goroutine; everything else belongs to the audio goroutine.
type Resampler struct {
	in       Feed
	channels int
	outRate  float64
	speed    *atomicFloat

	// window[1] and window[2] bracket the output position pos in [0, 1).
	window [4][]float32
	have   int
	pos    float64

	chunk    []float32
	chunkLen int // frames
	chunkOff int

	alpha    float32
	lp       []float32
	lpPrimed bool
}

// NewResampler returns a resampler over in at unit speed.
func NewResampler(in Feed) *Resampler {
	return &Resampler{
		in:       in,
		channels: in.Channels(),
		speed:    newAtomicFloat(1),
	}
}

func (r *Resampler) Channels() int { return r.channels }

// Speed returns the current speed ratio.
func (r *Resampler) Speed() float64 { return r.speed.Load() }

// SetSpeed stores the speed ratio. It is picked up at the next block.
func (r *Resampler) SetSpeed(ratio float64) { r.speed.Store(ratio) }

// Prepare sets the output rate and allocates the working buffers.
func (r *Resampler) Prepare(outRate float64) {
	ch := r.channels
	r.outRate = outRate

	frames := make([]float32, 4*ch)
	for i := range r.window {
		r.window[i] = frames[i*ch : (i+1)*ch]
	}
	r.chunk = make([]float32, ChunkFrames*ch)
	r.lp = make([]float32, ch)
	r.reset()
}

// Release drops the buffers allocated by Prepare.
func (r *Resampler) Release() {
	for i := range r.window {
		r.window[i] = nil
	}
	r.chunk = nil
	r.lp = nil
	r.reset()
}

func (r *Resampler) reset() {
	r.resetWindow()
	r.chunkLen, r.chunkOff = 0, 0
}

func (r *Resampler) resetWindow() {
	r.have = 0
	r.pos = 0
	r.lpPrimed = false
}

// ReadFrames fills dst with output-rate frames. It returns 0 while the feed
// is inactive, before Prepare, and when the ratio is not positive.
func (r *Resampler) ReadFrames(dst []float32) int {
	if r.chunk == nil || !r.in.Active() {
		return 0
	}

	if r.in.Stale() {
		r.reset()
	}

	ratio := r.speed.Load() * float64(r.in.SampleRate()) / r.outRate
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return 0
	}

	r.alpha = 1
	if ratio > 1 {
		r.alpha = float32(1 / ratio)
	}

	ch := r.channels
	frames := len(dst) / ch
	written := 0

	for written < frames {
		if r.have < 4 || r.pos >= 1 {
			if !r.pull(ratio, frames-written) {
				break
			}
			continue
		}

		utils.CubicInterpolateFrame(dst[written*ch:(written+1)*ch],
			r.window[0], r.window[1], r.window[2], r.window[3], float32(r.pos))
		written++
		r.pos += ratio
	}

	return written
}

// pull moves one input frame into the window, refilling the chunk when it is
// drained. It reports false when the feed has nothing more for this block.
func (r *Resampler) pull(ratio float64, remaining int) bool {
	ch := r.channels

	if r.chunkOff >= r.chunkLen {
		want := int(math.Ceil(float64(remaining)*ratio)) + 3
		want = min(max(want, 1), ChunkFrames)

		r.chunkLen = r.in.ReadFrames(r.chunk[:want*ch])
		r.chunkOff = 0
		if r.in.Discontinuity() {
			r.resetWindow()
		}
		if r.chunkLen == 0 {
			return false
		}
	}

	frame := r.chunk[r.chunkOff*ch : (r.chunkOff+1)*ch]
	r.chunkOff++
	r.filter(frame)

	switch r.have {
	case 4:
		w := r.window
		r.window = [4][]float32{w[1], w[2], w[3], w[0]}
		copy(r.window[3], frame)
		r.pos--
	case 0:
		copy(r.window[0], frame)
		copy(r.window[1], frame)
		r.have = 2
	default:
		copy(r.window[r.have], frame)
		r.have++
	}

	return true
}

// filter runs the one-pole low-pass y += alpha * (x - y) over frame in place.
func (r *Resampler) filter(frame []float32) {
	if r.alpha >= 1 {
		r.lpPrimed = false
		return
	}

	if !r.lpPrimed {
		copy(r.lp, frame)
		r.lpPrimed = true
		return
	}

	for c, x := range frame {
		y := r.lp[c] + r.alpha*(x-r.lp[c])
		r.lp[c] = y
		frame[c] = y
	}
}
