// SPDX-License-Identifier: EPL-2.0

package engine

// Stage is one link of a deck pipeline. ReadFrames writes up to
// len(dst)/Channels() interleaved frames into dst and returns how many it
// wrote. It never fails: a stage with nothing to give returns 0.
type Stage interface {
	Channels() int
	ReadFrames(dst []float32) int
}

// Feed is what a Resampler pulls from: a Stage at a native sample rate that
// reports transport state and jumps in the stream.
type Feed interface {
	Stage

	// SampleRate is the native rate of the frames ReadFrames produces.
	SampleRate() int
	// Active reports whether reading would produce frames.
	Active() bool
	// Stale reports, before a block starts, that frames buffered from
	// earlier reads no longer belong to the stream.
	Stale() bool
	// Discontinuity reports, and clears, a jump in the stream during the
	// last ReadFrames call.
	Discontinuity() bool
}
