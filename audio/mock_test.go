// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// genSource streams frames computed by fn, like a decoder with no length
// hint. A positive chunk caps the frames returned per call.
type genSource struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	chunk      int
	fn         func(frame, channel int) float32
}

func newGenSource(sampleRate, channels, frames int, fn func(frame, channel int) float32) *genSource {
	return &genSource{sampleRate: sampleRate, channels: channels, frames: frames, fn: fn}
}

func newSilentSource(sampleRate, channels, frames int) *genSource {
	return newConstantSource(sampleRate, channels, frames, 0)
}

func newSineSource(sampleRate, channels, frames int, frequency float64) *genSource {
	return newGenSource(sampleRate, channels, frames, func(f, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * frequency * float64(f) / float64(sampleRate)))
	})
}

func newConstantSource(sampleRate, channels, frames int, value float32) *genSource {
	return newGenSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (g *genSource) SampleRate() int { return g.sampleRate }
func (g *genSource) Channels() int   { return g.channels }
func (g *genSource) Close() error    { return nil }

func (g *genSource) ReadSamples(dst []float32) (int, error) {
	if g.pos >= g.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/g.channels, g.frames-g.pos)
	if g.chunk > 0 {
		n = min(n, g.chunk)
	}

	for f := range n {
		for c := range g.channels {
			dst[f*g.channels+c] = g.fn(g.pos+f, c)
		}
	}
	g.pos += n

	return n * g.channels, nil
}

// hintedSource adds a frame count hint, which may be wrong on purpose.
type hintedSource struct {
	*genSource
	hint int64
}

func (h hintedSource) Len() int64 { return h.hint }
