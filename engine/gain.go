// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/otodecks/audio"

// GainStage scales every sample read from its input by the current gain.
// The gain is read once per call; there is no ramp between values.
type GainStage struct {
	in   Stage
	gain *atomicFloat
}

// NewGainStage returns a unity gain stage over in.
func NewGainStage(in Stage) *GainStage {
	return &GainStage{in: in, gain: newAtomicFloat(1)}
}

func (g *GainStage) Channels() int { return g.in.Channels() }

func (g *GainStage) Gain() float64 { return g.gain.Load() }

// SetGain stores v without checking it. Callers clamp to [MinGain, MaxGain].
func (g *GainStage) SetGain(v float64) { g.gain.Store(v) }

func (g *GainStage) ReadFrames(dst []float32) int {
	n := g.in.ReadFrames(dst)
	audio.ApplyGain(dst[:n*g.Channels()], float32(g.gain.Load()))

	return n
}
