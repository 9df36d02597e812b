// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/otodecks/audio"
)

// ConstantClip returns a clip where every sample equals value.
func ConstantClip(sampleRate, channels, frames int, value float32) *audio.Clip {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = value
	}

	return mustClip(sampleRate, channels, samples)
}

// RampClip returns a clip whose frame i holds float32(i)*step in every
// channel. It makes read positions visible in the output.
func RampClip(sampleRate, channels, frames int, step float32) *audio.Clip {
	samples := make([]float32, frames*channels)
	for f := range frames {
		for c := range channels {
			samples[f*channels+c] = float32(f) * step
		}
	}

	return mustClip(sampleRate, channels, samples)
}

// SineClip returns a clip holding a sine tone at half amplitude.
func SineClip(sampleRate, channels, frames int, frequency float64) *audio.Clip {
	samples := make([]float32, frames*channels)
	for f := range frames {
		v := float32(0.5 * math.Sin(2*math.Pi*frequency*float64(f)/float64(sampleRate)))
		for c := range channels {
			samples[f*channels+c] = v
		}
	}

	return mustClip(sampleRate, channels, samples)
}

func mustClip(sampleRate, channels int, samples []float32) *audio.Clip {
	clip, err := audio.NewClip(sampleRate, channels, samples)
	if err != nil {
		panic(err)
	}

	return clip
}

// TrackedSource counts Close calls on the wrapped source.
type TrackedSource struct {
	audio.SeekableSource

	closed atomic.Int32
}

func (t *TrackedSource) Close() error {
	t.closed.Add(1)
	return t.SeekableSource.Close()
}

// Closed reports how many times Close was called.
func (t *TrackedSource) Closed() int { return int(t.closed.Load()) }

// Opener is an in-memory track library keyed by URI. Each Open hands out a
// fresh source from the registered factory.
type Opener struct {
	mu      sync.Mutex
	tracks  map[string]func() audio.SeekableSource
	handed  []*TrackedSource
	opening int
}

func NewOpener() *Opener {
	return &Opener{tracks: make(map[string]func() audio.SeekableSource)}
}

// Add registers a factory for uri.
func (o *Opener) Add(uri string, factory func() audio.SeekableSource) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.tracks[uri] = factory
}

// Open implements the engine's opener. Unknown URIs fail with
// audio.ErrUnsupportedFormat.
func (o *Opener) Open(uri string) (audio.SeekableSource, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opening++
	factory, ok := o.tracks[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %q", audio.ErrUnsupportedFormat, uri)
	}

	src := &TrackedSource{SeekableSource: factory()}
	o.handed = append(o.handed, src)

	return src, nil
}

// Opened returns every source handed out so far, oldest first.
func (o *Opener) Opened() []*TrackedSource {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]*TrackedSource(nil), o.handed...)
}

// Calls returns the number of Open calls, failed ones included.
func (o *Opener) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.opening
}
