// SPDX-License-Identifier: EPL-2.0

// Package device is the boundary between the engine and a sound card.
//
// Output turns pulled blocks into the float32 little-endian byte stream
// that callback-driven backends such as oto read. It owns the global play
// gate: while the gate is closed the mixer is not pulled at all.
package device

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

const bytesPerSample = 4

// Source is what an Output pulls from. *engine.Mixer is one.
type Source interface {
	PrepareToPlay(blockFrames int, sampleRate float64) error
	PullBlock(dst []float32)
	ReleaseResources()
}

// Output is an io.Reader producing interleaved float32 LE frames.
type Output struct {
	src      Source
	channels int
	log      *slog.Logger

	// mu guards block, rate and buf. Read only ever TryLocks it.
	mu       sync.Mutex
	block    int
	rate     float64
	buf      []float32
	prepared bool

	playing atomic.Bool
	faulted atomic.Bool
}

// NewOutput returns a stopped, unprepared output pulling from src.
func NewOutput(src Source, channels int, log *slog.Logger) *Output {
	if log == nil {
		log = slog.Default()
	}

	return &Output{
		src:      src,
		channels: max(channels, 1),
		log:      log,
	}
}

func (o *Output) Channels() int     { return o.channels }
func (o *Output) Playing() bool     { return o.playing.Load() }
func (o *Output) Faulted() bool     { return o.faulted.Load() }
func (o *Output) SetPlaying(v bool) { o.playing.Store(v) }

// Prepare prepares the source for the device's block size and rate. On
// failure the output is faulted and produces silence until a Retry
// succeeds.
func (o *Output) Prepare(blockFrames int, sampleRate float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.block = blockFrames
	o.rate = sampleRate
	o.prepared = true

	return o.prepareLocked()
}

// Retry repeats the last Prepare.
func (o *Output) Retry() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.prepared {
		return ErrNotPrepared
	}

	return o.prepareLocked()
}

func (o *Output) prepareLocked() error {
	if err := o.src.PrepareToPlay(o.block, o.rate); err != nil {
		o.faulted.Store(true)
		o.log.Error("output prepare failed",
			slog.Int("block", o.block),
			slog.Float64("rate", o.rate),
			slog.Any("error", err))

		return fmt.Errorf("prepare output: %w", err)
	}

	o.buf = make([]float32, o.block*o.channels)
	o.faulted.Store(false)
	o.log.Info("output prepared",
		slog.Int("block", o.block),
		slog.Float64("rate", o.rate),
		slog.Int("channels", o.channels))

	return nil
}

// Release closes the gate and releases the source.
func (o *Output) Release() {
	o.playing.Store(false)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.src.ReleaseResources()
	o.buf = nil
}

// Read fills p with whole frames. It never blocks: while the gate is
// closed, the output is faulted or a Prepare is in progress, the frames are
// silent.
func (o *Output) Read(p []byte) (int, error) {
	frameBytes := bytesPerSample * o.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, ErrInvalidDstSize
	}
	p = p[:frames*frameBytes]

	if !o.playing.Load() || o.faulted.Load() || !o.mu.TryLock() {
		clear(p)
		return len(p), nil
	}
	defer o.mu.Unlock()

	if len(o.buf) == 0 {
		clear(p)
		return len(p), nil
	}

	for off := 0; off < len(p); {
		samples := min(len(o.buf), (len(p)-off)/bytesPerSample)
		block := o.buf[:samples]
		o.src.PullBlock(block)

		for _, v := range block {
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(v))
			off += bytesPerSample
		}
	}

	return len(p), nil
}
