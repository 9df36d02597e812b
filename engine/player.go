// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Option configures a Player.
type Option func(*Player)

// WithName sets the deck name used in logs and status.
func WithName(name string) Option {
	return func(p *Player) { p.name = name }
}

// WithChannels sets the output channel count. The default is stereo.
func WithChannels(channels int) Option {
	return func(p *Player) {
		if channels > 0 {
			p.channels = channels
		}
	}
}

// WithLogger sets the logger for control operations.
func WithLogger(log *slog.Logger) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// Status is a snapshot of a deck for display.
type Status struct {
	Name     string
	State    State
	URI      string
	Gain     float64
	Speed    float64
	Position float64 // relative, [0, 1]
	Length   float64 // seconds
	Ended    bool
}

// Player is one deck: Transport, Resampler and GainStage pulled as a unit.
//
// Control methods are safe from any goroutine. PullBlock belongs to the
// single audio goroutine and must not run concurrently with PrepareToPlay
// or ReleaseResources.
type Player struct {
	name     string
	channels int
	log      *slog.Logger

	transport *Transport
	resampler *Resampler
	gain      *GainStage

	mu       sync.Mutex
	block    int
	prepared atomic.Bool

	depth int // open blocks, audio goroutine only
}

// NewPlayer returns a stopped, empty deck that opens tracks through opener.
func NewPlayer(opener Opener, opts ...Option) *Player {
	p := &Player{
		name:     "deck",
		channels: 2,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(slog.String("deck", p.name))

	p.transport = NewTransport(opener, p.channels, p.log)
	p.resampler = NewResampler(p.transport)
	p.gain = NewGainStage(p.resampler)

	return p
}

func (p *Player) Name() string  { return p.name }
func (p *Player) Channels() int { return p.channels }

// LoadURL replaces the deck's track with uri. The deck is left stopped at
// position 0. On failure the previous track stays loaded and keeps its state.
func (p *Player) LoadURL(uri string) error {
	if err := p.transport.Load(uri); err != nil {
		p.log.Error("load failed", slog.String("uri", uri), slog.Any("error", err))
		return err
	}

	p.log.Info("track loaded",
		slog.String("uri", uri),
		slog.Float64("length", p.transport.Length()),
		slog.Int("rate", p.transport.loadedRate()))

	return nil
}

// SetGain sets the gain, clamped to [0, 1].
func (p *Player) SetGain(v float64) error {
	g, err := clamp("gain", v, MinGain, MaxGain)
	p.gain.SetGain(g)
	p.logClamp(err)

	return err
}

// SetSpeed sets the speed ratio, clamped to [0, 100]. A ratio of 0 pauses
// output without moving the position.
func (p *Player) SetSpeed(ratio float64) error {
	r, err := clamp("speed", ratio, MinSpeed, MaxSpeed)
	p.resampler.SetSpeed(r)
	p.logClamp(err)

	return err
}

// SetPosition seeks to seconds, clamped to the track length.
func (p *Player) SetPosition(seconds float64) error {
	err := p.transport.SetPosition(seconds)
	p.logClamp(err)

	return err
}

// SetPositionRelative seeks to fraction of the track, clamped to [0, 1].
func (p *Player) SetPositionRelative(fraction float64) error {
	err := p.transport.SetPositionRelative(fraction)
	p.logClamp(err)

	return err
}

func (p *Player) logClamp(err error) {
	if errors.Is(err, ErrNoSourceLoaded) {
		p.log.Warn("seek ignored", slog.Any("error", err))
		return
	}

	var pe *ParamError
	if errors.As(err, &pe) {
		p.log.Debug("parameter clamped",
			slog.String("param", pe.Param),
			slog.Float64("value", pe.Value),
			slog.Float64("clamped", pe.Clamped))
	}
}

// Start begins playback. With nothing loaded it logs and returns
// ErrNoSourceLoaded; the deck stays stopped.
func (p *Player) Start() error {
	if err := p.transport.Start(); err != nil {
		p.log.Warn("start ignored", slog.Any("error", err))
		return err
	}

	return nil
}

func (p *Player) Stop() { p.transport.Stop() }

func (p *Player) PositionRelative() float64 { return p.transport.PositionRelative() }

// Position returns the position in seconds.
func (p *Player) Position() float64 { return p.transport.Position() }

// Length returns the loaded track length in seconds.
func (p *Player) Length() float64 { return p.transport.Length() }

func (p *Player) Gain() float64  { return p.gain.Gain() }
func (p *Player) Speed() float64 { return p.resampler.Speed() }
func (p *Player) State() State   { return p.transport.State() }
func (p *Player) Ended() bool    { return p.transport.Ended() }
func (p *Player) Loaded() bool   { return p.transport.Loaded() }

func (p *Player) Status() Status {
	return Status{
		Name:     p.name,
		State:    p.transport.State(),
		URI:      p.transport.URI(),
		Gain:     p.gain.Gain(),
		Speed:    p.resampler.Speed(),
		Position: p.transport.PositionRelative(),
		Length:   p.transport.Length(),
		Ended:    p.transport.Ended(),
	}
}

// PrepareToPlay sets the output block size and sample rate and allocates
// the buffers PullBlock needs. Call it again to change the rate.
func (p *Player) PrepareToPlay(blockFrames int, sampleRate float64) error {
	if blockFrames <= 0 || !(sampleRate > 0) {
		return fmt.Errorf("%w: prepare %d frames at %v Hz", ErrInvalidParameter, blockFrames, sampleRate)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.resampler.Prepare(sampleRate)
	p.block = blockFrames
	p.prepared.Store(true)

	p.log.Debug("prepared", slog.Int("block", blockFrames), slog.Float64("rate", sampleRate))

	return nil
}

// PullBlock fills dst with interleaved output frames. Whatever the deck
// cannot produce is silence. It never allocates, locks or blocks.
func (p *Player) PullBlock(dst []float32) {
	if !p.prepared.Load() {
		clear(dst)
		return
	}

	p.beginBlock()

	step := p.block * p.channels
	for off := 0; off < len(dst); off += step {
		piece := dst[off:min(off+step, len(dst))]
		n := p.gain.ReadFrames(piece)
		clear(piece[n*p.channels:])
	}

	p.endBlock()
}

// beginBlock and endBlock mark one audio callback. They nest, so a Mixer
// that pulls a deck in several pieces keeps the deck on one track for the
// whole callback.
func (p *Player) beginBlock() {
	if p.depth == 0 {
		p.transport.beginBlock()
	}
	p.depth++
}

func (p *Player) endBlock() {
	p.depth--
	if p.depth == 0 {
		p.transport.endBlock()
	}
}

// ReleaseResources frees what PrepareToPlay allocated. The loaded track
// stays loaded.
func (p *Player) ReleaseResources() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prepared.Store(false)
	p.resampler.Release()
	p.block = 0
	p.transport.collect()
}

// Collect closes replaced tracks that playback can no longer reach.
func (p *Player) Collect() error { return p.transport.Collect() }

// Close stops the deck and unloads its track.
func (p *Player) Close() error {
	if err := p.transport.Close(); err != nil {
		return fmt.Errorf("close deck %s: %w", p.name, err)
	}

	return nil
}
