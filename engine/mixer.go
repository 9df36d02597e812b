// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ik5/otodecks/audio"
)

// Input is anything the Mixer can pull a block from. *Player is one.
type Input interface {
	Channels() int
	PrepareToPlay(blockFrames int, sampleRate float64) error
	PullBlock(dst []float32)
	ReleaseResources()
}

// blockScope is implemented by inputs that must see one callback as one
// block even when the Mixer pulls them in several pieces.
type blockScope interface {
	beginBlock()
	endBlock()
}

// ClipMode selects what the Mixer does to the summed block.
type ClipMode int

const (
	// ClipNone leaves sums beyond [-1, 1] untouched.
	ClipNone ClipMode = iota
	// ClipHard clamps to [-1, 1].
	ClipHard
	// ClipSoft saturates with tanh.
	ClipSoft
)

func (m ClipMode) String() string {
	switch m {
	case ClipNone:
		return "none"
	case ClipHard:
		return "hard"
	case ClipSoft:
		return "soft"
	default:
		return fmt.Sprintf("ClipMode(%d)", int(m))
	}
}

// ParseClipMode maps "none", "hard" or "soft" to a ClipMode.
func ParseClipMode(s string) (ClipMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return ClipNone, nil
	case "hard":
		return ClipHard, nil
	case "soft":
		return ClipSoft, nil
	default:
		return ClipNone, fmt.Errorf("%w: clip mode %q", ErrInvalidParameter, s)
	}
}

// MixerState is the lifecycle stage of a Mixer.
type MixerState int32

const (
	Unprepared MixerState = iota
	Prepared
	Released
)

func (s MixerState) String() string {
	switch s {
	case Unprepared:
		return "unprepared"
	case Prepared:
		return "prepared"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("MixerState(%d)", int32(s))
	}
}

// MixerOption configures a Mixer.
type MixerOption func(*Mixer)

// WithClipMode sets post-sum clipping. The default is ClipNone.
func WithClipMode(mode ClipMode) MixerOption {
	return func(m *Mixer) { m.clip = mode }
}

// WithMixerLogger sets the logger for control operations.
func WithMixerLogger(log *slog.Logger) MixerOption {
	return func(m *Mixer) {
		if log != nil {
			m.log = log
		}
	}
}

// Mixer sums the blocks of its inputs into one output block.
//
// Inputs are added and removed before streaming starts. Once PullBlock has
// run, AddInput and RemoveInput fail with ErrMixerStreaming until
// ReleaseResources.
type Mixer struct {
	channels int
	clip     ClipMode
	log      *slog.Logger

	mu     sync.Mutex
	inputs []Input
	block  int
	rate   float64

	scratch   []float32
	state     atomic.Int32
	streaming atomic.Bool
}

// NewMixer returns an unprepared mixer producing frames with the given
// channel count.
func NewMixer(channels int, opts ...MixerOption) *Mixer {
	m := &Mixer{
		channels: max(channels, 1),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Mixer) Channels() int      { return m.channels }
func (m *Mixer) ClipMode() ClipMode { return m.clip }
func (m *Mixer) State() MixerState  { return MixerState(m.state.Load()) }

// Inputs returns the registered inputs in pull order.
func (m *Mixer) Inputs() []Input {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.inputs)
}

// AddInput registers in. An input added to a prepared mixer is prepared
// straight away. Adding an input twice is a no-op. The input must produce
// the mixer's channel count.
func (m *Mixer) AddInput(in Input) error {
	if m.streaming.Load() {
		return ErrMixerStreaming
	}
	if ch := in.Channels(); ch != m.channels {
		return fmt.Errorf("%w: input has %d channels, mixer has %d", ErrInvalidParameter, ch, m.channels)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.inputs, in) {
		return nil
	}

	if m.State() == Prepared {
		if err := in.PrepareToPlay(m.block, m.rate); err != nil {
			return fmt.Errorf("prepare input: %w", err)
		}
	}

	m.inputs = append(m.inputs, in)

	return nil
}

// RemoveInput unregisters in. Removing an unknown input is a no-op.
func (m *Mixer) RemoveInput(in Input) error {
	if m.streaming.Load() {
		return ErrMixerStreaming
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = slices.DeleteFunc(m.inputs, func(x Input) bool { return x == in })

	return nil
}

// PrepareToPlay sizes the scratch buffer and prepares every input. The
// mixer only becomes Prepared when every input succeeded.
func (m *Mixer) PrepareToPlay(blockFrames int, sampleRate float64) error {
	if blockFrames <= 0 || !(sampleRate > 0) {
		return fmt.Errorf("%w: prepare %d frames at %v Hz", ErrInvalidParameter, blockFrames, sampleRate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Store(int32(Unprepared))

	var errs []error
	for i, in := range m.inputs {
		if err := in.PrepareToPlay(blockFrames, sampleRate); err != nil {
			errs = append(errs, fmt.Errorf("input %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	m.block = blockFrames
	m.rate = sampleRate
	m.scratch = make([]float32, blockFrames*m.channels)
	m.state.Store(int32(Prepared))

	m.log.Debug("mixer prepared",
		slog.Int("inputs", len(m.inputs)),
		slog.Int("block", blockFrames),
		slog.Float64("rate", sampleRate),
		slog.String("clipping", m.clip.String()))

	return nil
}

// PullBlock zeroes dst and adds every input's block into it. Unless a clip
// mode is set, sums beyond [-1, 1] are left as they are. An unprepared
// mixer produces silence.
func (m *Mixer) PullBlock(dst []float32) {
	clear(dst)

	if m.State() != Prepared {
		return
	}
	m.streaming.Store(true)

	for _, in := range m.inputs {
		if b, ok := in.(blockScope); ok {
			b.beginBlock()
		}
	}

	step := len(m.scratch)
	for _, in := range m.inputs {
		for off := 0; off < len(dst); off += step {
			piece := dst[off:min(off+step, len(dst))]
			s := m.scratch[:len(piece)]
			in.PullBlock(s)
			audio.Accumulate(piece, s)
		}
	}

	for _, in := range m.inputs {
		if b, ok := in.(blockScope); ok {
			b.endBlock()
		}
	}

	switch m.clip {
	case ClipHard:
		audio.HardClip(dst)
	case ClipSoft:
		audio.SoftClip(dst)
	}
}

// ReleaseResources releases every input, then empties the registry.
func (m *Mixer) ReleaseResources() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, in := range m.inputs {
		in.ReleaseResources()
	}
	clear(m.inputs)
	m.inputs = m.inputs[:0]
	m.scratch = nil
	m.state.Store(int32(Released))
	m.streaming.Store(false)

	m.log.Debug("mixer released")
}
