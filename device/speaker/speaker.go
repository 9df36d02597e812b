// SPDX-License-Identifier: EPL-2.0

// Package speaker plays an io.Reader of float32 LE frames on the default
// sound card through github.com/ebitengine/oto/v3.
//
// oto allows one context per process, so Open may only succeed once.
package speaker

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var ErrClosed = errors.New("speaker closed")

// Speaker is an open oto context with one player attached.
type Speaker struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

// Open starts the audio device at the given rate and channel count and
// attaches a paused player pulling from r. buffer sets the device latency.
// A zero buffer lets oto choose.
func Open(r io.Reader, sampleRate, channels int, buffer time.Duration) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Speaker{
		ctx:    ctx,
		player: ctx.NewPlayer(r),
	}, nil
}

// Play starts pulling from the reader.
func (s *Speaker) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return ErrClosed
	}

	s.player.Play()

	return s.player.Err()
}

// Pause stops pulling. Buffered audio is kept.
func (s *Speaker) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Pause()
	}
}

// Err reports an error the player hit while reading.
func (s *Speaker) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return ErrClosed
	}

	return s.player.Err()
}

// Close detaches the player and suspends the device.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}

	err := s.player.Close()
	s.player = nil

	return errors.Join(err, s.ctx.Suspend())
}
