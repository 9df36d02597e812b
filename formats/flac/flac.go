// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files through github.com/gopxl/beep/v2/flac.
//
// Mono files decode to one channel. Anything wider comes out as the stereo
// pair beep produces.
package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2/flac"
	"github.com/ik5/otodecks/audio"
)

var ErrNotFlacFile = errors.New("not a FLAC file")

// streamer is the part of beep.StreamSeekCloser the source uses.
type streamer interface {
	Stream(samples [][2]float64) (n int, ok bool)
	Err() error
	Len() int
	Close() error
}

type source struct {
	s          streamer
	sampleRate int
	channels   int
	buf        [][2]float64
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return s.s.Close() }
func (s *source) Len() int64      { return int64(max(s.s.Len(), 0)) }

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	if frames == 0 {
		return 0, nil
	}

	if cap(s.buf) < frames {
		s.buf = make([][2]float64, frames)
	}

	n, ok := s.s.Stream(s.buf[:frames])
	if n == 0 || !ok {
		if err := s.s.Err(); err != nil {
			return 0, fmt.Errorf("flac read: %w", err)
		}
		return 0, io.EOF
	}

	if s.channels == 1 {
		for i, f := range s.buf[:n] {
			dst[i] = float32(f[0])
		}
		return n, nil
	}

	for i, f := range s.buf[:n] {
		dst[2*i] = float32(f[0])
		dst[2*i+1] = float32(f[1])
	}

	return 2 * n, nil
}

// Decoder decodes FLAC streams.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	s, format, err := flac.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	channels := 2
	if format.NumChannels == 1 {
		channels = 1
	}

	return &source{
		s:          s,
		sampleRate: int(format.SampleRate),
		channels:   channels,
	}, nil
}
