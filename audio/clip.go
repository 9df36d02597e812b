// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// Clip is a fully decoded track held in memory as interleaved float32
// samples. It is the seekable reader decks play from: once built, reading
// and seeking never touch the disk or a codec.
//
// A Clip is not safe for concurrent use.
type Clip struct {
	sampleRate int
	channels   int
	samples    []float32
	pos        int64 // frames
}

// NewClip wraps interleaved samples. A trailing partial frame is dropped.
func NewClip(sampleRate, channels int, samples []float32) (*Clip, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrInvalidFormat
	}

	whole := len(samples) - len(samples)%channels

	return &Clip{
		sampleRate: sampleRate,
		channels:   channels,
		samples:    samples[:whole],
	}, nil
}

func (c *Clip) SampleRate() int { return c.sampleRate }
func (c *Clip) Channels() int   { return c.channels }
func (c *Clip) Position() int64 { return c.pos }

// Len returns the clip length in frames.
func (c *Clip) Len() int64 { return int64(len(c.samples) / c.channels) }

// Duration returns the playing time at the native sample rate.
func (c *Clip) Duration() time.Duration {
	return time.Duration(c.Len()) * time.Second / time.Duration(c.sampleRate)
}

func (c *Clip) Seek(frame int64) error {
	if frame < 0 || frame > c.Len() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrSeekOutOfRange, frame, c.Len())
	}
	c.pos = frame

	return nil
}

func (c *Clip) ReadSamples(dst []float32) (int, error) {
	if len(dst)%c.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	start := int(c.pos) * c.channels
	if start >= len(c.samples) {
		return 0, io.EOF
	}

	n := copy(dst, c.samples[start:])
	c.pos += int64(n / c.channels)

	if start+n >= len(c.samples) {
		return n, io.EOF
	}

	return n, nil
}

// Close drops the sample memory. A closed clip reads as empty.
func (c *Clip) Close() error {
	c.samples = nil
	c.pos = 0

	return nil
}

// lengthHinter is implemented by decoders that know their length in frames
// before the stream is drained.
type lengthHinter interface {
	Len() int64
}

// ReadAll drains src into a Clip.
func ReadAll(src Source) (*Clip, error) {
	channels := src.Channels()
	if channels <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidFormat
	}

	// Start from the decoder's own estimate when it has one, otherwise
	// assume ~2 seconds and grow.
	estimated := src.SampleRate() * channels * 2
	if h, ok := src.(lengthHinter); ok && h.Len() > 0 {
		estimated = int(h.Len()) * channels
	}
	samples := make([]float32, 0, estimated)

	const chunkFrames = 4096
	const maxIdleReads = 64
	buf := make([]float32, chunkFrames*channels)
	idle := 0

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}

		if n > 0 {
			idle = 0
			continue
		}

		// A decoder that keeps returning (0, nil) would spin forever.
		idle++
		if idle >= maxIdleReads {
			break
		}
	}

	return NewClip(src.SampleRate(), channels, samples)
}
