// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeChunk is how many samples go to the encoder per call.
const writeChunk = 8192

// Writer streams interleaved 16-bit PCM into a WAV file. The header sizes
// are patched on Close, so the destination must be seekable.
type Writer struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

// NewWriter starts a 16-bit WAV stream on w.
func NewWriter(w io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz x %d channels", ErrUnsupportedWavLayout, sampleRate, channels)
	}

	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           make([]int, 0, writeChunk),
			SourceBitDepth: 16,
		},
	}, nil
}

// Write appends samples. It does not keep a reference to them.
func (w *Writer) Write(samples []int16) error {
	for i := 0; i < len(samples); i += writeChunk {
		chunk := samples[i:min(i+writeChunk, len(samples))]
		w.buf.Data = w.buf.Data[:len(chunk)]
		for j, s := range chunk {
			w.buf.Data[j] = int(s)
		}

		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("wav write: %w", err)
		}
	}

	return nil
}

// Close finishes the file. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}

	return nil
}

// WriteWAV16 writes interleaved 16-bit PCM as a WAV file in one go.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	wr, err := NewWriter(w, sampleRate, channels)
	if err != nil {
		return err
	}

	if err := wr.Write(samples); err != nil {
		return err
	}

	return wr.Close()
}
