// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/otodecks/audio"
)

// createWAVFile builds a canonical 44-byte-header WAV holding samples at the
// given bit depth. Samples are written as-is, so 24-bit values must fit.
func createWAVFile(sampleRate, channels, bitsPerSample int, format uint16, samples []int32) []byte {
	buf := new(bytes.Buffer)

	sampleBytes := bitsPerSample / 8
	dataSize := uint32(len(samples) * sampleBytes)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, format)
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*sampleBytes))
	binary.Write(buf, binary.LittleEndian, uint16(channels*sampleBytes))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)

	for _, s := range samples {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(s))
		buf.Write(b[:sampleBytes])
	}

	return buf.Bytes()
}

func pcm16(samples ...int32) []byte {
	return createWAVFile(8000, 1, 16, formatPCM, samples)
}

func TestDecoder_Properties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate, ch   int
		samples    int
		wantFrames int64
	}{
		{"mono 8k", 8000, 1, 10, 10},
		{"stereo 44.1k", 44100, 2, 10, 5},
		{"stereo 48k", 48000, 2, 64, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := createWAVFile(tt.rate, tt.ch, 16, formatPCM, make([]int32, tt.samples))
			src, err := Decoder{}.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			defer src.Close()

			if src.SampleRate() != tt.rate || src.Channels() != tt.ch {
				t.Errorf("got %d Hz x %d, want %d Hz x %d", src.SampleRate(), src.Channels(), tt.rate, tt.ch)
			}

			hinter, ok := src.(interface{ Len() int64 })
			if !ok {
				t.Fatal("source has no length hint")
			}
			if hinter.Len() != tt.wantFrames {
				t.Errorf("Len() = %d, want %d", hinter.Len(), tt.wantFrames)
			}
		})
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not riff", []byte("this is not a wav file at all, not even close"), ErrNotWavFile},
		{"empty", nil, ErrNotWavFile},
		{"float", createWAVFile(8000, 1, 32, 3, []int32{0, 0}), ErrUnsupportedEncoding},
		{"12-bit", createWAVFile(8000, 1, 12, formatPCM, nil), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_ReadSamples16(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(pcm16(0, 16384, -16384, -32768, 32767)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 5 {
		t.Fatalf("ReadSamples() n = %d, want 5", n)
	}

	want := []float32{0, 0.5, -0.5, -1, 32767.0 / 32768}
	for i := range n {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	// Drained.
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v; want 0, EOF", n, err)
	}
}

func TestSource_ReadSamples24(t *testing.T) {
	t.Parallel()

	data := createWAVFile(48000, 2, 24, formatPCM, []int32{4194304, -4194304, 0, 8388607})
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	clip, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if clip.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", clip.Len())
	}

	got := make([]float32, 4)
	_, _ = clip.ReadSamples(got)

	want := []float32{0.5, -0.5, 0, 1}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_ReadSamplesInPieces(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(pcm16(100, 200, 300, 400, 500)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if n, _ := src.ReadSamples(nil); n != 0 {
		t.Errorf("ReadSamples(nil) n = %d, want 0", n)
	}

	total := 0
	dst := make([]float32, 2)
	for range 10 {
		n, err := src.ReadSamples(dst)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if total != 5 {
		t.Errorf("read %d samples, want 5", total)
	}
}

// onlyReader hides the Seek method of the wrapped reader.
type onlyReader struct{ io.Reader }

func TestDecoder_NonSeekableInput(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(onlyReader{bytes.NewReader(pcm16(1, 2, 3))})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	clip, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if clip.Len() != 3 {
		t.Errorf("Len() = %d, want 3", clip.Len())
	}
}

func BenchmarkDecoder_Decode(b *testing.B) {
	data := createWAVFile(44100, 2, 16, formatPCM, make([]int32, 2*44100))

	b.ReportAllocs()

	for range b.N {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := audio.ReadAll(src); err != nil {
			b.Fatal(err)
		}
	}
}
