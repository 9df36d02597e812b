// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Source is a streaming PCM producer, usually a codec decoder.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases any resources.
	Close() error
}

// SeekableSource is a Source with a known length and a movable read cursor.
// Positions and lengths are counted in frames.
type SeekableSource interface {
	Source
	Len() int64
	Position() int64
	Seek(frame int64) error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (file extensions such as "wav", "mp3", "ogg")
// to decoders. One registry is built at startup and handed to every
// component that needs to open tracks.
type Registry struct {
	codecs map[string]Decoder

	mtx sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

// Open resolves uri (a plain path or a file:// URL), picks a decoder by
// extension and decodes the whole track into a Clip. Every failure matches
// ErrUnsupportedFormat.
func (r *Registry) Open(uri string) (SeekableSource, error) {
	path, err := resolvePath(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %q", ErrUnsupportedFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	clip, err := Decode(dec, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedFormat, path, err)
	}

	return clip, nil
}

// Decode runs dec over rd and collects the result into a Clip.
func Decode(dec Decoder, rd io.Reader) (*Clip, error) {
	src, err := dec.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	defer src.Close()

	return ReadAll(src)
}

func resolvePath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	return filepath.FromSlash(u.Path), nil
}
