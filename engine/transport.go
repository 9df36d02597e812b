// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/otodecks/audio"
)

// ChunkFrames is the most frames a Transport reads from its track per call.
const ChunkFrames = 1024

// noSeek marks an empty seek slot.
const noSeek = -1

// State is the transport state of a deck.
type State int32

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Opener opens a track by path or URI. *audio.Registry is the usual one.
type Opener interface {
	Open(uri string) (audio.SeekableSource, error)
}

// track is one loaded source together with the state the audio goroutine
// keeps for it. Only the audio goroutine reads from src or writes cursor.
type track struct {
	src      audio.SeekableSource
	uri      string
	rate     int
	channels int
	length   int64 // frames

	buf    []float32
	cursor atomic.Int64
	seek   atomic.Int64
}

func newTrack(uri string, src audio.SeekableSource) *track {
	tr := &track{
		src:      src,
		uri:      uri,
		rate:     src.SampleRate(),
		channels: src.Channels(),
		length:   src.Len(),
		buf:      make([]float32, ChunkFrames*src.Channels()),
	}
	tr.cursor.Store(src.Position())
	tr.seek.Store(noSeek)

	return tr
}

// position is the pending seek target if there is one, else the cursor.
func (tr *track) position() int64 {
	if s := tr.seek.Load(); s != noSeek {
		return s
	}
	return tr.cursor.Load()
}

type retiredTrack struct {
	tr *track
	// after is the begun-block count at swap time. The track may be closed
	// once that many blocks have finished.
	after uint64
}

// Transport owns the loaded track of one deck: play/stop state, the read
// cursor and seeking. It is the first stage of a deck pipeline.
//
// Control methods (Load, Start, Stop, SetPosition...) may be called from any
// goroutine. ReadFrames, SampleRate, Active, Stale, Discontinuity and the
// block markers belong to the single audio goroutine.
type Transport struct {
	opener   Opener
	channels int
	log      *slog.Logger

	cur   atomic.Pointer[track]
	state atomic.Int32
	ended atomic.Bool

	begun    atomic.Uint64
	finished atomic.Uint64

	mu      sync.Mutex
	retired []retiredTrack

	// audio goroutine only
	seen    *track
	jumped  bool
	block   *track
	inBlock bool
}

// NewTransport returns a stopped transport producing frames with the given
// channel count.
func NewTransport(opener Opener, channels int, log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}

	return &Transport{
		opener:   opener,
		channels: channels,
		log:      log,
	}
}

func (t *Transport) Channels() int { return t.channels }

// State returns the current transport state.
func (t *Transport) State() State { return State(t.state.Load()) }

// Ended reports whether playback stopped by reaching the end of the track.
func (t *Transport) Ended() bool { return t.ended.Load() }

// Loaded reports whether a track is loaded.
func (t *Transport) Loaded() bool { return t.cur.Load() != nil }

// URI returns the loaded track's URI, or "" when nothing is loaded.
func (t *Transport) URI() string {
	if tr := t.cur.Load(); tr != nil {
		return tr.uri
	}
	return ""
}

// Load opens uri and installs it in place of the current track, positioned
// at 0 and stopped. On failure the current track is left untouched.
func (t *Transport) Load(uri string) error {
	src, err := t.opener.Open(uri)
	if err != nil {
		if !errors.Is(err, ErrUnsupportedFormat) {
			err = fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		return fmt.Errorf("load %q: %w", uri, err)
	}

	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		_ = src.Close()
		return fmt.Errorf("load %q: %w: %d Hz x %d channels", uri, ErrUnsupportedFormat, src.SampleRate(), src.Channels())
	}

	tr := newTrack(uri, src)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Store(int32(Stopped))
	t.ended.Store(false)

	if old := t.cur.Swap(tr); old != nil {
		t.retired = append(t.retired, retiredTrack{tr: old, after: t.begun.Load()})
	}

	if err := t.reapLocked(); err != nil {
		t.log.Warn("close replaced track", slog.Any("error", err))
	}

	return nil
}

// Start moves the transport to Playing. It reports ErrNoSourceLoaded when
// there is nothing to play.
func (t *Transport) Start() error {
	if t.cur.Load() == nil {
		return ErrNoSourceLoaded
	}

	t.ended.Store(false)
	t.state.Store(int32(Playing))
	t.collect()

	return nil
}

// Stop moves the transport to Stopped. Stopping a stopped transport is a no-op.
func (t *Transport) Stop() {
	t.state.Store(int32(Stopped))
	t.collect()
}

// SetPosition moves the cursor to seconds, clamped to the track length. The
// move takes effect on the next block.
func (t *Transport) SetPosition(seconds float64) error {
	tr := t.cur.Load()
	if tr == nil {
		return ErrNoSourceLoaded
	}

	s, err := clamp("position", seconds, 0, float64(tr.length)/float64(tr.rate))
	t.seekTo(tr, int64(math.Round(s*float64(tr.rate))))

	return err
}

// SetPositionRelative moves the cursor to fraction of the track length.
func (t *Transport) SetPositionRelative(fraction float64) error {
	tr := t.cur.Load()
	if tr == nil {
		return ErrNoSourceLoaded
	}

	f, err := clamp("relative position", fraction, 0, 1)
	t.seekTo(tr, int64(math.Round(f*float64(tr.length))))

	return err
}

func (t *Transport) seekTo(tr *track, frame int64) {
	frame = min(max(frame, 0), tr.length)
	t.ended.Store(false)
	tr.seek.Store(frame)
}

// PositionRelative returns the position as a fraction of the track length,
// or 0 when nothing is loaded or the track is empty.
func (t *Transport) PositionRelative() float64 {
	tr := t.cur.Load()
	if tr == nil || tr.length == 0 {
		return 0
	}

	return min(float64(tr.position())/float64(tr.length), 1)
}

// Position returns the position in seconds.
func (t *Transport) Position() float64 {
	tr := t.cur.Load()
	if tr == nil {
		return 0
	}

	return float64(tr.position()) / float64(tr.rate)
}

// Length returns the track length in seconds, or 0 when nothing is loaded.
func (t *Transport) Length() float64 {
	tr := t.cur.Load()
	if tr == nil {
		return 0
	}

	return float64(tr.length) / float64(tr.rate)
}

// Close unloads the current track and closes every track that is no longer
// in use. Tracks still held by a running block are closed on a later Collect.
func (t *Transport) Close() error {
	t.state.Store(int32(Stopped))

	t.mu.Lock()
	defer t.mu.Unlock()

	if old := t.cur.Swap(nil); old != nil {
		t.retired = append(t.retired, retiredTrack{tr: old, after: t.begun.Load()})
	}

	return t.reapLocked()
}

// Collect closes replaced tracks the audio goroutine can no longer reach.
func (t *Transport) Collect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.reapLocked()
}

func (t *Transport) collect() {
	if err := t.Collect(); err != nil {
		t.log.Warn("close replaced track", slog.Any("error", err))
	}
}

func (t *Transport) reapLocked() error {
	done := t.finished.Load()

	var errs []error
	kept := t.retired[:0]
	for _, r := range t.retired {
		if r.after > done {
			kept = append(kept, r)
			continue
		}
		if err := r.tr.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", r.tr.uri, err))
		}
	}
	clear(t.retired[len(kept):])
	t.retired = kept

	return errors.Join(errs...)
}

// pending returns how many replaced tracks are waiting to be closed.
func (t *Transport) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.retired)
}

// beginBlock and endBlock bracket every block the audio goroutine pulls.
// beginBlock pins the current track for the whole block: a track loaded
// meanwhile is first seen by the next block.
func (t *Transport) beginBlock() {
	t.begun.Add(1)
	t.block = t.cur.Load()
	t.inBlock = true
}

func (t *Transport) endBlock() {
	t.block = nil
	t.inBlock = false
	t.finished.Add(1)
}

// playing is the track the audio goroutine reads: the pinned one inside a
// block, else the current one.
func (t *Transport) playing() *track {
	if t.inBlock {
		return t.block
	}
	return t.cur.Load()
}

// loadedRate is SampleRate for control goroutines.
func (t *Transport) loadedRate() int {
	if tr := t.cur.Load(); tr != nil {
		return tr.rate
	}
	return 0
}

// SampleRate returns the native rate of the track being played, 0 when
// none. It belongs to the audio goroutine.
func (t *Transport) SampleRate() int {
	if tr := t.playing(); tr != nil {
		return tr.rate
	}
	return 0
}

func (t *Transport) Active() bool {
	return t.playing() != nil && t.State() == Playing
}

func (t *Transport) Stale() bool {
	tr := t.playing()
	return tr != t.seen || (tr != nil && tr.seek.Load() != noSeek)
}

func (t *Transport) Discontinuity() bool {
	j := t.jumped
	t.jumped = false

	return j
}

// ReadFrames reads up to ChunkFrames frames from the cursor, converted to
// the transport's channel count. Pending seeks are applied first. Reaching
// the end of the track stops the transport.
func (t *Transport) ReadFrames(dst []float32) int {
	tr := t.playing()
	if tr != t.seen {
		t.seen = tr
		t.jumped = true
	}
	if tr == nil {
		return 0
	}

	if target := tr.seek.Swap(noSeek); target != noSeek {
		if err := tr.src.Seek(target); err == nil {
			tr.cursor.Store(target)
		}
		t.jumped = true
	}

	if t.State() != Playing {
		return 0
	}

	frames := min(len(dst)/t.channels, ChunkFrames)
	if frames == 0 {
		return 0
	}

	n, err := tr.src.ReadSamples(tr.buf[:frames*tr.channels])
	got := audio.MixChannels(dst, t.channels, tr.buf[:n], tr.channels)
	tr.cursor.Add(int64(got))

	if err != nil || (n == 0 && tr.cursor.Load() >= tr.length) {
		// io.EOF, or a source that broke mid-read. A track replaced during
		// this block must not stop its successor.
		if t.cur.Load() == tr && t.state.CompareAndSwap(int32(Playing), int32(Stopped)) {
			t.ended.Store(true)
		}
	}

	return got
}
