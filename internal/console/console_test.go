// SPDX-License-Identifier: EPL-2.0

package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ik5/otodecks/audio"
	"github.com/ik5/otodecks/engine"
	"github.com/ik5/otodecks/internal/audiotest"
)

// fakeDeck records the calls made on it.
type fakeDeck struct {
	name    string
	calls   []string
	status  engine.Status
	loadErr error
}

func (f *fakeDeck) record(s string) { f.calls = append(f.calls, s) }

func (f *fakeDeck) Name() string { return f.name }

func (f *fakeDeck) LoadURL(uri string) error {
	f.record("load " + uri)
	if f.loadErr != nil {
		return f.loadErr
	}
	f.status.URI = uri
	f.status.Length = 125
	return nil
}

func (f *fakeDeck) Start() error { f.record("start"); return nil }
func (f *fakeDeck) Stop()        { f.record("stop") }

func (f *fakeDeck) SetGain(v float64) error {
	f.record("gain")
	if v > 1 {
		return &engine.ParamError{Param: "gain", Value: v, Clamped: 1}
	}
	return nil
}

func (f *fakeDeck) SetSpeed(float64) error            { f.record("speed"); return nil }
func (f *fakeDeck) SetPosition(float64) error         { f.record("seek abs"); return nil }
func (f *fakeDeck) SetPositionRelative(float64) error { f.record("seek rel"); return nil }
func (f *fakeDeck) Status() engine.Status             { s := f.status; s.Name = f.name; return s }

type fakeGate struct{ playing bool }

func (g *fakeGate) SetPlaying(v bool) { g.playing = v }
func (g *fakeGate) Playing() bool     { return g.playing }

func newTestConsole() (*Console, *fakeDeck, *fakeDeck, *fakeGate, *bytes.Buffer) {
	a := &fakeDeck{name: "left"}
	b := &fakeDeck{name: "right"}
	g := &fakeGate{playing: true}
	out := &bytes.Buffer{}

	return New([]Deck{a, b}, g, out), a, b, g, out
}

func TestExec_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line     string
		wantLeft []string
		wantRght []string
	}{
		{"play left", []string{"start"}, nil},
		{"PLAY 2", nil, []string{"start"}},
		{"stop Right", nil, []string{"stop"}},
		{"gain 1 0.5", []string{"gain"}, nil},
		{"speed right 1.25", nil, []string{"speed"}},
		{"seek left 0.5", []string{"seek rel"}, nil},
		{"seek left 30s", []string{"seek abs"}, nil},
		{"load left My Song.wav", []string{"load My Song.wav"}, nil},
		{"", nil, nil},
		{"# comment", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			c, a, b, _, _ := newTestConsole()
			if err := c.Exec(tt.line); err != nil {
				t.Fatalf("Exec(%q) error = %v", tt.line, err)
			}

			if strings.Join(a.calls, ",") != strings.Join(tt.wantLeft, ",") {
				t.Errorf("left calls = %v, want %v", a.calls, tt.wantLeft)
			}
			if strings.Join(b.calls, ",") != strings.Join(tt.wantRght, ",") {
				t.Errorf("right calls = %v, want %v", b.calls, tt.wantRght)
			}
		})
	}
}

func TestExec_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want error
	}{
		{"scratch left", ErrUnknownCommand},
		{"play middle", ErrUnknownDeck},
		{"play 3", ErrUnknownDeck},
		{"play", ErrUsage},
		{"gain left loud", ErrUsage},
		{"seek left xs", ErrUsage},
		{"quit", ErrQuit},
		{"exit", ErrQuit},
	}

	for _, tt := range tests {
		c, _, _, _, _ := newTestConsole()
		if err := c.Exec(tt.line); !errors.Is(err, tt.want) {
			t.Errorf("Exec(%q) error = %v, want %v", tt.line, err, tt.want)
		}
	}
}

func TestExec_ClampIsReported(t *testing.T) {
	t.Parallel()

	c, _, _, _, out := newTestConsole()

	if err := c.Exec("gain left 1.8"); err != nil {
		t.Fatalf("Exec() error = %v, want nil", err)
	}
	if got := out.String(); got != "gain 1.8 out of range, clamped to 1\n" {
		t.Errorf("output = %q", got)
	}
}

func TestExec_PlayRewindsEndedDeck(t *testing.T) {
	t.Parallel()

	c, a, _, _, _ := newTestConsole()
	a.status.Ended = true

	_ = c.Exec("play left")

	if got := strings.Join(a.calls, ","); got != "seek abs,start" {
		t.Errorf("calls = %s, want seek abs,start", got)
	}
}

func TestExec_PlayResumesStoppedDeck(t *testing.T) {
	t.Parallel()

	c, a, _, _, _ := newTestConsole()

	for _, line := range []string{"seek left 0.5", "play left", "stop left", "play left"} {
		if err := c.Exec(line); err != nil {
			t.Fatalf("Exec(%q) error = %v", line, err)
		}
	}

	if got := strings.Join(a.calls, ","); got != "seek rel,start,stop,start" {
		t.Errorf("calls = %s, want seek rel,start,stop,start", got)
	}
}

func TestExec_LoadFailure(t *testing.T) {
	t.Parallel()

	c, a, _, _, out := newTestConsole()
	a.loadErr = audio.ErrUnsupportedFormat

	if err := c.Exec("load left notes.txt"); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("Exec() error = %v, want ErrUnsupportedFormat", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}

func TestExec_Resolver(t *testing.T) {
	t.Parallel()

	a := &fakeDeck{name: "left"}
	out := &bytes.Buffer{}
	c := New([]Deck{a}, nil, out, WithResolver(func(s string) string { return "/music/" + s }))

	if err := c.Exec("load left intro.wav"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if a.calls[0] != "load /music/intro.wav" {
		t.Errorf("calls = %v", a.calls)
	}
	if got := out.String(); got != "left: loaded intro.wav (2:05)\n" {
		t.Errorf("output = %q", got)
	}
}

func TestExec_MuteAndStatus(t *testing.T) {
	t.Parallel()

	c, _, _, g, out := newTestConsole()

	_ = c.Exec("mute")
	if g.playing {
		t.Error("mute left the gate open")
	}

	_ = c.Exec("status")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || lines[0] != "output muted" {
		t.Errorf("status output = %q", out.String())
	}

	_ = c.Exec("unmute")
	if !g.playing {
		t.Error("unmute left the gate closed")
	}
}

func TestExec_Help(t *testing.T) {
	t.Parallel()

	c, _, _, _, out := newTestConsole()
	_ = c.Exec("help")

	if got := strings.Count(out.String(), "\n"); got != len(Commands()) {
		t.Errorf("help printed %d lines, want %d", got, len(Commands()))
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()

	for secs, want := range map[float64]string{
		0:     "0:00",
		-3:    "0:00",
		59.9:  "0:59",
		60:    "1:00",
		225.5: "3:45",
		3600:  "60:00",
	} {
		if got := FormatClock(secs); got != want {
			t.Errorf("FormatClock(%v) = %q, want %q", secs, got, want)
		}
	}
}

func TestConsole_DrivesPlayer(t *testing.T) {
	t.Parallel()

	lib := audiotest.NewOpener()
	lib.Add("tone.wav", func() audio.SeekableSource {
		return audiotest.ConstantClip(8000, 2, 8000, 0.5)
	})

	deck := engine.NewPlayer(lib, engine.WithName("A"))
	defer deck.Close()

	out := &bytes.Buffer{}
	c := New([]Deck{deck}, nil, out)

	for _, line := range []string{"load A tone.wav", "gain A 0.25", "speed A 2", "seek A 0.5", "play A"} {
		if err := c.Exec(line); err != nil {
			t.Fatalf("Exec(%q) error = %v", line, err)
		}
	}

	st := deck.Status()
	if st.State != engine.Playing || st.Gain != 0.25 || st.Speed != 2 || st.Position != 0.5 {
		t.Errorf("Status() = %+v", st)
	}

	out.Reset()
	_ = c.Exec("pos A")
	if got := out.String(); got != "A: 0:00 / 0:01 (0.500)\n" {
		t.Errorf("pos output = %q", got)
	}
}
