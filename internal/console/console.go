// SPDX-License-Identifier: EPL-2.0

// Package console executes text commands against a set of decks. The
// otodecks console command feeds it lines from readline.
package console

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ik5/otodecks/engine"
)

var (
	// ErrQuit is returned by Exec for quit and exit.
	ErrQuit = errors.New("quit")

	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownDeck    = errors.New("unknown deck")
	ErrUsage          = errors.New("usage")
)

// Deck is the control surface of one deck. *engine.Player is one.
type Deck interface {
	Name() string
	LoadURL(uri string) error
	Start() error
	Stop()
	SetGain(v float64) error
	SetSpeed(ratio float64) error
	SetPosition(seconds float64) error
	SetPositionRelative(fraction float64) error
	Status() engine.Status
}

// Gate is the global play switch. *device.Output is one.
type Gate interface {
	SetPlaying(bool)
	Playing() bool
}

// Option configures a Console.
type Option func(*Console)

// WithResolver rewrites track arguments of load before they reach the deck.
func WithResolver(resolve func(string) string) Option {
	return func(c *Console) {
		if resolve != nil {
			c.resolve = resolve
		}
	}
}

// Console dispatches command lines. It is not safe for concurrent use.
type Console struct {
	decks   []Deck
	gate    Gate
	out     io.Writer
	resolve func(string) string
}

// New returns a console over decks writing replies to out. gate may be nil.
func New(decks []Deck, gate Gate, out io.Writer, opts ...Option) *Console {
	c := &Console{
		decks:   decks,
		gate:    gate,
		out:     out,
		resolve: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type command struct {
	usage string
	args  int // arguments after the command name, -1 for any
	run   func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"load":   {"load <deck> <track>", 2, (*Console).load},
		"play":   {"play <deck>", 1, (*Console).play},
		"stop":   {"stop <deck>", 1, (*Console).stop},
		"gain":   {"gain <deck> <0..1>", 2, (*Console).gain},
		"speed":  {"speed <deck> <ratio>", 2, (*Console).speed},
		"seek":   {"seek <deck> <0..1 | seconds s>", 2, (*Console).seek},
		"pos":    {"pos <deck>", 1, (*Console).pos},
		"status": {"status", 0, (*Console).status},
		"mute":   {"mute", 0, (*Console).mute},
		"unmute": {"unmute", 0, (*Console).unmute},
		"help":   {"help", 0, (*Console).help},
		"quit":   {"quit", 0, func(*Console, []string) error { return ErrQuit }},
		"exit":   {"exit", 0, func(*Console, []string) error { return ErrQuit }},
	}
}

// Commands returns the command names, for completion.
func Commands() []string {
	return []string{"load", "play", "stop", "gain", "speed", "seek", "pos", "status", "mute", "unmute", "help", "quit"}
}

// Exec runs one command line. Blank lines and lines starting with # are
// ignored. A value that had to be clamped is reported on out and is not an
// error.
func (c *Console) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	name := strings.ToLower(fields[0])
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}

	args := fields[1:]
	// Track paths may contain spaces.
	if name == "load" && len(args) > 2 {
		args = []string{args[0], strings.Join(args[1:], " ")}
	}
	if cmd.args >= 0 && len(args) != cmd.args {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}

	err := cmd.run(c, args)

	var perr *engine.ParamError
	if errors.As(err, &perr) {
		fmt.Fprintln(c.out, perr)
		return nil
	}

	return err
}

// deck finds a deck by name, case-insensitively, or by 1-based index.
func (c *Console) deck(ref string) (Deck, error) {
	for _, d := range c.decks {
		if strings.EqualFold(d.Name(), ref) {
			return d, nil
		}
	}

	if i, err := strconv.Atoi(ref); err == nil && i >= 1 && i <= len(c.decks) {
		return c.decks[i-1], nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownDeck, ref)
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, s)
	}

	return v, nil
}

func (c *Console) load(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	if err := d.LoadURL(c.resolve(args[1])); err != nil {
		return err
	}

	st := d.Status()
	fmt.Fprintf(c.out, "%s: loaded %s (%s)\n", st.Name, filepath.Base(st.URI), FormatClock(st.Length))

	return nil
}

// play resumes a stopped deck where it stands, so "seek" then "play" works.
// Only a deck that ran to the end is rewound first.
func (c *Console) play(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	if d.Status().Ended {
		if err := d.SetPosition(0); err != nil {
			return err
		}
	}

	return d.Start()
}

func (c *Console) stop(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	d.Stop()

	return nil
}

func (c *Console) gain(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	v, err := parseNumber(args[1])
	if err != nil {
		return err
	}

	return d.SetGain(v)
}

func (c *Console) speed(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	v, err := parseNumber(args[1])
	if err != nil {
		return err
	}

	return d.SetSpeed(v)
}

// seek takes a fraction of the track, or seconds when suffixed with s.
func (c *Console) seek(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	if secs, ok := strings.CutSuffix(args[1], "s"); ok {
		v, err := parseNumber(secs)
		if err != nil {
			return err
		}
		return d.SetPosition(v)
	}

	v, err := parseNumber(args[1])
	if err != nil {
		return err
	}

	return d.SetPositionRelative(v)
}

func (c *Console) pos(args []string) error {
	d, err := c.deck(args[0])
	if err != nil {
		return err
	}

	st := d.Status()
	fmt.Fprintf(c.out, "%s: %s / %s (%.3f)\n", st.Name,
		FormatClock(st.Position*st.Length), FormatClock(st.Length), st.Position)

	return nil
}

func (c *Console) status([]string) error {
	if c.gate != nil && !c.gate.Playing() {
		fmt.Fprintln(c.out, "output muted")
	}

	for _, d := range c.decks {
		fmt.Fprintln(c.out, FormatStatus(d.Status()))
	}

	return nil
}

func (c *Console) mute([]string) error {
	if c.gate != nil {
		c.gate.SetPlaying(false)
	}
	return nil
}

func (c *Console) unmute([]string) error {
	if c.gate != nil {
		c.gate.SetPlaying(true)
	}
	return nil
}

func (c *Console) help([]string) error {
	for _, name := range Commands() {
		fmt.Fprintln(c.out, " ", commands[name].usage)
	}
	return nil
}

// FormatStatus renders one deck as a status line.
func FormatStatus(st engine.Status) string {
	track := "-"
	if st.URI != "" {
		track = filepath.Base(st.URI)
	}

	state := st.State.String()
	if st.Ended {
		state = "ended"
	}

	return fmt.Sprintf("%-6s %-8s %s / %s  gain %.2f  speed %.2f  %s",
		st.Name, state,
		FormatClock(st.Position*st.Length), FormatClock(st.Length),
		st.Gain, st.Speed, track)
}

// FormatClock renders seconds as m:ss, rounding down.
func FormatClock(seconds float64) string {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return "0:00"
	}

	s := int64(seconds)

	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
