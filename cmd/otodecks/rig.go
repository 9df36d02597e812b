// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/otodecks"
	"github.com/ik5/otodecks/config"
	"github.com/ik5/otodecks/engine"
	"github.com/ik5/otodecks/logger"
)

// deckNames are used for the first decks; later ones are numbered.
var deckNames = []string{"left", "right"}

// rig is the decks and the mixer that sums them.
type rig struct {
	cfg   *config.Config
	decks []*engine.Player
	mixer *engine.Mixer
}

func newRig(cfg *config.Config) (*rig, error) {
	reg := otodecks.NewRegistry()

	r := &rig{
		cfg: cfg,
		mixer: engine.NewMixer(cfg.Audio.Channels,
			engine.WithClipMode(cfg.ClipMode()),
			engine.WithMixerLogger(logger.WithComponent("mixer"))),
	}

	for i := range cfg.Decks.Count {
		name := fmt.Sprintf("deck%d", i+1)
		if i < len(deckNames) {
			name = deckNames[i]
		}

		deck := engine.NewPlayer(reg,
			engine.WithName(name),
			engine.WithChannels(cfg.Audio.Channels),
			engine.WithLogger(logger.WithComponent("deck").With("deck", name)))
		_ = deck.SetGain(cfg.Decks.Gain)
		_ = deck.SetSpeed(cfg.Decks.Speed)

		if err := r.mixer.AddInput(deck); err != nil {
			return nil, err
		}
		r.decks = append(r.decks, deck)
	}

	return r, nil
}

// load puts one track on each deck, in order.
func (r *rig) load(tracks []string) error {
	if len(tracks) > len(r.decks) {
		return fmt.Errorf("%d tracks for %d decks", len(tracks), len(r.decks))
	}

	for i, track := range tracks {
		if err := r.decks[i].LoadURL(resolveTrack(r.cfg, track)); err != nil {
			return fmt.Errorf("deck %s: %w", r.decks[i].Name(), err)
		}
	}

	return nil
}

func (r *rig) prepare() error {
	return r.mixer.PrepareToPlay(r.cfg.Audio.BlockSize, float64(r.cfg.Audio.SampleRate))
}

// startLoaded starts every deck that has a track.
func (r *rig) startLoaded() {
	for _, d := range r.decks {
		if d.Loaded() {
			_ = d.Start()
		}
	}
}

// done reports whether no deck is playing any more.
func (r *rig) done() bool {
	for _, d := range r.decks {
		if d.State() == engine.Playing {
			return false
		}
	}
	return true
}

// collect closes tracks the audio goroutine has let go of.
func (r *rig) collect() {
	for _, d := range r.decks {
		if err := d.Collect(); err != nil {
			slog.Warn("closing replaced track", slog.String("deck", d.Name()), slog.Any("error", err))
		}
	}
}

// close removes the decks from the mixer, then releases and closes them.
func (r *rig) close() error {
	r.mixer.ReleaseResources()

	var errs []error
	for _, d := range r.decks {
		errs = append(errs, d.Close())
	}

	return errors.Join(errs...)
}

// resolveTrack keeps paths that exist and URIs as they are. A relative path
// that does not exist is tried under the tracks directory.
func resolveTrack(cfg *config.Config, track string) string {
	if strings.Contains(track, "://") || filepath.IsAbs(track) {
		return track
	}
	if _, err := os.Stat(track); err == nil {
		return track
	}

	alt := filepath.Join(cfg.Library.TracksDir, track)
	if _, err := os.Stat(alt); err == nil {
		return alt
	}

	return track
}

// collectEvery is how often long-running commands reap replaced tracks.
const collectEvery = 250 * time.Millisecond
