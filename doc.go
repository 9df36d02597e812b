// SPDX-License-Identifier: EPL-2.0

// Package otodecks is a two-deck DJ playback engine.
//
// Each deck (engine.Player) loads a track, plays it at a variable speed and
// gain, and can be repositioned while it plays. An engine.Mixer sums the
// decks into one block that a sound card, or an offline bounce, pulls.
//
// # Quick Start
//
//	reg := otodecks.NewRegistry()
//	left := engine.NewPlayer(reg, engine.WithName("left"))
//	if err := left.LoadURL("Tracks/intro.mp3"); err != nil {
//	    // handle err
//	}
//
//	mix := engine.NewMixer(2)
//	_ = mix.AddInput(left)
//	_ = mix.PrepareToPlay(512, 44100)
//	_ = left.Start()
//
//	block := make([]float32, 2*512)
//	mix.PullBlock(block) // from the audio goroutine
//
// # Packages
//
//   - audio: sources, the decoder registry and whole-track clips
//   - engine: Transport, Resampler, GainStage, Player and Mixer
//   - formats/...: WAV, AIFF, MP3, Ogg Vorbis and FLAC decoders
//   - device: the io.Reader a sound card pulls, plus an oto speaker
//   - config, logger: viper configuration and slog setup
//
// NewRegistry wires every decoder in formats/. Render bounces a mix to
// 16-bit PCM without a sound card.
package otodecks
