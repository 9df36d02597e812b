// SPDX-License-Identifier: EPL-2.0

// Package engine is the real-time deck core.
//
// Each deck (Player) is a pipeline of three stages pulled one block at a
// time:
//
//	Transport -> Resampler -> GainStage
//
// The Transport owns the loaded track, play/stop state and seeking. The
// Resampler converts the track's native rate to the output rate and applies
// the deck speed. The GainStage scales by the deck gain. A Mixer sums the
// blocks of all decks into one output block on the audio goroutine.
//
// # Threads
//
// Two goroutines talk to a deck. The control side calls LoadURL, Start,
// Stop, SetGain, SetSpeed, SetPosition and friends at any time. The audio
// side calls PullBlock at the device cadence. PullBlock takes no locks,
// does no I/O and does not allocate; control values cross over through
// atomics.
//
// Loading replaces the track pointer atomically. A block sees either the
// old track or the new one, and the old track is closed only after every
// block that could have read it has finished.
//
// # Errors
//
// Out of range control values are clamped and applied, and the setter
// returns a *ParamError matching ErrInvalidParameter. Nothing on the audio
// path returns an error: whatever cannot be produced is silence.
package engine
