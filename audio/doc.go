// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decode-side building blocks shared by every
// deck.
//
// # Source Interface
//
// Decoders produce a Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Samples are interleaved float32 in [-1.0, 1.0]. ReadSamples returns io.EOF
// once the stream is drained, possibly together with the last samples.
//
// # Clips
//
// A deck never plays straight from a decoder. Registry.Open decodes the
// whole track into a Clip, a SeekableSource held in memory, so the audio
// thread only ever copies floats:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Open("file:///music/loop.wav")
//
// Every failure from Open matches ErrUnsupportedFormat with errors.Is, with
// the underlying cause wrapped alongside it.
//
// # Kernels
//
// MixChannels, ApplyGain, Accumulate, HardClip and SoftClip are the
// allocation-free loops the engine runs on every block.
package audio
