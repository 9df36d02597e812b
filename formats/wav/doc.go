// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE files on top of
// github.com/go-audio/wav.
//
// The Decoder accepts integer PCM at 8, 16, 24 or 32 bits, tagged either as
// plain PCM or WAVE_FORMAT_EXTENSIBLE, with any channel count and sample
// rate. Samples come out as interleaved float32 in [-1, 1). Sources report
// their frame count, so audio.ReadAll can size the clip up front.
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// WriteWAV16 writes 16-bit PCM. The encoder patches the header sizes when
// it closes, so the destination must be an io.WriteSeeker such as *os.File.
package wav
