// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces interleaved stereo 16-bit PCM, so every source is
// two channels regardless of the file. Mono files come out with both
// channels equal. The decoded length is exposed as a frame count when the
// underlying reader can seek.
package mp3
