// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis.
//
// oggvorbis already produces interleaved float32, so the source decodes
// straight into the caller's buffer with no conversion. Reads are trimmed to
// whole frames.
package vorbis
