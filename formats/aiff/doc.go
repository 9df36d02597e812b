// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Signed PCM at 8, 16, 24 or 32 bits is supported, at any channel count and
// sample rate. Samples come out as interleaved float32 in [-1, 1), and the
// frame count from the COMM chunk is exposed as a length hint.
package aiff
