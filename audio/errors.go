// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
	ErrSeekOutOfRange    = errors.New("seek position out of range")
	ErrInvalidFormat     = errors.New("sample rate and channels must be positive")
)
