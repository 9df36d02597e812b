// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"

	"github.com/ik5/otodecks/audio"
)

var (
	// ErrUnsupportedFormat is returned by Load when the track cannot be
	// opened or decoded. The previously loaded track stays in place.
	ErrUnsupportedFormat = audio.ErrUnsupportedFormat

	ErrNoSourceLoaded   = errors.New("no source loaded")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotPrepared      = errors.New("not prepared")
	ErrMixerStreaming   = errors.New("mixer is streaming")
)

// ParamError reports a control value that was outside its domain. The
// clamped value has already been applied when it is returned.
type ParamError struct {
	Param   string
	Value   float64
	Clamped float64
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s %v out of range, clamped to %v", e.Param, e.Value, e.Clamped)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }
