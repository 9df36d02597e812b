// SPDX-License-Identifier: EPL-2.0

package device

import (
	"github.com/ik5/otodecks/audio"
	"github.com/ik5/otodecks/engine"
)

var (
	// ErrInvalidDstSize is returned by Read when p cannot hold one frame.
	ErrInvalidDstSize = audio.ErrInvalidDstSize

	// ErrNotPrepared is returned by Retry before any Prepare.
	ErrNotPrepared = engine.ErrNotPrepared
)
