// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync/atomic"
)

// Control value domains.
const (
	MinGain  = 0.0
	MaxGain  = 1.0
	MinSpeed = 0.0
	MaxSpeed = 100.0
)

// clamp limits v to [lo, hi]. NaN maps to lo. A non-nil error means the
// value had to be changed.
func clamp(param string, v, lo, hi float64) (float64, error) {
	var c float64
	switch {
	case math.IsNaN(v):
		c = lo
	case v < lo:
		c = lo
	case v > hi:
		c = hi
	default:
		return v, nil
	}

	return c, &ParamError{Param: param, Value: v, Clamped: c}
}

// atomicFloat is a float64 readable from the audio goroutine without locks.
type atomicFloat struct {
	bits atomic.Uint64
}

func newAtomicFloat(v float64) *atomicFloat {
	a := &atomicFloat{}
	a.Store(v)

	return a
}

func (a *atomicFloat) Load() float64   { return math.Float64frombits(a.bits.Load()) }
func (a *atomicFloat) Store(v float64) { a.bits.Store(math.Float64bits(v)) }
