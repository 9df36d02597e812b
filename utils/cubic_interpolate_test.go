// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		y    [4]float32
		x    float32
		want float32
	}{
		{name: "ramp midpoint", y: [4]float32{0, 1, 2, 3}, x: 0.5, want: 1.5},
		{name: "ramp quarter", y: [4]float32{1, 2, 3, 4}, x: 0.25, want: 2.25},
		{name: "dc", y: [4]float32{0.5, 0.5, 0.5, 0.5}, x: 0.7, want: 0.5},
		{name: "silence", y: [4]float32{}, x: 0.5, want: 0},
		{name: "peak overshoots", y: [4]float32{0, 1, 1, 0}, x: 0.5, want: 1.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y[0], tt.y[1], tt.y[2], tt.y[3], tt.x)
			if got != tt.want {
				t.Errorf("CubicInterpolate(%v, %v) = %v, want %v", tt.y, tt.x, got, tt.want)
			}
		})
	}
}

func TestCubicInterpolate_HitsKnots(t *testing.T) {
	t.Parallel()

	for i := range 64 {
		y0, y1, y2, y3 := float32(i), float32(i+1), float32(i*2), float32(i-3)

		if got := CubicInterpolate(y0, y1, y2, y3, 0); got != y1 {
			t.Fatalf("x=0 on %v..%v = %v, want %v", y0, y3, got, y1)
		}
		if got := CubicInterpolate(y0, y1, y2, y3, 1); got != y2 {
			t.Fatalf("x=1 on %v..%v = %v, want %v", y0, y3, got, y2)
		}
	}
}

func TestCubicInterpolateFrame(t *testing.T) {
	t.Parallel()

	dst := make([]float32, 3)
	CubicInterpolateFrame(dst,
		[]float32{0, 1, 0.5},
		[]float32{1, 2, 0.5},
		[]float32{2, 3, 0.5},
		[]float32{3, 4, 0.5},
		0.5)

	want := []float32{1.5, 2.5, 0.5}
	for c := range dst {
		if dst[c] != want[c] {
			t.Errorf("channel %d = %v, want %v", c, dst[c], want[c])
		}
	}
}

func TestCubicInterpolateFrame_ZeroAllocs(t *testing.T) {
	f := []float32{0.5, 0.5}
	dst := make([]float32, 2)

	allocs := testing.AllocsPerRun(1000, func() {
		CubicInterpolateFrame(dst, f, f, f, f, 0.25)
	})

	if allocs > 0 {
		t.Errorf("CubicInterpolateFrame allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicInterpolateFrame(b *testing.B) {
	f0 := []float32{0.1, -0.1}
	f1 := []float32{0.5, -0.5}
	f2 := []float32{0.3, -0.3}
	f3 := []float32{-0.2, 0.2}
	dst := make([]float32, 2)

	b.ReportAllocs()

	for i := range b.N {
		CubicInterpolateFrame(dst, f0, f1, f2, f3, float32(i%100)/100)
	}
}
