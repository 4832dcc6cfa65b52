package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{TwoPi, 0},
		{5 * math.Pi, math.Pi},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Normalize(tt.in), 1e-12, "Normalize(%v)", tt.in)
	}
}

func TestArcContains(t *testing.T) {
	cone := Arc{Center: 0, HalfWidth: Radians(80)}

	assert.True(t, cone.Contains(0))
	assert.True(t, cone.Contains(Radians(80)), "upper bound is inclusive")
	assert.True(t, cone.Contains(Radians(-80)), "lower bound is inclusive")
	assert.True(t, cone.Contains(Radians(300)))
	assert.False(t, cone.Contains(Radians(81)))
	assert.False(t, cone.Contains(math.Pi))

	down := Arc{Center: math.Pi / 2, HalfWidth: Radians(80)}
	assert.True(t, down.Contains(math.Pi/2))
	assert.False(t, down.Contains(Radians(-90)))
}

func TestUniqueCollapsesSeam(t *testing.T) {
	pts := Unique([]float64{0, TwoPi - 1e-12, 1, 1 + 1e-12})
	require.Len(t, pts, 2)
	assert.InDelta(t, 0, pts[0], 1e-12)
	assert.InDelta(t, 1, pts[1], 1e-12)
}

func TestGaps(t *testing.T) {
	assert.Nil(t, Gaps(nil))
	assert.Nil(t, Gaps([]float64{1}))

	gaps := Gaps([]float64{math.Pi, 0})
	require.Len(t, gaps, 2)
	assert.InDelta(t, math.Pi, gaps[0].Width, 1e-12)
	assert.InDelta(t, math.Pi/2, gaps[0].Mid(), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, gaps[1].Mid(), 1e-12)
}

func TestLargestGap(t *testing.T) {
	cone := Arc{Center: 0, HalfWidth: Radians(80)}
	points := []float64{cone.Lower(), cone.Upper(), 0, Radians(40)}

	gap, ok := LargestGap(points, cone.Contains)
	require.True(t, ok)
	// The reflex gap (80°..280°) is the widest but its midpoint is outside.
	assert.InDelta(t, Radians(80), gap.Width, 1e-9)
	assert.InDelta(t, Normalize(Radians(-40)), gap.Mid(), 1e-9)
}

func TestLargestGapTieBreak(t *testing.T) {
	// Four equal quarters: the lowest start wins.
	points := []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}
	gap, ok := LargestGap(points, nil)
	require.True(t, ok)
	assert.InDelta(t, 0, gap.Start, 1e-12)
}

func TestLargestGapNoneEligible(t *testing.T) {
	_, ok := LargestGap([]float64{0, 1}, func(float64) bool { return false })
	assert.False(t, ok)
}
