package dtw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(values ...float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		out[i] = []float64{v}
	}
	return out
}

func TestIdenticalSequencesHaveZeroDistance(t *testing.T) {
	c := New(Config{})
	s := seq(0, 1, 2, 3, 2, 1, 0)

	distance, err := c.Compare(s, s)
	require.NoError(t, err)
	assert.Zero(t, distance)

	normalized := New(Config{Normalize: true})
	distance, err = normalized.Compare(s, s)
	require.NoError(t, err)
	assert.Zero(t, distance)
}

func TestKnownAlignment(t *testing.T) {
	// A=[0,2] vs B=[0,1,2]: optimal path matches 0-0, 2-1, 2-2 at cost 1
	a := seq(0, 2)
	b := seq(0, 1, 2)

	c := New(Config{})
	distance, err := c.Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, distance, 1e-12)

	normalized := New(Config{Normalize: true})
	distance, err = normalized.Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, distance, 1e-12)
}

func TestSingleElementSequences(t *testing.T) {
	c := New(Config{})

	distance, err := c.Compare(seq(0), seq(3))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, distance, 1e-12)
}

func TestCompareIsSymmetric(t *testing.T) {
	c := New(Config{Normalize: true})
	a := seq(0, 1, 4, 2, 0)
	b := seq(0, 2, 3, 1)

	ab, err := c.Compare(a, b)
	require.NoError(t, err)
	ba, err := c.Compare(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-12)
}

func TestTimeStretchedSequenceAlignsCheaply(t *testing.T) {
	c := New(Config{})

	original := seq(0, 1, 2, 3)
	stretched := seq(0, 0, 1, 1, 2, 2, 3, 3)
	shifted := seq(5, 6, 7, 8)

	stretchCost, err := c.Compare(original, stretched)
	require.NoError(t, err)
	shiftCost, err := c.Compare(original, shifted)
	require.NoError(t, err)

	assert.Zero(t, stretchCost)
	assert.Greater(t, shiftCost, stretchCost)
}

func TestEmptySequenceRejected(t *testing.T) {
	c := New(Config{})

	_, err := c.Compare(nil, seq(1))
	assert.Error(t, err)

	_, err = c.Compare(seq(1), [][]float64{})
	assert.Error(t, err)

	_, _, err = c.ComparePath(nil, seq(1))
	assert.Error(t, err)
}

func TestDistanceWeightScalesResult(t *testing.T) {
	plain := New(Config{})
	weighted := New(Config{DistanceWeight: 2.0})

	a := seq(0, 1, 2)
	b := seq(1, 2, 3)

	base, err := plain.Compare(a, b)
	require.NoError(t, err)
	scaled, err := weighted.Compare(a, b)
	require.NoError(t, err)

	assert.InDelta(t, 2.0*base, scaled, 1e-12)
}

func TestMismatchedVectorLengths(t *testing.T) {
	c := New(Config{})

	a := [][]float64{{1, 2, 3}}
	b := [][]float64{{1, 2}}

	// Compared over the shorter prefix
	distance, err := c.Compare(a, b)
	require.NoError(t, err)
	assert.Zero(t, distance)
}

func TestWindowedCompareMatchesUnwindowedNearDiagonal(t *testing.T) {
	full := New(Config{})
	banded := New(Config{UseWindow: true, WindowRatio: 0.5})

	a := seq(0, 1, 2, 3, 4, 5, 6, 7)
	b := seq(0, 1, 2, 3, 4, 5, 6, 7)

	want, err := full.Compare(a, b)
	require.NoError(t, err)
	got, err := banded.Compare(a, b)
	require.NoError(t, err)

	assert.InDelta(t, want, got, 1e-12)
}

func TestWindowTooNarrowReported(t *testing.T) {
	banded := New(Config{UseWindow: true, WindowRatio: 0.01})

	// A single frame against a long sequence cannot reach the corner
	// inside a one-wide band.
	_, err := banded.Compare(seq(0), seq(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window too narrow")
}

func TestComparePathProperties(t *testing.T) {
	c := New(Config{})

	a := seq(0, 1, 2, 3)
	b := seq(0, 2, 3)

	distance, path, err := c.ComparePath(a, b)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	// Path runs corner to corner
	assert.Equal(t, PathPoint{I: 0, J: 0}, path[0])
	assert.Equal(t, PathPoint{I: 3, J: 2}, path[len(path)-1])

	// Monotone non-decreasing steps of at most one in each axis
	for k := 1; k < len(path); k++ {
		di := path[k].I - path[k-1].I
		dj := path[k].J - path[k-1].J
		assert.GreaterOrEqual(t, di, 0)
		assert.GreaterOrEqual(t, dj, 0)
		assert.LessOrEqual(t, di, 1)
		assert.LessOrEqual(t, dj, 1)
		assert.Positive(t, di+dj)
	}

	// Distance agrees with the two-row formulation
	compact, err := c.Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, compact, distance, 1e-12)
}
